package manifest

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Bin is the bin field of a manifest: either a single path exposed under
// the package's own name, or a mapping of command names to paths.
type Bin struct {
	Single string
	Many   map[string]string
}

// IsEmpty reports whether the manifest declared no executables.
func (b Bin) IsEmpty() bool {
	return b.Single == "" && len(b.Many) == 0
}

// Entries returns the command name to path mapping. A Single bin is named
// after the package without its scope.
func (b Bin) Entries(pkgName string) map[string]string {
	if b.Single != "" {
		return map[string]string{UnscopedName(pkgName): b.Single}
	}
	out := make(map[string]string, len(b.Many))
	for name, path := range b.Many {
		out[name] = path
	}
	return out
}

// UnmarshalJSON accepts a string or an object of strings.
func (b *Bin) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = Bin{}
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*b = Bin{Single: single}
		return nil
	}
	var many map[string]string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*b = Bin{Many: many}
	return nil
}

// MarshalJSON renders the variant that is set.
func (b Bin) MarshalJSON() ([]byte, error) {
	if b.Single != "" {
		return json.Marshal(b.Single)
	}
	if b.Many == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.Many)
}

// UnscopedName strips an @scope/ prefix.
func UnscopedName(name string) string {
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i >= 0 {
			return name[i+1:]
		}
	}
	return name
}
