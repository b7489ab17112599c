package types

// Installation ties a package name to one consumer project directory.
type Installation struct {
	Name       string `json:"name"`
	WorkingDir string `json:"workingDir"`
}
