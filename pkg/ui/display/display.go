// Package display turns command results into a small view model that the
// text and terminal renderers share. The JSON renderer encodes results
// directly and does not use it.
package display

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/shelf/pkg/commands/add"
	"github.com/arthur-debert/shelf/pkg/commands/genconfig"
	"github.com/arthur-debert/shelf/pkg/commands/installations"
	"github.com/arthur-debert/shelf/pkg/commands/list"
	"github.com/arthur-debert/shelf/pkg/commands/remove"
	"github.com/arthur-debert/shelf/pkg/commands/update"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/publish"
	"github.com/arthur-debert/shelf/pkg/signature"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Status classifies one line of output
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Symbol returns the marker printed in front of an item
func (s Status) Symbol() string {
	switch s {
	case StatusSuccess:
		return "+"
	case StatusSkipped:
		return "="
	case StatusWarning:
		return "!"
	default:
		return "-"
	}
}

// Style returns the style name used by the terminal renderer
func (s Status) Style() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusSkipped:
		return "Muted"
	case StatusWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// Item is one line: a package (or path) and what happened to it
type Item struct {
	Status Status
	Label  string
	Detail string
	Path   string
}

// Section groups items under a title. Empty is printed when there are no
// items; sections without items and without Empty are omitted.
type Section struct {
	Title string
	Items []Item
	Empty string
}

// Visible reports whether the section produces any output
func (s Section) Visible() bool {
	return len(s.Items) > 0 || s.Empty != ""
}

// View is a renderable command outcome
type View struct {
	Message  string
	Sections []Section
	// Raw is printed verbatim after the sections
	Raw string
}

// Convert builds the view for a known result type. The second return is
// false for anything else.
func Convert(result interface{}) (*View, bool) {
	switch v := result.(type) {
	case *publish.Report:
		return fromReport(v), true
	case *add.Result:
		return fromAdd(v), true
	case *update.Result:
		return fromUpdate(v), true
	case *remove.Result:
		return fromRemove(v), true
	case *installations.Result:
		return fromInstallations(v), true
	case *list.Result:
		return fromList(v), true
	case *genconfig.Result:
		return fromGenConfig(v), true
	}
	return nil, false
}

func fromReport(r *publish.Report) *View {
	view := &View{}
	if r.Aborted != "" {
		view.Message = r.Aborted
		return view
	}

	published := Section{Title: "Published", Empty: "Nothing published"}
	for _, e := range r.Published {
		published.Items = append(published.Items, Item{
			Status: StatusSuccess,
			Label:  e.Name + "@" + e.Version,
			Detail: fmt.Sprintf("%d files, signature %s", e.Files, signature.Short(e.Signature)),
			Path:   e.Dir,
		})
	}
	for _, name := range r.Unchanged {
		published.Items = append(published.Items, Item{Status: StatusSkipped, Label: name, Detail: "unchanged"})
	}

	pushed := Section{Title: "Pushed"}
	for _, res := range r.Pushed {
		pushed.Items = append(pushed.Items, installItem(res, true))
	}
	view.Sections = append(view.Sections, published, pushed, prunedSection(r.Pruned))
	return view
}

func fromAdd(r *add.Result) *View {
	title := "Added"
	if r.Command == "link" {
		title = "Linked"
	}
	section := Section{Title: title, Empty: "Nothing installed"}
	for _, res := range r.Installed {
		section.Items = append(section.Items, installItem(res, false))
	}
	return &View{Sections: []Section{section}}
}

func fromUpdate(r *update.Result) *View {
	section := Section{Title: "Updated", Empty: "Nothing to update"}
	for _, res := range r.Updated {
		section.Items = append(section.Items, installItem(res, false))
	}
	return &View{Sections: []Section{section, prunedSection(r.Pruned)}}
}

func fromRemove(r *remove.Result) *View {
	section := Section{Title: "Removed", Empty: "Nothing removed"}
	for _, name := range r.Removed {
		section.Items = append(section.Items, Item{Status: StatusSuccess, Label: name})
	}
	for _, name := range r.Skipped {
		section.Items = append(section.Items, Item{Status: StatusSkipped, Label: name, Detail: "not installed by shelf"})
	}
	return &View{Sections: []Section{section}}
}

func fromInstallations(r *installations.Result) *View {
	view := &View{}
	if len(r.Removed) > 0 {
		removed := Section{Title: "Removed from registry"}
		for _, inst := range r.Removed {
			removed.Items = append(removed.Items, Item{Status: StatusWarning, Label: inst.Name, Path: inst.WorkingDir})
		}
		view.Sections = append(view.Sections, removed)
	}

	byName := map[string][]string{}
	for _, inst := range r.Installations {
		byName[inst.Name] = append(byName[inst.Name], inst.WorkingDir)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		view.Sections = append(view.Sections, Section{Title: "Installations", Empty: "No installations recorded"})
	}
	for _, name := range names {
		section := Section{Title: name}
		for _, dir := range byName[name] {
			section.Items = append(section.Items, Item{Status: StatusInfo, Path: dir})
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

func fromList(r *list.Result) *View {
	if len(r.Packages) == 0 {
		return &View{Sections: []Section{{Title: "Store", Empty: "The store is empty"}}}
	}
	view := &View{}
	for _, pkg := range r.Packages {
		section := Section{Title: pkg.Name}
		for _, e := range pkg.Versions {
			detail := signature.Short(e.Signature)
			if !e.PublishedAt.IsZero() {
				detail += ", " + e.PublishedAt.Format("2006-01-02 15:04")
			}
			section.Items = append(section.Items, Item{Status: StatusInfo, Label: e.Version, Detail: detail})
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

func fromGenConfig(r *genconfig.Result) *View {
	switch {
	case r.Written != "":
		return &View{Message: "Configuration written to " + r.Written}
	case r.Existed:
		return &View{Message: "Configuration file already exists, left untouched"}
	}
	return &View{Raw: r.Content}
}

func installItem(res installer.InstallResult, withDir bool) Item {
	item := Item{
		Status: StatusSuccess,
		Label:  res.Name + "@" + res.Version,
		Detail: fmt.Sprintf("%s, signature %s", res.Mode, signature.Short(res.Signature)),
	}
	if res.Replaced != "" {
		item.Detail += ", replaced " + res.Replaced
	}
	if withDir {
		item.Path = res.ConsumerDir
	}
	return item
}

func prunedSection(pruned []types.Installation) Section {
	section := Section{Title: "Pruned installations"}
	for _, inst := range pruned {
		section.Items = append(section.Items, Item{Status: StatusWarning, Label: inst.Name, Path: inst.WorkingDir})
	}
	return section
}
