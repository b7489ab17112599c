// Package packlist lists the files that make up a package, following npm's
// packaging rules closely enough for local distribution: the manifest's
// "files" whitelist when present, otherwise everything not excluded by
// .npmignore (or .gitignore), plus the files npm always ships.
package packlist

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/moby/patternmatcher"
)

// Directories never descended into
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	"CVS":          true,
}

// Files never shipped, matched anywhere in the tree
var alwaysIgnored = []string{
	".DS_Store",
	"._*",
	".*.swp",
	"npm-debug.log",
	".npmrc",
	".npmignore",
	".gitignore",
	"package-lock.json",
	"*.orig",
	"config.gypi",
}

// Root files shipped whatever the ignore rules say (case-insensitive
// prefixes)
var alwaysIncludedPrefixes = []string{"readme", "license", "licence", "changelog"}

// Options adjusts listing for shelf's own files
type Options struct {
	// Exclude names root-level entries to leave out, such as the staging
	// folder and the lockfile.
	Exclude []string
}

// List returns the sorted, slash-separated paths of the files belonging to
// the package in dir.
func List(fsys types.FS, dir string, m *manifest.Manifest, opts Options) ([]string, error) {
	logger := logging.GetLogger("packlist")

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		exclude[filepath.ToSlash(filepath.Clean(name))] = true
	}

	all, err := walk(fsys, dir, "", exclude)
	if err != nil {
		return nil, err
	}

	defaults, err := patternmatcher.New(anywhere(alwaysIgnored))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "invalid built-in ignore patterns")
	}

	var selector func(rel string) (bool, error)
	if len(m.Files) > 0 {
		pm, err := patternmatcher.New(normalizeFiles(m.Files))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrParseFailure, "invalid files field in %s", m.Name)
		}
		selector = func(rel string) (bool, error) {
			return pm.MatchesOrParentMatches(filepath.FromSlash(rel))
		}
	} else {
		patterns, source := ignorePatterns(fsys, dir)
		if source != "" {
			logger.Debug().Str("source", source).Int("patterns", len(patterns)).Msg("Using ignore file")
		}
		pm, err := patternmatcher.New(anywhere(patterns))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrParseFailure, "invalid patterns in %s", source)
		}
		selector = func(rel string) (bool, error) {
			ignored, err := pm.MatchesOrParentMatches(filepath.FromSlash(rel))
			return !ignored, err
		}
	}

	forced := forcedFiles(m)
	var files []string
	for _, rel := range all {
		if forced[rel] || isAlwaysIncluded(rel) {
			files = append(files, rel)
			continue
		}
		ignored, err := defaults.MatchesOrParentMatches(filepath.FromSlash(rel))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to match %s", rel)
		}
		if ignored {
			continue
		}
		keep, err := selector(rel)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrParseFailure, "failed to match %s", rel)
		}
		if keep {
			files = append(files, rel)
		}
	}

	sort.Strings(files)
	logger.Debug().Str("dir", dir).Int("files", len(files)).Msg("Listed package files")
	return files, nil
}

func walk(fsys types.FS, root, rel string, exclude map[string]bool) ([]string, error) {
	entries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", filepath.Join(root, rel))
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		child := path.Join(rel, name)
		if exclude[child] {
			continue
		}
		if entry.IsDir() {
			if skipDirs[name] {
				continue
			}
			sub, err := walk(fsys, root, child, exclude)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := fsys.Stat(filepath.Join(root, filepath.FromSlash(child)))
			if err != nil || info.IsDir() {
				// Dangling links and links to directories are not shipped
				continue
			}
		}
		out = append(out, child)
	}
	return out, nil
}

// ignorePatterns reads .npmignore, falling back to .gitignore.
func ignorePatterns(fsys types.FS, dir string) ([]string, string) {
	for _, name := range []string{".npmignore", ".gitignore"} {
		data, err := fsys.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var patterns []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, line)
		}
		return patterns, name
	}
	return nil, ""
}

// anywhere gives patterns without an inner slash gitignore semantics: they
// match at any depth.
func anywhere(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		body := strings.TrimPrefix(p, "!")
		trimmed := strings.TrimSuffix(body, "/")
		switch {
		case strings.HasPrefix(trimmed, "/"):
			body = strings.TrimPrefix(trimmed, "/")
		case !strings.Contains(trimmed, "/"):
			body = "**/" + trimmed
		default:
			body = trimmed
		}
		if negate {
			body = "!" + body
		}
		out = append(out, body)
	}
	return out
}

func normalizeFiles(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimPrefix(strings.TrimSpace(f), "./")
		f = strings.TrimSuffix(f, "/")
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// forcedFiles returns the manifest and the files it points at.
func forcedFiles(m *manifest.Manifest) map[string]bool {
	forced := map[string]bool{manifest.FileName: true}
	add := func(p string) {
		p = path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "./"))
		if p != "." && !strings.HasPrefix(p, "..") {
			forced[p] = true
		}
	}
	if m.Main != "" {
		add(m.Main)
	}
	for _, p := range m.Bin.Entries(m.Name) {
		add(p)
	}
	return forced
}

func isAlwaysIncluded(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	lower := strings.ToLower(rel)
	for _, prefix := range alwaysIncludedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
