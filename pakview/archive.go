package pakview

import "strings"

// Archive is the parsed listing of one pak file. It is produced by a single
// Load and shares nothing with other loads.
type Archive struct {
	Path        string
	Entries     []*Entry
	Tree        *Tree
	Diagnostics []Diagnostic
}

// TotalSize sums the sizes of all entries.
func (a *Archive) TotalSize() int64 {
	var total int64
	for _, e := range a.Entries {
		total += e.Size
	}
	return total
}

// FilterEntries filters entries by path pattern
// pattern can be:
// - A specific file path (e.g., "Game/Content/icon.png")
// - A directory path (e.g., "Game/Content/" or "Game/Content") - returns all entries under it
// - "." or "/" or "" - returns all entries
func (a *Archive) FilterEntries(pattern string) []*Entry {
	matcher := newPathMatcher(pattern)

	var results []*Entry
	for _, e := range a.Entries {
		if matcher.matches(e.Path) {
			results = append(results, e)
		}
	}
	return results
}

// pathMatcher encapsulates path pattern matching logic for FilterEntries
type pathMatcher struct {
	matchAll  bool
	pattern   string
	dirPrefix bool
}

func newPathMatcher(pattern string) pathMatcher {
	pattern = normalizeSeparators(pattern)
	if pattern == "." || pattern == "/" || pattern == "" {
		return pathMatcher{matchAll: true}
	}

	dirPrefix := strings.HasSuffix(pattern, "/")
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}

	return pathMatcher{
		pattern:   pattern,
		dirPrefix: dirPrefix,
	}
}

func (m pathMatcher) matches(path string) bool {
	if m.matchAll {
		return true
	}

	path = normalizeSeparators(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if m.dirPrefix {
		return strings.HasPrefix(path, m.pattern)
	}

	return path == m.pattern || strings.HasPrefix(path, m.pattern+"/")
}
