package pakview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LogMarker is the prefix UnrealPak puts on every line of its pak log
// category. Only lines starting with it are considered for parsing.
const LogMarker = "LogPakFile"

var entryPattern = regexp.MustCompile(`LogPakFile: Display: "(?P<path>.+?)" offset: (?P<offset>\d+), size: (?P<size>\d+) bytes, sha1: (?P<sha1>[A-Fa-f0-9]+), compression: (?P<compression>.+?)\.`)

var (
	pathGroup        = entryPattern.SubexpIndex("path")
	offsetGroup      = entryPattern.SubexpIndex("offset")
	sizeGroup        = entryPattern.SubexpIndex("size")
	sha1Group        = entryPattern.SubexpIndex("sha1")
	compressionGroup = entryPattern.SubexpIndex("compression")
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Entry describes one file stored in a pak archive, as reported by the
// listing tool.
type Entry struct {
	Path        string
	Offset      int64
	Size        int64
	SHA1        string
	Compression string
}

// Diagnostic records a marker line that did not match the entry shape.
type Diagnostic struct {
	Line int // 1-based
	Text string
}

// ParseLine parses a single listing line. It returns false for anything that
// is not a complete entry line; a partially matching line never yields an
// Entry.
func ParseLine(line string) (*Entry, bool) {
	if !strings.HasPrefix(line, LogMarker) {
		return nil, false
	}

	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	offset, err := strconv.ParseInt(m[offsetGroup], 10, 64)
	if err != nil {
		return nil, false
	}
	size, err := strconv.ParseInt(m[sizeGroup], 10, 64)
	if err != nil {
		return nil, false
	}

	return &Entry{
		Path:        m[pathGroup],
		Offset:      offset,
		Size:        size,
		SHA1:        m[sha1Group],
		Compression: m[compressionGroup],
	}, true
}

// ParseAll parses every line of text and returns the entries in input order.
// Lines may end in \r\n, \r or \n, mixed freely.
func ParseAll(text string) []*Entry {
	entries, _ := ParseAllWithDiagnostics(text)
	return entries
}

// ParseAllWithDiagnostics is ParseAll that also reports marker lines which
// failed to parse. Lines without the marker are ordinary log chatter and are
// not reported.
func ParseAllWithDiagnostics(text string) ([]*Entry, []Diagnostic) {
	if text == "" {
		return nil, nil
	}

	var (
		entries []*Entry
		diags   []Diagnostic
	)
	for i, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		entry, ok := ParseLine(line)
		if ok {
			entries = append(entries, entry)
			continue
		}
		if strings.HasPrefix(line, LogMarker) && !isChatter(line) {
			diags = append(diags, Diagnostic{Line: i + 1, Text: line})
		}
	}
	return entries, diags
}

// isChatter reports marker lines UnrealPak prints around the entry list,
// such as "LogPakFile: Display: 42 files (1024 bytes), (0 filenames)".
func isChatter(line string) bool {
	return !strings.Contains(line, `"`)
}

// String renders the entry in the same shape the listing tool prints.
func (e *Entry) String() string {
	return fmt.Sprintf(`%s: Display: "%s" offset: %d, size: %d bytes, sha1: %s, compression: %s.`,
		LogMarker, e.Path, e.Offset, e.Size, e.SHA1, e.Compression)
}

// Name returns the last path segment.
func (e *Entry) Name() string {
	p := normalizeSeparators(e.Path)
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Dir returns the directory portion of the path with backslashes turned into
// forward slashes. Top-level files have an empty Dir.
func (e *Entry) Dir() string {
	p := normalizeSeparators(e.Path)
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}

func normalizeSeparators(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
