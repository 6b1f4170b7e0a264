package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/fatih/color"
	"github.com/flaneur2020/pakview/pakview"
	pakerrors "github.com/flaneur2020/pakview/pakview/errors"
)

var (
	dirColor   = color.New(color.FgBlue, color.Bold).SprintFunc()
	countColor = color.New(color.Faint).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
)

func writeEntryTable(w io.Writer, entries []*pakview.Entry, nameOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	first := "PATH"
	if nameOnly {
		first = "NAME"
	}
	fmt.Fprintf(tw, "%s\tOFFSET\tSIZE\tSHA1\tCOMPRESSION\n", first)

	for _, e := range entries {
		name := e.Path
		if nameOnly {
			name = e.Name()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", printable(name), e.Offset, e.Size, e.SHA1, printable(e.Compression))
	}
	return tw.Flush()
}

func writeDiagnostics(w io.Writer, archive *pakview.Archive) {
	for _, d := range archive.Diagnostics {
		fmt.Fprintf(w, "%s %s:%d: %s\n", warnColor("warning:"), archive.Path, d.Line, printable(d.Text))
	}
}

// writeTree prints the directory forest with box-drawing connectors, each
// directory followed by the number of files directly inside it.
func writeTree(w io.Writer, tree *pakview.Tree, withFiles bool) error {
	byDir := make(map[string][]*pakview.Entry)
	for _, e := range tree.Entries() {
		byDir[e.Dir()] = append(byDir[e.Dir()], e)
	}

	var dirs int
	_ = tree.Walk(func(n *pakview.DirNode, depth int) error {
		dirs++
		return nil
	})

	// files shown as leaves; extensionless entries already appear as directories
	leaves := func(dir string) []*pakview.Entry {
		if !withFiles {
			return nil
		}
		var out []*pakview.Entry
		for _, e := range byDir[dir] {
			if _, ok := tree.File(e.Path); ok {
				out = append(out, e)
			}
		}
		return out
	}

	var writeLevel func(nodes []*pakview.DirNode, files []*pakview.Entry, indent string) error
	writeLevel = func(nodes []*pakview.DirNode, files []*pakview.Entry, indent string) error {
		total := len(nodes) + len(files)
		for i, n := range nodes {
			last := i == total-1
			path := n.Path()
			if _, err := fmt.Fprintf(w, "%s%s%s %s\n", indent, connector(last), dirColor(printable(n.Name)), countColor(fileCount(len(byDir[path])))); err != nil {
				return err
			}
			if err := writeLevel(n.Children(), leaves(path), indent+continuation(last)); err != nil {
				return err
			}
		}
		for i, e := range files {
			last := len(nodes)+i == total-1
			if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, connector(last), printable(e.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeLevel(tree.Roots, leaves(""), ""); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d directories, %d files\n", dirs, len(tree.Files()))
	return err
}

func connector(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func continuation(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func fileCount(n int) string {
	if n == 1 {
		return "(1 file)"
	}
	return "(" + strconv.Itoa(n) + " files)"
}

// resolveDir maps a user supplied directory onto a directory of the tree.
// "" and "/" select the top level.
func resolveDir(tree *pakview.Tree, dir string) (string, error) {
	dir = strings.Trim(strings.ReplaceAll(dir, `\`, "/"), "/")
	if dir == "" {
		return "", nil
	}

	node := tree.Lookup(dir)
	if node == nil {
		return "", pakerrors.ErrDirectoryNotFound.WithDetail("dir", dir)
	}
	return node.Path(), nil
}

// printable escapes control characters so archive contents cannot drive
// the terminal.
func printable(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) == -1 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			q := strconv.QuoteRune(r)
			b.WriteString(q[1 : len(q)-1])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
