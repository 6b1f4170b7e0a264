package pakview

import "strings"

// DirNode is one directory segment of the archive hierarchy. Files are not
// materialized as nodes; they live in the Tree's leaf map.
type DirNode struct {
	Name   string
	Parent *DirNode

	children []*DirNode
	byName   map[string]*DirNode
}

// Children returns the child directories in first-encounter order.
func (n *DirNode) Children() []*DirNode {
	return n.children
}

// Child returns the named child directory, or nil.
func (n *DirNode) Child(name string) *DirNode {
	return n.byName[name]
}

// Path returns the slash-joined path from the forest root down to n.
func (n *DirNode) Path() string {
	if n == nil {
		return ""
	}
	if n.Parent == nil {
		return n.Name
	}
	return n.Parent.Path() + "/" + n.Name
}

func (n *DirNode) addChild(child *DirNode) {
	if n.byName == nil {
		n.byName = make(map[string]*DirNode)
	}
	n.children = append(n.children, child)
	n.byName[child.Name] = child
}

// Tree is the directory forest of one archive listing together with the
// path -> entry map of its files. A Tree is built once and never mutated.
type Tree struct {
	Roots []*DirNode

	rootsByName map[string]*DirNode
	files       map[string]*Entry
	entries     []*Entry
}

// BuildTree materializes the directory forest for entries. Each path is
// split on "/"; every segment becomes a directory node except a final
// segment that looks like a file name (has an extension), which is recorded
// in the leaf map instead. Directories shared by several entries are created
// once, and ordering follows first appearance in entries.
//
// Entries that are nil or have an empty path are ignored.
func BuildTree(entries []*Entry) *Tree {
	t := &Tree{
		rootsByName: make(map[string]*DirNode),
		files:       make(map[string]*Entry),
		entries:     make([]*Entry, 0, len(entries)),
	}

	// accumulated "a/b/" prefix -> node
	dirs := make(map[string]*DirNode)

	for _, entry := range entries {
		if entry == nil || entry.Path == "" {
			continue
		}
		t.entries = append(t.entries, entry)

		segments := strings.Split(entry.Path, "/")
		var (
			prefix  string
			current *DirNode
		)
		for i, segment := range segments {
			prefix += segment + "/"

			if i == len(segments)-1 && hasExtension(segment) {
				t.files[entry.Path] = entry
				continue
			}

			if node, ok := dirs[prefix]; ok {
				current = node
				continue
			}

			node := &DirNode{Name: segment, Parent: current}
			if current == nil {
				t.Roots = append(t.Roots, node)
				t.rootsByName[segment] = node
			} else {
				current.addChild(node)
			}
			dirs[prefix] = node
			current = node
		}
	}

	return t
}

// hasExtension reports whether a file name carries an extension: a dot
// followed by at least one character.
//
// TODO: UnrealPak does not mark directories in its listing, so extensionless
// files are shown as directories. Switch to an explicit flag if the listing
// format ever carries one.
func hasExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && i < len(name)-1
}

// File returns the entry registered for a full file path.
func (t *Tree) File(path string) (*Entry, bool) {
	e, ok := t.files[path]
	return e, ok
}

// Files returns a copy of the path -> entry map of all leaves.
func (t *Tree) Files() map[string]*Entry {
	files := make(map[string]*Entry, len(t.files))
	for k, v := range t.files {
		files[k] = v
	}
	return files
}

// Entries returns every entry that took part in the build, in listing order.
func (t *Tree) Entries() []*Entry {
	return t.entries
}

// Lookup resolves a slash-separated directory path to its node. A trailing
// slash is ignored. It returns nil when the directory does not exist.
func (t *Tree) Lookup(dirPath string) *DirNode {
	dirPath = strings.TrimSuffix(normalizeSeparators(dirPath), "/")
	if dirPath == "" {
		return nil
	}

	segments := strings.Split(dirPath, "/")
	node := t.rootsByName[segments[0]]
	for _, segment := range segments[1:] {
		if node == nil {
			return nil
		}
		node = node.Child(segment)
	}
	return node
}

// FilesIn lists the entries whose directory portion equals dirPath, in
// listing order. Every parsed entry is considered, so extensionless files
// appear under their parent directory even though BuildTree also made a
// node for them.
func (t *Tree) FilesIn(dirPath string) []*Entry {
	dirPath = strings.TrimRight(normalizeSeparators(dirPath), "/")

	var out []*Entry
	for _, entry := range t.entries {
		if entry.Dir() == dirPath {
			out = append(out, entry)
		}
	}
	return out
}

// Walk visits every directory node depth first, parents before children,
// in insertion order. Returning an error stops the walk.
func (t *Tree) Walk(fn func(n *DirNode, depth int) error) error {
	var visit func(n *DirNode, depth int) error
	visit = func(n *DirNode, depth int) error {
		if err := fn(n, depth); err != nil {
			return err
		}
		for _, child := range n.children {
			if err := visit(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range t.Roots {
		if err := visit(root, 0); err != nil {
			return err
		}
	}
	return nil
}
