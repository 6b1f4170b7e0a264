package pakview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(paths ...string) []*Entry {
	out := make([]*Entry, 0, len(paths))
	for i, p := range paths {
		out = append(out, &Entry{Path: p, Offset: int64(i * 100), Size: int64(i + 1), SHA1: "00", Compression: "None"})
	}
	return out
}

func names(nodes []*DirNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func entryNames(es []*Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name())
	}
	return out
}

func TestBuildTreeSharedPrefix(t *testing.T) {
	tree := BuildTree(entries("a/b/c.txt", "a/b/d.txt"))

	require.Len(t, tree.Roots, 1)
	a := tree.Roots[0]
	assert.Equal(t, "a", a.Name)
	assert.Nil(t, a.Parent)

	require.Len(t, a.Children(), 1)
	b := a.Children()[0]
	assert.Equal(t, "b", b.Name)
	assert.Same(t, a, b.Parent)
	assert.Empty(t, b.Children())

	files := tree.Files()
	assert.Len(t, files, 2)
	assert.Contains(t, files, "a/b/c.txt")
	assert.Contains(t, files, "a/b/d.txt")

	assert.Equal(t, []string{"c.txt", "d.txt"}, entryNames(tree.FilesIn("a/b")))
	assert.Equal(t, []string{"c.txt", "d.txt"}, entryNames(tree.FilesIn("a/b/")))
	assert.Empty(t, tree.FilesIn("a"))
}

func TestBuildTreeSameNameDifferentDirs(t *testing.T) {
	es := entries("a/c.txt", "a/z/c.txt")
	tree := BuildTree(es)

	got, ok := tree.File("a/c.txt")
	require.True(t, ok)
	assert.Same(t, es[0], got)

	got, ok = tree.File("a/z/c.txt")
	require.True(t, ok)
	assert.Same(t, es[1], got)

	assert.Len(t, tree.Files(), 2)
	assert.Equal(t, []string{"z"}, names(tree.Roots[0].Children()))
}

func TestBuildTreeSkipsEmptyAndNil(t *testing.T) {
	assert.NotPanics(t, func() {
		tree := BuildTree([]*Entry{{Path: ""}, nil})
		assert.Empty(t, tree.Roots)
		assert.Empty(t, tree.Files())
		assert.Empty(t, tree.FilesIn(""))
	})

	tree := BuildTree(append(entries("x/y.txt"), &Entry{Path: ""}))
	assert.Equal(t, []string{"x"}, names(tree.Roots))
	assert.Len(t, tree.Files(), 1)
}

func TestBuildTreeForestAndInsertionOrder(t *testing.T) {
	tree := BuildTree(entries(
		"Zeta/z.txt",
		"Alpha/m/1.txt",
		"Zeta/b/2.txt",
		"Alpha/a/3.txt",
		"Zeta/a/4.txt",
	))

	assert.Equal(t, []string{"Zeta", "Alpha"}, names(tree.Roots))
	assert.Equal(t, []string{"b", "a"}, names(tree.Lookup("Zeta").Children()))
	assert.Equal(t, []string{"m", "a"}, names(tree.Lookup("Alpha").Children()))
}

func TestBuildTreeExtensionHeuristic(t *testing.T) {
	tree := BuildTree(entries("bin/tool", "bin/run.sh", "cfg/.hidden", "odd/name."))

	// extensionless final segments become directories
	tool := tree.Lookup("bin/tool")
	require.NotNil(t, tool)
	assert.Equal(t, "bin/tool", tool.Path())
	_, ok := tree.File("bin/tool")
	assert.False(t, ok)

	_, ok = tree.File("bin/run.sh")
	assert.True(t, ok)
	_, ok = tree.File("cfg/.hidden")
	assert.True(t, ok)

	assert.NotNil(t, tree.Lookup("odd/name."))

	// the directory query still lists every entry under its parent
	assert.Equal(t, []string{"tool", "run.sh"}, entryNames(tree.FilesIn("bin")))
}

func TestBuildTreeTopLevelFile(t *testing.T) {
	tree := BuildTree(entries("readme.txt", "Game/a.txt"))

	assert.Equal(t, []string{"Game"}, names(tree.Roots))
	_, ok := tree.File("readme.txt")
	assert.True(t, ok)
	assert.Equal(t, []string{"readme.txt"}, entryNames(tree.FilesIn("")))
}

func TestBuildTreeIsolatedPerCall(t *testing.T) {
	first := BuildTree(entries("a/b/c.txt"))
	second := BuildTree(entries("a/x.txt"))

	assert.Empty(t, second.Roots[0].Children())
	assert.Len(t, first.Roots[0].Children(), 1)
	assert.NotSame(t, first.Roots[0], second.Roots[0])
}

func TestDirNodePathAndLookup(t *testing.T) {
	tree := BuildTree(entries("Game/Content/Maps/Level.umap"))

	maps := tree.Lookup("Game/Content/Maps")
	require.NotNil(t, maps)
	assert.Equal(t, "Game/Content/Maps", maps.Path())
	assert.Same(t, maps, tree.Lookup("Game/Content/Maps/"))
	assert.Same(t, maps, tree.Lookup(`Game\Content\Maps`))

	assert.Nil(t, tree.Lookup(""))
	assert.Nil(t, tree.Lookup("Nope"))
	assert.Nil(t, tree.Lookup("Game/Nope/Maps"))

	var nilNode *DirNode
	assert.Equal(t, "", nilNode.Path())
}

func TestFilesInNormalizesBackslashes(t *testing.T) {
	tree := BuildTree([]*Entry{{Path: `Game\Content\a.txt`}, {Path: "Game/Content/b.txt"}})

	assert.Equal(t, []string{"a.txt", "b.txt"}, entryNames(tree.FilesIn("Game/Content")))
}

func TestWalk(t *testing.T) {
	tree := BuildTree(entries("a/b/c.txt", "a/d/e.txt", "f/g.txt"))

	var visited []string
	var depths []int
	err := tree.Walk(func(n *DirNode, depth int) error {
		visited = append(visited, n.Path())
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/b", "a/d", "f"}, visited)
	assert.Equal(t, []int{0, 1, 1, 0}, depths)

	stop := errors.New("stop")
	count := 0
	err = tree.Walk(func(n *DirNode, depth int) error {
		count++
		if n.Name == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}

func TestEndToEndIcon(t *testing.T) {
	es := ParseAll(iconLine)
	require.Len(t, es, 1)
	assert.Equal(t, &Entry{Path: "Game/Content/icon.png", Offset: 128, Size: 4096, SHA1: "abc123", Compression: "None"}, es[0])

	tree := BuildTree(es)
	require.Equal(t, []string{"Game"}, names(tree.Roots))
	require.Equal(t, []string{"Content"}, names(tree.Roots[0].Children()))

	content := tree.Roots[0].Children()[0]
	assert.Equal(t, "Game/Content", content.Path())
	assert.Equal(t, es, tree.FilesIn(content.Path()))
}
