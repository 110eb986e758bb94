package fat

import (
	"testing"

	"github.com/stretchr/testify/require"

	fat32 "github.com/silhavyj/FAT32"
)

func mkdirChild(t *testing.T, device fat32.BlockDevice, table *Table, g Geometry, parent *Directory, name string) *Directory {
	t.Helper()
	child, err := CreateEmptyDirectory(table, name, parent.Header.StartCluster)
	require.NoError(t, err)
	require.NoError(t, parent.AddEntry(Entry{
		Name:               name,
		Directory:          true,
		StartCluster:       child.Header.StartCluster,
		ParentStartCluster: parent.Header.StartCluster,
		Size:               uint32(HeaderSize),
	}))
	require.NoError(t, parent.Save(device, table, g))
	require.NoError(t, child.Save(device, table, g))
	return child
}

func TestResolveRootDot(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	e, ok, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, ".")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, root.Header.StartCluster, e.StartCluster)
}

func TestResolveRootParentIsItself(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	e, ok, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, "..")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, root.Header.StartCluster, e.StartCluster)
}

func TestResolveAbsoluteAndRelative(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)
	doc := mkdirChild(t, device, table, g, root, "doc")
	mkdirChild(t, device, table, g, doc, "test")

	e, ok, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, "/doc/test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "test", e.Name)

	e, ok, err = Resolve(device, table, g, root.Header.StartCluster, doc.Header.StartCluster, "test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "test", e.Name)
}

func TestResolveDotDotChain(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)
	doc := mkdirChild(t, device, table, g, root, "doc")
	mkdirChild(t, device, table, g, doc, "test")

	e, ok, err := Resolve(device, table, g, root.Header.StartCluster, doc.Header.StartCluster, "././././../doc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "doc", e.Name)
	require.Equal(t, doc.Header.StartCluster, e.StartCluster)
}

func TestResolveMissingSegment(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	_, ok, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, "/nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveNonTerminalFileFails(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)
	require.NoError(t, root.AddEntry(Entry{Name: "f", Directory: false, StartCluster: 9, Size: 3}))
	require.NoError(t, root.Save(device, table, g))

	_, ok, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, "/f/x")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveEmptyPathIsFatal(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	_, _, err := Resolve(device, table, g, root.Header.StartCluster, root.Header.StartCluster, "")
	require.Error(t, err)
}
