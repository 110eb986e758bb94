package fat

import (
	"testing"

	"github.com/stretchr/testify/require"

	fat32 "github.com/silhavyj/FAT32"
)

func bootstrapRoot(t *testing.T, g Geometry) (fat32.BlockDevice, *Table, *Directory) {
	t.Helper()
	device := fat32.NewMemDevice(g.DiskSize)
	table := NewTable(g)

	root, err := CreateEmptyDirectory(table, "/", RootCluster)
	require.NoError(t, err)
	require.Equal(t, RootCluster, root.Header.StartCluster)
	require.NoError(t, root.Save(device, table, g))

	return device, table, root
}

func TestDirectorySaveLoadRoundTripSingleCluster(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	require.NoError(t, root.AddEntry(Entry{Name: "doc", Directory: true, StartCluster: 9, ParentStartCluster: root.Header.StartCluster, Size: uint32(HeaderSize)}))
	require.NoError(t, root.Save(device, table, g))

	loaded, err := LoadDirectory(device, table, g, root.Header.StartCluster)
	require.NoError(t, err)
	require.Equal(t, root.Header, loaded.Header)
	require.Equal(t, root.Entries, loaded.Entries)
	require.Equal(t, RootCluster, loaded.Header.StartCluster, "head cluster must be stable across rewrites")
}

func TestDirectoryBoundaryExactlyEntriesInFirstCluster(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	n := g.EntriesInFirstCluster()
	before := table.CountFree()
	for i := 0; i < n; i++ {
		require.NoError(t, root.AddEntry(Entry{Name: nthName(i), Directory: false, StartCluster: uint32(100 + i), Size: 1}))
	}
	require.NoError(t, root.Save(device, table, g))

	// head + EOF only: same single terminator cluster as an empty directory.
	require.Equal(t, before, table.CountFree())

	loaded, err := LoadDirectory(device, table, g, root.Header.StartCluster)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, n)
}

func TestDirectoryBoundaryOneOverEntriesInFirstCluster(t *testing.T) {
	g := testGeometry(t)
	device, table, root := bootstrapRoot(t, g)

	n := g.EntriesInFirstCluster() + 1
	before := table.CountFree()
	for i := 0; i < n; i++ {
		require.NoError(t, root.AddEntry(Entry{Name: nthName(i), Directory: false, StartCluster: uint32(100 + i), Size: 1}))
	}
	require.NoError(t, root.Save(device, table, g))

	// one more cluster than the single-cluster case: a middle cluster is
	// now needed in addition to the terminator.
	require.Equal(t, before-1, table.CountFree())

	loaded, err := LoadDirectory(device, table, g, root.Header.StartCluster)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, n)
	for i := 0; i < n; i++ {
		require.Equal(t, nthName(i), loaded.Entries[i].Name)
	}
}

func TestDirectoryNameUniqueness(t *testing.T) {
	g := testGeometry(t)
	_, _, root := bootstrapRoot(t, g)

	require.NoError(t, root.AddEntry(Entry{Name: "a", StartCluster: 5}))
	err := root.AddEntry(Entry{Name: "a", StartCluster: 6})
	require.Error(t, err)
}

func TestDirectoryRemoveEntry(t *testing.T) {
	g := testGeometry(t)
	_, _, root := bootstrapRoot(t, g)
	require.NoError(t, root.AddEntry(Entry{Name: "a", StartCluster: 5}))

	removed, ok := root.RemoveEntry("a")
	require.True(t, ok)
	require.Equal(t, uint32(5), removed.StartCluster)
	require.Empty(t, root.Entries)

	_, ok = root.RemoveEntry("a")
	require.False(t, ok)
}

func nthName(i int) string {
	return string(rune('a'+i%26)) + string(rune('0'+i/26))
}
