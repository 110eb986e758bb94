package fat

import (
	"testing"

	"github.com/stretchr/testify/require"

	fat32 "github.com/silhavyj/FAT32"
)

func testGeometry(t *testing.T) Geometry {
	t.Helper()
	g, err := NewGeometry(128, 128*64)
	require.NoError(t, err)
	return g
}

func TestTableGetFreeClusterFirstFit(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)

	first := table.GetFreeCluster()
	require.Equal(t, uint32(0), first)
	require.Equal(t, Taken, table.Get(0))

	second := table.GetFreeCluster()
	require.Equal(t, uint32(1), second)
}

func TestTableGetFreeClusterExhausted(t *testing.T) {
	g, err := NewGeometry(128, 128*3)
	require.NoError(t, err)
	table := NewTable(g)

	for i := 0; i < g.ClusterCount; i++ {
		require.NotEqual(t, NoFree, table.GetFreeCluster())
	}
	require.Equal(t, NoFree, table.GetFreeCluster())
}

func TestTableCountFreeAtLeast(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)
	require.True(t, table.CountFreeAtLeast(g.ClusterCount))
	require.False(t, table.CountFreeAtLeast(g.ClusterCount+1))

	table.GetFreeCluster()
	require.True(t, table.CountFreeAtLeast(g.ClusterCount-1))
	require.False(t, table.CountFreeAtLeast(g.ClusterCount))
}

func TestTableFreeChainTailPreservesHead(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)

	head := table.GetFreeCluster()
	mid := table.GetFreeCluster()
	eof := table.GetFreeCluster()
	table.Set(head, mid)
	table.Set(mid, eof)
	table.Set(eof, EOF)

	table.FreeChainTail(head)

	require.Equal(t, mid, table.Get(head), "head cluster must survive a tail free")
	require.Equal(t, Free, table.Get(mid))
	require.Equal(t, Free, table.Get(eof))
}

func TestTableSaveLoadRoundTrip(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)
	table.GetFreeCluster()
	a := table.GetFreeCluster()
	table.Set(a, EOF)

	device := fat32.NewMemDevice(g.DiskSize)
	require.NoError(t, table.Save(device))

	loaded, err := Load(device, g)
	require.NoError(t, err)
	require.Equal(t, table.entries, loaded.entries)
}

func TestTableCountFreeConcurrentMatchesSequential(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)
	for i := 0; i < 7; i++ {
		table.GetFreeCluster()
	}
	require.Equal(t, table.CountFree(), table.CountFreeConcurrent())
}

func TestNoSentinelAtRestAfterAllocateAndFree(t *testing.T) {
	g := testGeometry(t)
	table := NewTable(g)
	head := table.GetFreeCluster()
	eof := table.GetFreeCluster()
	table.Set(head, eof)
	table.Set(eof, EOF)

	table.FreeChainTail(head)
	for _, v := range table.entries {
		require.NotEqual(t, Taken, v, "P3: no TAKEN at rest")
	}
}
