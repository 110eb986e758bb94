package fat

// MaxNameLen is the fixed width of a DirEntry/DirHeader name field,
// NUL-padded on disk. Matches original_source/src/fat32.h MAX_NAME_LEN.
const MaxNameLen = 16

// Cluster index sentinels, reserved at the top of the uint32 range, per
// spec.md §3.
const (
	Free   uint32 = 1<<32 - 1 // slot available
	EOF    uint32 = 1<<32 - 2 // terminator of a chain
	Taken  uint32 = 1<<32 - 3 // transient reservation during allocation
	NoFree uint32 = 1<<32 - 4 // sentinel returned when no free cluster exists
)

// RootCluster is cluster 0, the root directory's start cluster. It is
// reserved and never reallocated.
const RootCluster uint32 = 0

// Geometry derives the disk layout described in spec.md §4.2 from a
// cluster size and disk size.
type Geometry struct {
	ClusterSize  int
	DiskSize     int64
	ClusterCount int
}

const addrSize = 4 // sizeof(uint32) on disk

// NewGeometry computes CLUSTER_COUNT = DISK_SIZE / (4 + CLUSTER_SIZE) and
// validates that the header and entry records fit within one cluster, as
// original_source/src/main.cpp asserts at startup.
func NewGeometry(clusterSize int, diskSize int64) (Geometry, error) {
	if clusterSize <= 0 {
		return Geometry{}, Fatalf("cluster size must be positive")
	}
	if EntrySize > clusterSize || HeaderSize > clusterSize {
		return Geometry{}, Fatalf("cluster size %d too small for DirEntry/DirHeader", clusterSize)
	}
	count := diskSize / int64(addrSize+clusterSize)
	if count <= int64(RootCluster) {
		return Geometry{}, Fatalf("disk size %d too small for cluster size %d", diskSize, clusterSize)
	}
	return Geometry{
		ClusterSize:  clusterSize,
		DiskSize:     diskSize,
		ClusterCount: int(count),
	}, nil
}

// FATSize is the byte length of the on-disk FAT region.
func (g Geometry) FATSize() int64 {
	return int64(g.ClusterCount) * addrSize
}

// ClusterAddr is the byte offset of cluster index i.
func (g Geometry) ClusterAddr(i uint32) int64 {
	return g.FATSize() + int64(i)*int64(g.ClusterSize)
}

// EntriesInFirstCluster is ENTRIES_IN_FIRST from spec.md §4.4: the
// header shares its cluster with the start of the entry array.
func (g Geometry) EntriesInFirstCluster() int {
	return (g.ClusterSize - HeaderSize) / EntrySize
}

// EntriesPerCluster is ENTRIES_PER_CLUSTER from spec.md §4.4, used by
// every cluster in a directory chain after the first.
func (g Geometry) EntriesPerCluster() int {
	return g.ClusterSize / EntrySize
}
