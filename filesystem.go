package fat32

// Volume provides access to a single tree hierarchy of directories and
// files backed by one BlockDevice.
type Volume interface {
	Root() (Directory, error)
	Info() (Stat, error)
}

// Stat is the capacity report spec.md §4.6 "info" prints.
type Stat struct {
	TotalClusters int
	FreeClusters  int
	ClusterSize   int
	TotalBytes    int64
	FreeBytes     int64
}

func (s Stat) FreePercent() float64 {
	if s.TotalClusters == 0 {
		return 0
	}
	return 100 * float64(s.FreeClusters) / float64(s.TotalClusters)
}
