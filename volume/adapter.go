package volume

import (
	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/fat"
)

// dirAdapter and entryAdapter let a fat.Directory/fat.Entry satisfy the
// root package's narrower fat32.Directory/fat32.DirectoryEntry
// interfaces, without the engine package depending on them.
type dirAdapter struct {
	dir *fat.Directory
}

func (a *dirAdapter) Entries() []fat32.DirectoryEntry {
	out := make([]fat32.DirectoryEntry, len(a.dir.Entries))
	for i, e := range a.dir.Entries {
		out[i] = entryAdapter{e}
	}
	return out
}

func (a *dirAdapter) Entry(name string) (fat32.DirectoryEntry, bool) {
	e, ok := a.dir.Find(name)
	if !ok {
		return nil, false
	}
	return entryAdapter{e}, true
}

type entryAdapter struct {
	e fat.Entry
}

func (a entryAdapter) Name() string               { return a.e.Name }
func (a entryAdapter) IsDir() bool                 { return a.e.Directory }
func (a entryAdapter) Size() uint32                { return a.e.Size }
func (a entryAdapter) StartCluster() uint32        { return a.e.StartCluster }
func (a entryAdapter) ParentStartCluster() uint32  { return a.e.ParentStartCluster }
