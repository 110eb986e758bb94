package fat32

// Directory is a node in the filesystem's tree that holds named
// entries — either files or subdirectories. Non-goals exclude
// permissions/ownership/timestamps, so DirectoryEntry carries only the
// fields spec.md's DirEntry defines.
type Directory interface {
	Entries() []DirectoryEntry
	Entry(name string) (DirectoryEntry, bool)
}

// DirectoryEntry is a single named entry within a Directory.
type DirectoryEntry interface {
	Name() string
	IsDir() bool
	Size() uint32
	StartCluster() uint32
	ParentStartCluster() uint32
}
