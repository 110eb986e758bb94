package fat

import (
	fat32 "github.com/silhavyj/FAT32"
)

// Directory is the in-memory form of a Dir_t: a header plus exactly
// Header.EntryCount entries, serialized across a chain of clusters per
// spec.md §4.4. Ownership is by value — callers load a Directory,
// mutate its Entries, and Save it; there is no shared mutable buffer.
type Directory struct {
	Header  Header
	Entries []Entry
}

func writeAt(device fat32.BlockDevice, addr int64, data []byte) error {
	if err := device.Seek(addr); err != nil {
		return Fatal(err)
	}
	if err := device.Write(data); err != nil {
		return Fatal(err)
	}
	return nil
}

func readAt(device fat32.BlockDevice, addr int64, n int) ([]byte, error) {
	if err := device.Seek(addr); err != nil {
		return nil, Fatal(err)
	}
	buf := make([]byte, n)
	if err := device.Read(buf); err != nil {
		return nil, Fatal(err)
	}
	return buf, nil
}

// LoadDirectory deserializes the directory whose head cluster is
// startCluster, per spec.md §4.4 loadDir.
func LoadDirectory(device fat32.BlockDevice, table *Table, g Geometry, startCluster uint32) (*Directory, error) {
	headerBytes, err := readAt(device, g.ClusterAddr(startCluster), HeaderSize)
	if err != nil {
		return nil, Fatal(err)
	}
	var header Header
	if err := header.UnmarshalBinary(headerBytes); err != nil {
		return nil, Fatal(err)
	}

	entries := make([]Entry, header.EntryCount)
	firstCount := int(header.EntryCount)
	if firstCount > g.EntriesInFirstCluster() {
		firstCount = g.EntriesInFirstCluster()
	}

	firstBytes, err := readAt(device, g.ClusterAddr(startCluster)+int64(HeaderSize), firstCount*EntrySize)
	if err != nil {
		return nil, Fatal(err)
	}
	for i := 0; i < firstCount; i++ {
		if err := entries[i].UnmarshalBinary(firstBytes[i*EntrySize:]); err != nil {
			return nil, Fatal(err)
		}
	}

	if int(header.EntryCount) <= g.EntriesInFirstCluster() {
		return &Directory{Header: header, Entries: entries}, nil
	}

	perCluster := g.EntriesPerCluster()
	remaining := int(header.EntryCount) - firstCount
	clustersNeeded := ceilDiv(remaining, perCluster)
	entryIndex := firstCount
	cur := table.Get(startCluster)

	for i := 0; i < clustersNeeded-1; i++ {
		buf, err := readAt(device, g.ClusterAddr(cur), perCluster*EntrySize)
		if err != nil {
			return nil, Fatal(err)
		}
		for j := 0; j < perCluster; j++ {
			if err := entries[entryIndex].UnmarshalBinary(buf[j*EntrySize:]); err != nil {
				return nil, Fatal(err)
			}
			entryIndex++
		}
		cur = table.Get(cur)
	}

	offset := int64(0)
	for entryIndex < int(header.EntryCount) {
		buf, err := readAt(device, g.ClusterAddr(cur)+offset, EntrySize)
		if err != nil {
			return nil, Fatal(err)
		}
		if err := entries[entryIndex].UnmarshalBinary(buf); err != nil {
			return nil, Fatal(err)
		}
		offset += int64(EntrySize)
		entryIndex++
	}

	next := table.Get(cur)
	if table.Get(next) != EOF {
		return nil, Fatalf("corrupted directory chain: cluster %d does not terminate at EOF", cur)
	}

	return &Directory{Header: header, Entries: entries}, nil
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Save serializes the directory across its chain, per spec.md §4.4
// saveDir. The head cluster never changes across rewrites.
func (d *Directory) Save(device fat32.BlockDevice, table *Table, g Geometry) error {
	head := d.Header.StartCluster
	table.FreeChainTail(head)

	entryCount := len(d.Entries)
	firstCount := entryCount
	if firstCount > g.EntriesInFirstCluster() {
		firstCount = g.EntriesInFirstCluster()
	}
	remaining := entryCount - firstCount
	perCluster := g.EntriesPerCluster()
	extraClusters := ceilDiv(remaining, perCluster)

	if !table.CountFreeAtLeast(1 + extraClusters) {
		return Fatalf("not enough free clusters to save directory %q", d.Header.Name)
	}

	d.Header.EntryCount = uint32(entryCount)
	if err := d.writeFirstCluster(device, g, firstCount); err != nil {
		return Fatal(err)
	}

	prev := head
	entryIndex := firstCount
	for i := 0; i < extraClusters; i++ {
		next := table.GetFreeCluster()
		table.Set(prev, next)

		n := perCluster
		if remain := entryCount - entryIndex; remain < n {
			n = remain
		}
		buf := make([]byte, 0, n*EntrySize)
		for j := 0; j < n; j++ {
			rec, err := d.Entries[entryIndex+j].MarshalBinary()
			if err != nil {
				return Fatal(err)
			}
			buf = append(buf, rec...)
		}
		if err := writeAt(device, g.ClusterAddr(next), buf); err != nil {
			return Fatal(err)
		}
		entryIndex += n
		prev = next
	}

	eofCluster := table.GetFreeCluster()
	table.Set(prev, eofCluster)
	table.Set(eofCluster, EOF)

	if err := table.Save(device); err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *Directory) writeFirstCluster(device fat32.BlockDevice, g Geometry, entryCount int) error {
	headerBytes, err := d.Header.MarshalBinary()
	if err != nil {
		return Fatal(err)
	}
	if err := writeAt(device, g.ClusterAddr(d.Header.StartCluster), headerBytes); err != nil {
		return Fatal(err)
	}

	buf := make([]byte, 0, entryCount*EntrySize)
	for i := 0; i < entryCount; i++ {
		rec, err := d.Entries[i].MarshalBinary()
		if err != nil {
			return Fatal(err)
		}
		buf = append(buf, rec...)
	}
	return writeAt(device, g.ClusterAddr(d.Header.StartCluster)+int64(HeaderSize), buf)
}

// Find looks up an entry by exact name match (invariant P4 requires
// these names be unique within the directory).
func (d *Directory) Find(name string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// AddEntry appends a new entry, rejecting a duplicate name (P4).
func (d *Directory) AddEntry(e Entry) error {
	if _, ok := d.Find(e.Name); ok {
		return Fatalf("name already exists: %q", e.Name)
	}
	d.Entries = append(d.Entries, e)
	d.Header.EntryCount = uint32(len(d.Entries))
	return nil
}

// RemoveEntry deletes the entry with the given name.
func (d *Directory) RemoveEntry(name string) (Entry, bool) {
	for i, e := range d.Entries {
		if e.Name == name {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			d.Header.EntryCount = uint32(len(d.Entries))
			return e, true
		}
	}
	return Entry{}, false
}

// AsEntry synthesizes the DirEntry describing this directory itself —
// used by the path resolver for "." and "..", per spec.md §4.5.
func (d *Directory) AsEntry() Entry {
	return Entry{
		Name:               d.Header.Name,
		StartCluster:       d.Header.StartCluster,
		ParentStartCluster: d.Header.ParentStartCluster,
		Directory:          true,
		Size:               uint32(HeaderSize),
	}
}

// CreateEmptyDirectory allocates the head and EOF clusters for a brand
// new, empty directory, per spec.md §4.3's lifecycle rule.
func CreateEmptyDirectory(table *Table, name string, parentStartCluster uint32) (*Directory, error) {
	if !table.CountFreeAtLeast(2) {
		return nil, Fatalf("not enough free clusters to create directory %q", name)
	}
	head := table.GetFreeCluster()
	eof := table.GetFreeCluster()
	table.Set(head, eof)
	table.Set(eof, EOF)

	return &Directory{
		Header: Header{
			Name:               name,
			StartCluster:       head,
			ParentStartCluster: parentStartCluster,
			EntryCount:         0,
		},
	}, nil
}
