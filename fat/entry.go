package fat

import (
	"bytes"
	"encoding/binary"
)

// entryOnDisk is the exact packed, little-endian layout spec.md §3/§6
// requires for a DirEntry: 16+4+4+4+1 = 29 bytes, no padding.
type entryOnDisk struct {
	Name               [MaxNameLen]byte
	StartCluster       uint32
	ParentStartCluster uint32
	Size               uint32
	Directory          uint8
}

// EntrySize is sizeof(DirEntry) on disk.
const EntrySize = MaxNameLen + 4 + 4 + 4 + 1

// Entry is the in-memory form of a DirEntry: a named reference to a
// file or subdirectory's start cluster within its parent.
type Entry struct {
	Name               string
	StartCluster       uint32
	ParentStartCluster uint32
	Size               uint32
	Directory          bool
}

func encodeName(name string) [MaxNameLen]byte {
	var out [MaxNameLen]byte
	copy(out[:], name)
	return out
}

func decodeName(raw [MaxNameLen]byte) string {
	n := bytes.IndexByte(raw[:], 0)
	if n < 0 {
		n = len(raw)
	}
	return string(raw[:n])
}

// MarshalBinary encodes the entry into its 29-byte on-disk form.
func (e Entry) MarshalBinary() ([]byte, error) {
	if len(e.Name) >= MaxNameLen {
		return nil, Fatalf("name %q exceeds MAX_NAME_LEN", e.Name)
	}
	var dir uint8
	if e.Directory {
		dir = 1
	}
	rec := entryOnDisk{
		Name:               encodeName(e.Name),
		StartCluster:       e.StartCluster,
		ParentStartCluster: e.ParentStartCluster,
		Size:               e.Size,
		Directory:          dir,
	}
	buf := new(bytes.Buffer)
	buf.Grow(EntrySize)
	if err := binary.Write(buf, binary.LittleEndian, rec); err != nil {
		return nil, Fatal(err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a 29-byte on-disk record into the entry.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < EntrySize {
		return Fatalf("short DirEntry record: %d bytes", len(data))
	}
	var rec entryOnDisk
	if err := binary.Read(bytes.NewReader(data[:EntrySize]), binary.LittleEndian, &rec); err != nil {
		return Fatal(err)
	}
	e.Name = decodeName(rec.Name)
	e.StartCluster = rec.StartCluster
	e.ParentStartCluster = rec.ParentStartCluster
	e.Size = rec.Size
	e.Directory = rec.Directory != 0
	return nil
}
