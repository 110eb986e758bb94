package fat

import (
	"bytes"
	"encoding/binary"
)

// headerOnDisk is the exact packed, little-endian layout for a
// DirHeader: 16+4+4+4 = 28 bytes.
type headerOnDisk struct {
	Name               [MaxNameLen]byte
	StartCluster       uint32
	ParentStartCluster uint32
	EntryCount         uint32
}

// HeaderSize is sizeof(DirHeader) on disk.
const HeaderSize = MaxNameLen + 4 + 4 + 4

// Header is the in-memory form of a DirHeader.
type Header struct {
	Name               string
	StartCluster       uint32
	ParentStartCluster uint32
	EntryCount         uint32
}

func (h Header) MarshalBinary() ([]byte, error) {
	if len(h.Name) >= MaxNameLen {
		return nil, Fatalf("name %q exceeds MAX_NAME_LEN", h.Name)
	}
	rec := headerOnDisk{
		Name:               encodeName(h.Name),
		StartCluster:       h.StartCluster,
		ParentStartCluster: h.ParentStartCluster,
		EntryCount:         h.EntryCount,
	}
	buf := new(bytes.Buffer)
	buf.Grow(HeaderSize)
	if err := binary.Write(buf, binary.LittleEndian, rec); err != nil {
		return nil, Fatal(err)
	}
	return buf.Bytes(), nil
}

func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return Fatalf("short DirHeader record: %d bytes", len(data))
	}
	var rec headerOnDisk
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &rec); err != nil {
		return Fatal(err)
	}
	h.Name = decodeName(rec.Name)
	h.StartCluster = rec.StartCluster
	h.ParentStartCluster = rec.ParentStartCluster
	h.EntryCount = rec.EntryCount
	return nil
}
