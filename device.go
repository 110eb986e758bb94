package fat32

import (
	"io"
	"os"
)

// BlockDevice is the out-of-scope collaborator spec.md §4.1 describes: a
// single named backing file opened for read+write, addressed by an
// absolute byte offset. All failures at this layer are fatal — the
// engine is single-user and local, so there is nothing useful to retry.
type BlockDevice interface {
	Exists(name string) bool
	Create(name string, size int64) error
	Open(name string) error
	Close() error
	Seek(offset int64) error
	Read(buf []byte) error
	Write(buf []byte) error
}

// FileDevice is the BlockDevice implementation backed by a host file:
// it wraps a single os.File. MemDevice (memdevice.go) is the in-memory
// implementation the tests mount instead.
type FileDevice struct {
	file *os.File
}

// NewFileDevice returns an unopened FileDevice.
func NewFileDevice() *FileDevice {
	return &FileDevice{}
}

func (d *FileDevice) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (d *FileDevice) Create(name string, size int64) error {
	f, err := os.Create(name)
	if err != nil {
		return Fatal(err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDevice) Open(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR, 0o600)
	if err != nil {
		return Fatal(err)
	}
	d.file = f
	return nil
}

func (d *FileDevice) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDevice) Seek(offset int64) error {
	if d.file == nil {
		return Fatalf("device is not open")
	}
	_, err := d.file.Seek(offset, 0)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDevice) Read(buf []byte) error {
	if d.file == nil {
		return Fatalf("device is not open")
	}
	if _, err := io.ReadFull(d.file, buf); err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDevice) Write(buf []byte) error {
	if d.file == nil {
		return Fatalf("device is not open")
	}
	if _, err := d.file.Write(buf); err != nil {
		return Fatal(err)
	}
	return nil
}
