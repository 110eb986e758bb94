package fat32

// MemDevice is an in-memory BlockDevice, used by this module's own
// tests (fat/*_test.go, volume/*_test.go) to exercise the engine
// without touching the host filesystem.
type MemDevice struct {
	buf     []byte
	offset  int64
	open    bool
	created bool
}

// NewMemDevice returns a MemDevice pre-sized to size bytes and already
// open, for engine tests (fat/*_test.go) that bypass Create/Mount
// entirely. Exists reports false until Create is called explicitly, so
// volume.Mount's format-vs-reopen branch behaves the same as it would
// against a FileDevice over a not-yet-existing file.
func NewMemDevice(size int64) *MemDevice {
	return &MemDevice{buf: make([]byte, size), open: true}
}

func (d *MemDevice) Exists(name string) bool { return d.created }

func (d *MemDevice) Create(name string, size int64) error {
	d.buf = make([]byte, size)
	d.created = true
	return nil
}

func (d *MemDevice) Open(name string) error {
	if d.buf == nil {
		return Fatalf("device does not exist")
	}
	d.open = true
	return nil
}

func (d *MemDevice) Close() error {
	d.open = false
	return nil
}

func (d *MemDevice) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(d.buf)) {
		return Fatalf("seek out of range: %d", offset)
	}
	d.offset = offset
	return nil
}

func (d *MemDevice) Read(buf []byte) error {
	if !d.open {
		return Fatalf("device is not open")
	}
	if d.offset+int64(len(buf)) > int64(len(d.buf)) {
		return Fatalf("read past end of device")
	}
	n := copy(buf, d.buf[d.offset:])
	d.offset += int64(n)
	return nil
}

func (d *MemDevice) Write(buf []byte) error {
	if !d.open {
		return Fatalf("device is not open")
	}
	if d.offset+int64(len(buf)) > int64(len(d.buf)) {
		return Fatalf("write past end of device")
	}
	n := copy(d.buf[d.offset:], buf)
	d.offset += int64(n)
	return nil
}
