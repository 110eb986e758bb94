package volume

import (
	"io"
	"path/filepath"

	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/fat"
)

// In implements spec.md §4.6 "in": import a host file into the working
// directory. An empty source file is rejected — DESIGN.md Open Question
// decision #4 — since a zero-length chain has no head cluster to hold.
func (v *Volume) In(hostPath string) error {
	f, err := v.hostFS.Open(hostPath)
	if err != nil {
		return fat32.Fatal(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fat32.Fatal(err)
	}
	size := info.Size()
	if size == 0 {
		return fat32.Fatalf("cannot import an empty file: %q", hostPath)
	}

	name := filepath.Base(hostPath)
	cwdDir, err := v.loadDir(v.cwd)
	if err != nil {
		return err
	}
	if _, exists := cwdDir.Find(name); exists {
		return fat32.Fatalf("already exists: %q", name)
	}

	clusterSize := int64(v.geometry.ClusterSize)
	dataClusters := ceilDivInt64(size, clusterSize)
	if !v.table.CountFreeAtLeast(1 + int(dataClusters)) {
		return fat32.Fatalf("not enough free clusters to import %q", hostPath)
	}

	head := v.table.GetFreeCluster()
	cur := head
	remaining := size
	buf := make([]byte, clusterSize)
	for remaining > 0 {
		n := clusterSize
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			return fat32.Fatal(err)
		}
		if err := writeClusterBytes(v.device, v.geometry, cur, buf[:n]); err != nil {
			return err
		}
		remaining -= n
		if remaining > 0 {
			next := v.table.GetFreeCluster()
			v.table.Set(cur, next)
			cur = next
		}
	}
	eofCluster := v.table.GetFreeCluster()
	v.table.Set(cur, eofCluster)
	v.table.Set(eofCluster, fat.EOF)

	if err := cwdDir.AddEntry(fat.Entry{
		Name:               name,
		StartCluster:       head,
		ParentStartCluster: v.cwd,
		Size:               uint32(size),
		Directory:          false,
	}); err != nil {
		return err
	}
	if err := cwdDir.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}
	return v.table.Save(v.device)
}

// Out implements spec.md §4.6 "out": export a file to the host
// filesystem, verifying the chain terminates in EOF.
func (v *Volume) Out(path string) error {
	e, ok, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such file: %q", path)
	}
	if e.Directory {
		return fat32.Fatalf("%q is a directory", path)
	}

	out, err := v.hostFS.Create(filepath.Base(path))
	if err != nil {
		return fat32.Fatal(err)
	}
	defer out.Close()

	return v.copyFileTo(e, out)
}

// Cat implements spec.md §4.6 "cat": write a file's contents to w.
func (v *Volume) Cat(path string, w io.Writer) error {
	e, ok, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such file: %q", path)
	}
	if e.Directory {
		return fat32.Fatalf("%q is a directory", path)
	}
	return v.copyFileTo(e, w)
}

func (v *Volume) copyFileTo(e fat.Entry, w io.Writer) error {
	cur := e.StartCluster
	remaining := int64(e.Size)
	for remaining > 0 {
		n := int64(v.geometry.ClusterSize)
		if remaining < n {
			n = remaining
		}
		buf, err := readClusterBytes(v.device, v.geometry, cur, int(n))
		if err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return fat32.Fatal(err)
		}
		remaining -= n
		if remaining > 0 {
			cur = v.table.Get(cur)
		}
	}
	if v.table.Get(v.table.Get(cur)) != fat.EOF {
		return fat32.Fatalf("corrupted file chain: %q does not terminate at EOF", e.Name)
	}
	return nil
}

// Rm implements spec.md §4.6 "rm": delete a file.
func (v *Volume) Rm(path string) error {
	e, ok, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such file: %q", path)
	}
	if e.Directory {
		return fat32.Fatalf("%q is a directory", path)
	}

	parent, err := v.loadDir(e.ParentStartCluster)
	if err != nil {
		return err
	}
	if _, ok := parent.RemoveEntry(e.Name); !ok {
		return fat32.Fatalf("corrupted tree: %q missing from its own parent", path)
	}
	if err := parent.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}

	v.table.FreeChainTail(e.StartCluster)
	v.table.FreeHead(e.StartCluster)
	return v.table.Save(v.device)
}

func writeClusterBytes(device fat32.BlockDevice, g fat.Geometry, cluster uint32, data []byte) error {
	if err := device.Seek(g.ClusterAddr(cluster)); err != nil {
		return fat32.Fatal(err)
	}
	return device.Write(data)
}

func readClusterBytes(device fat32.BlockDevice, g fat.Geometry, cluster uint32, n int) ([]byte, error) {
	if err := device.Seek(g.ClusterAddr(cluster)); err != nil {
		return nil, fat32.Fatal(err)
	}
	buf := make([]byte, n)
	if err := device.Read(buf); err != nil {
		return nil, fat32.Fatal(err)
	}
	return buf, nil
}
