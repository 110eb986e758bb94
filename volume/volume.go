// Package volume implements spec.md §4.6/§4.7: the thirteen POSIX-like
// filesystem operations and the bootstrap that detects-or-creates the
// backing disk image, built on top of the fat32/fat engine.
package volume

import (
	"github.com/spf13/afero"

	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/fat"
)

const (
	kb = 1 << 10
	mb = 1 << 20
)

// Config resolves to the original's compiled-in constants
// (DISK_FILE_NAME="disk.dat", DISK_SIZE=50MB, CLUSTER_SIZE=128) but, per
// SPEC_FULL.md §1, is itself sourced from flags/env/config file at the
// CLI layer rather than hardcoded.
type Config struct {
	DiskPath    string
	ClusterSize int
	DiskSize    int64
}

func DefaultConfig() Config {
	return Config{
		DiskPath:    "disk.dat",
		ClusterSize: 128,
		DiskSize:    50 * mb,
	}
}

// Volume is a mounted filesystem: one BlockDevice, one in-memory FAT,
// and the working-directory start cluster. Non-goals forbid a second
// concurrent instance over the same backing file — Volume does not
// defend against that itself (spec.md §5).
type Volume struct {
	device   fat32.BlockDevice
	table    *fat.Table
	geometry fat.Geometry
	cwd      uint32
	hostFS   afero.Fs
}

// Mount opens (creating and formatting if necessary) the backing file
// named by config.DiskPath, using the real host filesystem for the
// host-side I/O of in and out.
func Mount(config Config) (*Volume, error) {
	return MountDevice(fat32.NewFileDevice(), afero.NewOsFs(), config)
}

// MountDevice is Mount with an injectable BlockDevice and host
// filesystem, used by this module's own tests to avoid touching disk.
func MountDevice(device fat32.BlockDevice, hostFS afero.Fs, config Config) (*Volume, error) {
	geometry, err := fat.NewGeometry(config.ClusterSize, config.DiskSize)
	if err != nil {
		return nil, fat32.Fatal(err)
	}

	v := &Volume{device: device, geometry: geometry, hostFS: hostFS, cwd: fat.RootCluster}

	if !device.Exists(config.DiskPath) {
		if err := v.format(config.DiskPath); err != nil {
			return nil, fat32.Fatal(err)
		}
		return v, nil
	}

	if err := device.Open(config.DiskPath); err != nil {
		return nil, fat32.Fatal(err)
	}
	table, err := fat.Load(device, geometry)
	if err != nil {
		return nil, fat32.Fatal(err)
	}
	v.table = table
	return v, nil
}

// format creates a fresh disk image and seeds the root directory, per
// spec.md §4.7 / original_source/src/fat32.cpp FAT32::initialize. The
// root's parentStartCluster is explicitly 0 (itself) — DESIGN.md Open
// Question decision #3.
func (v *Volume) format(diskPath string) error {
	if err := v.device.Create(diskPath, v.geometry.DiskSize); err != nil {
		return fat32.Fatal(err)
	}
	if err := v.device.Open(diskPath); err != nil {
		return fat32.Fatal(err)
	}

	v.table = fat.NewTable(v.geometry)
	root, err := fat.CreateEmptyDirectory(v.table, "/", fat.RootCluster)
	if err != nil {
		return fat32.Fatal(err)
	}
	if root.Header.StartCluster != fat.RootCluster {
		return fat32.Fatalf("root directory did not receive the reserved root cluster")
	}
	if err := root.Save(v.device, v.table, v.geometry); err != nil {
		return fat32.Fatal(err)
	}
	return nil
}

func (v *Volume) loadDir(cluster uint32) (*fat.Directory, error) {
	return fat.LoadDirectory(v.device, v.table, v.geometry, cluster)
}

func (v *Volume) resolve(path string) (fat.Entry, bool, error) {
	return fat.Resolve(v.device, v.table, v.geometry, fat.RootCluster, v.cwd, path)
}

// Root implements fat32.Volume.
func (v *Volume) Root() (fat32.Directory, error) {
	dir, err := v.loadDir(fat.RootCluster)
	if err != nil {
		return nil, fat32.Fatal(err)
	}
	return &dirAdapter{dir: dir}, nil
}

// Info implements fat32.Volume, per spec.md §4.6 "info". The free count
// comes from the concurrent audit path (SPEC_FULL.md §4.3) since this is
// a read-only scan.
func (v *Volume) Info() (fat32.Stat, error) {
	free := v.table.CountFreeConcurrent()
	return fat32.Stat{
		TotalClusters: v.geometry.ClusterCount,
		FreeClusters:  free,
		ClusterSize:   v.geometry.ClusterSize,
		TotalBytes:    v.geometry.DiskSize,
		FreeBytes:     int64(free) * int64(v.geometry.ClusterSize),
	}, nil
}

func splitParentChild(path string) (parent string, name string) {
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func ceilDivInt64(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
