package volume

import (
	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/fat"
)

// resolveDestination implements the destination-resolution rule shared
// by mv and cp (spec.md §4.6): if the path resolves to a directory, the
// entry lands inside it under its own basename, displacing any existing
// file of that name; if it resolves to an existing file, that file is
// replaced; if it doesn't resolve at all, its parent must exist and the
// final path segment becomes the new name.
func (v *Volume) resolveDestination(dstPath, basename string) (destDir *fat.Directory, finalName string, err error) {
	e, ok, err := v.resolve(dstPath)
	if err != nil {
		return nil, "", err
	}

	if ok && e.Directory {
		destDir, err = v.loadDir(e.StartCluster)
		if err != nil {
			return nil, "", err
		}
		finalName = basename
		if existing, exists := destDir.Find(finalName); exists {
			if existing.Directory {
				return nil, "", fat32.Fatalf("cannot overwrite directory %q", finalName)
			}
			destDir.RemoveEntry(finalName)
			v.table.FreeChainTail(existing.StartCluster)
			v.table.FreeHead(existing.StartCluster)
		}
		return destDir, finalName, nil
	}

	if ok && !e.Directory {
		destDir, err = v.loadDir(e.ParentStartCluster)
		if err != nil {
			return nil, "", err
		}
		finalName = e.Name
		destDir.RemoveEntry(finalName)
		v.table.FreeChainTail(e.StartCluster)
		v.table.FreeHead(e.StartCluster)
		return destDir, finalName, nil
	}

	parentPath, name := splitParentChild(dstPath)
	if name == "" {
		return nil, "", fat32.Fatalf("invalid destination path: %q", dstPath)
	}
	destDir, err = v.resolveDirectory(parentPath)
	if err != nil {
		return nil, "", err
	}
	return destDir, name, nil
}

// Mv implements spec.md §4.6 "mv": rename/move a file.
func (v *Volume) Mv(dstPath, srcPath string) error {
	e, ok, err := v.resolve(srcPath)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such file: %q", srcPath)
	}
	if e.Directory {
		return fat32.Fatalf("%q is a directory", srcPath)
	}

	srcParent, err := v.loadDir(e.ParentStartCluster)
	if err != nil {
		return err
	}
	if _, ok := srcParent.RemoveEntry(e.Name); !ok {
		return fat32.Fatalf("corrupted tree: %q missing from its own parent", srcPath)
	}
	if err := srcParent.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}

	destDir, finalName, err := v.resolveDestination(dstPath, e.Name)
	if err != nil {
		return err
	}

	moved := e
	moved.Name = finalName
	moved.ParentStartCluster = destDir.Header.StartCluster
	if err := destDir.AddEntry(moved); err != nil {
		return err
	}
	if err := destDir.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}
	return v.table.Save(v.device)
}

// Cp implements spec.md §4.6 "cp": copy a file's contents into a fresh
// chain and link it at the destination, leaving the source untouched.
func (v *Volume) Cp(dstPath, srcPath string) error {
	e, ok, err := v.resolve(srcPath)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such file: %q", srcPath)
	}
	if e.Directory {
		return fat32.Fatalf("%q is a directory", srcPath)
	}

	newHead, err := v.copyClusters(e.StartCluster, int64(e.Size))
	if err != nil {
		return err
	}

	destDir, finalName, err := v.resolveDestination(dstPath, e.Name)
	if err != nil {
		return err
	}

	copied := fat.Entry{
		Name:               finalName,
		StartCluster:       newHead,
		ParentStartCluster: destDir.Header.StartCluster,
		Size:               e.Size,
		Directory:          false,
	}
	if err := destDir.AddEntry(copied); err != nil {
		return err
	}
	if err := destDir.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}
	return v.table.Save(v.device)
}

// copyClusters allocates a fresh chain of the same length as the
// source and copies its bytes through the BlockDevice, cluster by
// cluster, per spec.md §4.6 "cp" / DESIGN.md Open Question decision #2.
func (v *Volume) copyClusters(srcHead uint32, size int64) (uint32, error) {
	clusterSize := int64(v.geometry.ClusterSize)
	dataClusters := ceilDivInt64(size, clusterSize)
	if !v.table.CountFreeAtLeast(1 + int(dataClusters)) {
		return 0, fat32.Fatalf("not enough free clusters to copy file")
	}

	newHead := v.table.GetFreeCluster()
	curSrc := srcHead
	curDst := newHead
	remaining := size

	for remaining > 0 {
		n := clusterSize
		if remaining < n {
			n = remaining
		}
		buf, err := readClusterBytes(v.device, v.geometry, curSrc, int(n))
		if err != nil {
			return 0, err
		}
		if err := writeClusterBytes(v.device, v.geometry, curDst, buf); err != nil {
			return 0, err
		}
		remaining -= n
		if remaining > 0 {
			curSrc = v.table.Get(curSrc)
			next := v.table.GetFreeCluster()
			v.table.Set(curDst, next)
			curDst = next
		}
	}

	eofCluster := v.table.GetFreeCluster()
	v.table.Set(curDst, eofCluster)
	v.table.Set(eofCluster, fat.EOF)
	return newHead, nil
}
