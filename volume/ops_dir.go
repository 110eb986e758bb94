package volume

import (
	"fmt"
	"strings"

	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/fat"
)

func (v *Volume) resolveDirectory(path string) (*fat.Directory, error) {
	if path == "" || path == "." {
		return v.loadDir(v.cwd)
	}
	e, ok, err := v.resolve(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fat32.Fatalf("no such directory: %q", path)
	}
	if !e.Directory {
		return nil, fat32.Fatalf("%q is not a directory", path)
	}
	return v.loadDir(e.StartCluster)
}

// Mkdir implements spec.md §4.6 "mkdir": create an empty directory at
// path, failing if the full path already resolves or the parent is
// missing/not a directory.
func (v *Volume) Mkdir(path string) error {
	if _, ok, err := v.resolve(path); err != nil {
		return err
	} else if ok {
		return fat32.Fatalf("already exists: %q", path)
	}

	parentPath, name := splitParentChild(path)
	if name == "" {
		return fat32.Fatalf("invalid path: %q", path)
	}
	parent, err := v.resolveDirectory(parentPath)
	if err != nil {
		return err
	}
	if _, exists := parent.Find(name); exists {
		return fat32.Fatalf("already exists: %q", name)
	}

	child, err := fat.CreateEmptyDirectory(v.table, name, parent.Header.StartCluster)
	if err != nil {
		return err
	}
	if err := parent.AddEntry(child.AsEntry()); err != nil {
		return err
	}
	if err := parent.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}
	if err := child.Save(v.device, v.table, v.geometry); err != nil {
		return err
	}
	return nil
}

// Rmdir implements spec.md §4.6 "rmdir": remove an empty, non-root
// directory.
func (v *Volume) Rmdir(path string) error {
	e, ok, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such directory: %q", path)
	}
	if !e.Directory {
		return fat32.Fatalf("%q is not a directory", path)
	}
	if e.StartCluster == fat.RootCluster {
		return fat32.Fatalf("cannot remove the root directory")
	}

	dir, err := v.loadDir(e.StartCluster)
	if err != nil {
		return err
	}
	if len(dir.Entries) != 0 {
		return fat32.Fatalf("directory not empty: %q", path)
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

// Ls implements spec.md §4.6 "ls": list the entries of a directory, or
// describe a single file.
func (v *Volume) Ls(path string) (string, error) {
	if path == "" {
		path = "."
	}
	e, ok, err := v.resolve(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fat32.Fatalf("no such file or directory: %q", path)
	}
	if !e.Directory {
		return fmt.Sprintf("%-16s %10d\n", e.Name, e.Size), nil
	}

	dir, err := v.loadDir(e.StartCluster)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, entry := range dir.Entries {
		kind := "f"
		if entry.Directory {
			kind = "d"
		}
		fmt.Fprintf(&b, "%s %-16s %10d\n", kind, entry.Name, entry.Size)
	}
	return b.String(), nil
}

// Cd implements spec.md §4.6 "cd": change the working directory.
func (v *Volume) Cd(path string) error {
	e, ok, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !ok {
		return fat32.Fatalf("no such directory: %q", path)
	}
	if !e.Directory {
		return fat32.Fatalf("%q is not a directory", path)
	}
	v.cwd = e.StartCluster
	return nil
}

// Pwd implements spec.md §4.6 "pwd": print the absolute path of the
// working directory by climbing parent links to the root.
func (v *Volume) Pwd() (string, error) {
	if v.cwd == fat.RootCluster {
		return "/", nil
	}
	var parts []string
	cur := v.cwd
	for cur != fat.RootCluster {
		dir, err := v.loadDir(cur)
		if err != nil {
			return "", err
		}
		parts = append([]string{dir.Header.Name}, parts...)
		cur = dir.Header.ParentStartCluster
	}
	return "/" + strings.Join(parts, "/"), nil
}

// Tree implements the supplemental "tree" operation (SPEC_FULL.md
// §4.6), recursively printing the directory hierarchy rooted at path.
func (v *Volume) Tree(path string) (string, error) {
	dir, err := v.resolveDirectory(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(dir.Header.Name)
	b.WriteByte('\n')
	if err := v.writeTree(&b, dir, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (v *Volume) writeTree(b *strings.Builder, dir *fat.Directory, prefix string) error {
	for i, e := range dir.Entries {
		last := i == len(dir.Entries)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, e.Name)
		if e.Directory {
			child, err := v.loadDir(e.StartCluster)
			if err != nil {
				return err
			}
			if err := v.writeTree(b, child, nextPrefix); err != nil {
				return err
			}
		}
	}
	return nil
}
