package fat

import (
	"strings"

	fat32 "github.com/silhavyj/FAT32"
)

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// parentOf loads directory dir's parent, handling the root-is-its-own-
// parent rule from spec.md §4.5/§9 Open Question #3.
func parentOf(device fat32.BlockDevice, table *Table, g Geometry, rootCluster uint32, dir *Directory) (*Directory, error) {
	parent := dir.Header.ParentStartCluster
	if dir.Header.StartCluster == rootCluster {
		parent = rootCluster
	}
	return LoadDirectory(device, table, g, parent)
}

// Resolve implements spec.md §4.5's getEntry: it walks path from either
// the root (leading "/") or cwdCluster, honoring "." and "..", and
// returns (entry, true, nil) on success or (zero, false, nil) when the
// path simply doesn't exist — never an error for an ordinary miss, per
// spec.md §7 and §9's NULL_DIR_ENTRY replacement.
func Resolve(device fat32.BlockDevice, table *Table, g Geometry, rootCluster, cwdCluster uint32, path string) (Entry, bool, error) {
	if path == "" {
		return Entry{}, false, Fatalf("invalid empty path")
	}

	if path == "." {
		dir, err := LoadDirectory(device, table, g, cwdCluster)
		if err != nil {
			return Entry{}, false, err
		}
		return dir.AsEntry(), true, nil
	}

	if path == ".." {
		dir, err := LoadDirectory(device, table, g, cwdCluster)
		if err != nil {
			return Entry{}, false, err
		}
		parent, err := parentOf(device, table, g, rootCluster, dir)
		if err != nil {
			return Entry{}, false, err
		}
		return parent.AsEntry(), true, nil
	}

	start := cwdCluster
	if strings.HasPrefix(path, "/") {
		start = rootCluster
	}

	startDir, err := LoadDirectory(device, table, g, start)
	if err != nil {
		return Entry{}, false, err
	}
	current := startDir.AsEntry()

	segments := splitPath(path)
	for idx, seg := range segments {
		last := idx == len(segments)-1

		switch seg {
		case ".":
			continue
		case "..":
			if !current.Directory {
				return Entry{}, false, nil
			}
			d, err := LoadDirectory(device, table, g, current.StartCluster)
			if err != nil {
				return Entry{}, false, err
			}
			parent, err := parentOf(device, table, g, rootCluster, d)
			if err != nil {
				return Entry{}, false, err
			}
			current = parent.AsEntry()
		default:
			if !current.Directory {
				return Entry{}, false, nil
			}
			d, err := LoadDirectory(device, table, g, current.StartCluster)
			if err != nil {
				return Entry{}, false, err
			}
			e, ok := d.Find(seg)
			if !ok {
				return Entry{}, false, nil
			}
			if !last && !e.Directory {
				return Entry{}, false, nil
			}
			current = e
		}
	}

	return current, true, nil
}
