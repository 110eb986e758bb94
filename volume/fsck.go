package volume

import (
	"fmt"
	"log"
	"runtime"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/silhavyj/FAT32/fat"
)

// FsckReport is the result of an integrity scan (SPEC_FULL.md §4.6
// "Fsck", supplementing spec.md's original operation set). RunID
// correlates this run's log lines for a caller tailing output.
type FsckReport struct {
	RunID      string
	Violations []string
}

// Clean reports whether the scan found no violations.
func (r FsckReport) Clean() bool {
	return len(r.Violations) == 0
}

// Fsck walks the entire tree and the whole FAT read-only, checking
// invariants I1-I5: no dangling sentinel at rest, every file's chain
// terminates in EOF without revisiting a cluster (directory chains
// are not walked past their head cluster), every entry's parent
// reference matches its containing directory, and every directory's
// names are unique. It never mutates the volume.
func (v *Volume) Fsck() (FsckReport, error) {
	runID := uuid.New().String()
	log.Printf("fsck %s: starting integrity scan over %d clusters", runID, v.geometry.ClusterCount)

	combined := v.fsckScanTable()

	seen := make(map[uint32]bool)
	if err := v.fsckWalk(fat.RootCluster, fat.RootCluster, seen); err != nil {
		combined = multierr.Append(combined, err)
	}

	report := FsckReport{RunID: runID}
	for _, e := range multierr.Errors(combined) {
		report.Violations = append(report.Violations, e.Error())
	}
	log.Printf("fsck %s: completed, %d violation(s)", runID, len(report.Violations))
	return report, nil
}

// fsckScanTable is the read-only, sharded FAT sentinel audit
// (SPEC_FULL.md §4.6), reusing the same concurrency shape as
// Table.CountFreeConcurrent.
func (v *Volume) fsckScanTable() error {
	entries := v.table.Entries()
	n := len(entries)

	shards := runtime.GOMAXPROCS(0)
	if shards < 1 || shards > n {
		shards = 1
	}
	chunk := (n + shards - 1) / shards

	p := pool.NewWithResults[[]error]()
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		lo, hi := start, end
		p.Go(func() []error {
			var errs []error
			for i := lo; i < hi; i++ {
				val := entries[i]
				if val == fat.Taken {
					errs = append(errs, fmt.Errorf("cluster %d at rest holding TAKEN sentinel (I5)", i))
				}
				if val != fat.Free && val != fat.EOF && val != fat.Taken && val != fat.NoFree && int(val) >= n {
					errs = append(errs, fmt.Errorf("cluster %d points outside the table: %d", i, val))
				}
			}
			return errs
		})
	}

	var combined error
	for _, shardErrs := range p.Wait() {
		for _, e := range shardErrs {
			combined = multierr.Append(combined, e)
		}
	}
	return combined
}

func (v *Volume) fsckWalk(dirCluster, expectedParent uint32, seen map[uint32]bool) error {
	if seen[dirCluster] {
		return fmt.Errorf("FAT cycle: cluster %d visited twice while walking the tree (I1)", dirCluster)
	}
	seen[dirCluster] = true

	dir, err := v.loadDir(dirCluster)
	if err != nil {
		return err
	}

	var combined error
	if dirCluster != fat.RootCluster && dir.Header.ParentStartCluster != expectedParent {
		combined = multierr.Append(combined, fmt.Errorf(
			"directory %q: parent cluster %d does not match containing directory %d (I3)",
			dir.Header.Name, dir.Header.ParentStartCluster, expectedParent))
	}

	names := make(map[string]bool, len(dir.Entries))
	for _, e := range dir.Entries {
		if names[e.Name] {
			combined = multierr.Append(combined, fmt.Errorf(
				"directory %q: duplicate name %q (I4/P4)", dir.Header.Name, e.Name))
		}
		names[e.Name] = true

		if e.ParentStartCluster != dirCluster {
			combined = multierr.Append(combined, fmt.Errorf(
				"entry %q: parent reference %d does not match containing directory %d (I3)",
				e.Name, e.ParentStartCluster, dirCluster))
		}

		if e.Directory {
			if err := v.fsckWalk(e.StartCluster, dirCluster, seen); err != nil {
				combined = multierr.Append(combined, err)
			}
		} else if err := v.fsckFileChain(e, seen); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

func (v *Volume) fsckFileChain(e fat.Entry, seen map[uint32]bool) error {
	cur := e.StartCluster
	steps := 0
	limit := v.geometry.ClusterCount + 1

	for {
		if seen[cur] {
			return fmt.Errorf("FAT cycle: file %q revisits cluster %d (I1/I2)", e.Name, cur)
		}
		seen[cur] = true
		steps++
		if steps > limit {
			return fmt.Errorf("file %q chain exceeds cluster count without reaching EOF (I2)", e.Name)
		}
		next := v.table.Get(cur)
		if next == fat.EOF {
			return nil
		}
		if next == fat.Free || next == fat.Taken || next == fat.NoFree {
			return fmt.Errorf("file %q chain broken at cluster %d (I2)", e.Name, cur)
		}
		cur = next
	}
}
