package fat

import (
	"encoding/binary"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	fat32 "github.com/silhavyj/FAT32"
)

// Table is the in-memory FAT: CLUSTER_COUNT cluster indices, each
// holding either a sentinel or the index of the next cluster in its
// chain. It is held fully in memory and flushed to the start of the
// device (offset 0) on every mutating operation, per spec.md §4.2.
type Table struct {
	Geometry Geometry
	entries  []uint32
}

// NewTable builds a freshly formatted table: every cluster FREE, the
// root cluster included. The root directory is the first allocation
// made on a fresh table, so first-fit hands it cluster 0.
func NewTable(g Geometry) *Table {
	entries := make([]uint32, g.ClusterCount)
	for i := range entries {
		entries[i] = Free
	}
	return &Table{Geometry: g, entries: entries}
}

// Load reads the whole FAT region from the device into memory.
func Load(device fat32.BlockDevice, g Geometry) (*Table, error) {
	if err := device.Seek(0); err != nil {
		return nil, Fatal(err)
	}
	buf := make([]byte, g.FATSize())
	if err := device.Read(buf); err != nil {
		return nil, Fatal(err)
	}
	entries := make([]uint32, g.ClusterCount)
	for i := range entries {
		entries[i] = binary.LittleEndian.Uint32(buf[i*addrSize:])
	}
	return &Table{Geometry: g, entries: entries}, nil
}

// Save flushes the entire FAT region back to the device. Invariant I6
// requires this at every operation boundary.
func (t *Table) Save(device fat32.BlockDevice) error {
	buf := make([]byte, t.Geometry.FATSize())
	for i, v := range t.entries {
		binary.LittleEndian.PutUint32(buf[i*addrSize:], v)
	}
	if err := device.Seek(0); err != nil {
		return Fatal(err)
	}
	if err := device.Write(buf); err != nil {
		return Fatal(err)
	}
	return nil
}

// Entries returns a defensive copy of the whole FAT, for read-only
// audits such as fsck that must not race with a mutating operation.
func (t *Table) Entries() []uint32 {
	out := make([]uint32, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Get(i uint32) uint32 {
	return t.entries[i]
}

func (t *Table) Set(i uint32, v uint32) {
	t.entries[i] = v
}

// GetFreeCluster is a first-fit scan for a FREE slot; it marks the slot
// TAKEN immediately (the TAKEN sentinel from spec.md §4.3/§9) so a
// second call before the first reservation is linked won't re-pick it.
func (t *Table) GetFreeCluster() uint32 {
	for i, v := range t.entries {
		if v == Free {
			t.entries[i] = Taken
			return uint32(i)
		}
	}
	return NoFree
}

// CountFreeAtLeast reports whether at least n clusters are FREE,
// early-exiting once n is reached.
func (t *Table) CountFreeAtLeast(n int) bool {
	if n <= 0 {
		return true
	}
	free := 0
	for _, v := range t.entries {
		if v == Free {
			free++
			if free == n {
				return true
			}
		}
	}
	return false
}

// CountFree returns the exact number of FREE slots.
func (t *Table) CountFree() int {
	free := 0
	for _, v := range t.entries {
		if v == Free {
			free++
		}
	}
	return free
}

// CountFreeConcurrent is the read-only, parallel equivalent of
// CountFree, used by Volume.Info (SPEC_FULL.md §4.3). It
// must never run while a mutating operation is scanning or writing the
// same table — the dispatch loop that owns both is single-threaded.
func (t *Table) CountFreeConcurrent() int {
	shards := runtime.GOMAXPROCS(0)
	if shards < 1 {
		shards = 1
	}
	n := len(t.entries)
	if shards > n {
		shards = 1
	}
	chunk := (n + shards - 1) / shards

	p := pool.NewWithResults[int]()
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		lo, hi := start, end
		p.Go(func() int {
			free := 0
			for _, v := range t.entries[lo:hi] {
				if v == Free {
					free++
				}
			}
			return free
		})
	}
	total := 0
	for _, c := range p.Wait() {
		total += c
	}
	return total
}

// FreeChainTail walks the chain starting at fat[start] (i.e. skips the
// head cluster) marking every visited slot FREE until EOF or FREE is
// reached, per spec.md §4.3's head-preservation rule. The head cluster
// itself is deliberately left untouched; callers that are deleting the
// object entirely must free it separately.
func (t *Table) FreeChainTail(start uint32) {
	cur := t.entries[start]
	for t.entries[cur] != EOF && t.entries[cur] != Free {
		next := t.entries[cur]
		t.entries[cur] = Free
		cur = next
	}
	t.entries[cur] = Free
}

// FreeHead marks the head cluster itself FREE. Used by rm/rmdir after
// FreeChainTail, never by a rewrite-in-place save.
func (t *Table) FreeHead(head uint32) {
	t.entries[head] = Free
}
