package phtree

// leafIndex is the ordered-leaf secondary index: parallel hcPos/entry
// slices kept sorted by hcPos, searched by binary search. This is an
// in-place-mutation adaptation of the teacher's compressedTable (which
// keeps the same sorted-by-index slice shape but is copy-on-write); the
// leaf page layout itself -- sorted keys, parallel values, geometric
// growth -- also matches the original source's BSTreePageLHC leaf
// pages.
type leafIndex struct {
	dim     int
	hcPos   []int
	entries []*Entry
}

// initialLeafCapacity follows spec.md §4.2: capacity 2 when the node's
// total address space (2^dim) is small, 4 otherwise.
func initialLeafCapacity(dim int) int {
	if dim2Slots(dim) <= 8 {
		return 2
	}
	return 4
}

func newLeafIndex(dim int) *leafIndex {
	cap0 := initialLeafCapacity(dim)
	return &leafIndex{
		dim:     dim,
		hcPos:   make([]int, 0, cap0),
		entries: make([]*Entry, 0, cap0),
	}
}

// search locates hcPos by hand-rolled binary search over the parallel
// hcPos/entries slices, rather than reaching for sort.Search: leaf
// pages here are small (initialLeafCapacity is 2 or 4) and this is a
// hot path called on every get/insert/remove, so a direct loop avoids
// the closure call per comparison sort.Search would cost.
func (l *leafIndex) search(hcPos int) (idx int, found bool) {
	lo, hi := 0, len(l.hcPos)
	for lo < hi {
		mid := (lo + hi) / 2
		if l.hcPos[mid] < hcPos {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	found = lo < len(l.hcPos) && l.hcPos[lo] == hcPos
	return lo, found
}

func (l *leafIndex) get(hcPos int) (*Entry, bool) {
	i, found := l.search(hcPos)
	if !found {
		return nil, false
	}
	return l.entries[i], true
}

func (l *leafIndex) getOrCreate(hcPos int, newFn func() *Entry) (*Entry, bool) {
	i, found := l.search(hcPos)
	if found {
		return l.entries[i], false
	}

	e := newFn()

	l.hcPos = append(l.hcPos, 0)
	copy(l.hcPos[i+1:], l.hcPos[i:])
	l.hcPos[i] = hcPos

	l.entries = append(l.entries, nil)
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e

	return e, true
}

func (l *leafIndex) remove(hcPos int) (*Entry, bool) {
	i, found := l.search(hcPos)
	if !found {
		return nil, false
	}
	e := l.entries[i]

	copy(l.hcPos[i:], l.hcPos[i+1:])
	l.hcPos = l.hcPos[:len(l.hcPos)-1]

	copy(l.entries[i:], l.entries[i+1:])
	l.entries[len(l.entries)-1] = nil
	l.entries = l.entries[:len(l.entries)-1]

	return e, true
}

func (l *leafIndex) size() int { return len(l.entries) }

func (l *leafIndex) forEach(fn func(*Entry) bool) {
	for _, e := range l.entries {
		if !fn(e) {
			return
		}
	}
}

func (l *leafIndex) forEachMasked(minMask, maxMask uint64, fn func(*Entry) bool) {
	// A single quadrant matches when minMask and maxMask agree on
	// every bit (spec.md §4.6): binary search directly instead of
	// scanning, exactly as the teacher's lookup does for a known
	// index via its own binary search over compressedTable.nodeMap.
	if minMask == maxMask {
		if e, ok := l.get(int(minMask)); ok {
			fn(e)
		}
		return
	}
	for _, e := range l.entries {
		if hcMasked(e.HCPos, minMask, maxMask) {
			if !fn(e) {
				return
			}
		}
	}
}

func (l *leafIndex) firstValue() (*Entry, bool) {
	if len(l.entries) == 0 {
		return nil, false
	}
	return l.entries[0], true
}
