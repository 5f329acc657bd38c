package phtree

// pools holds the per-Tree object recyclers named in spec.md §4.7:
// nodes, entries, and scratch []uint64/[]*Entry arrays of common
// sizes. The teacher (lleo-go-hamt-functional) is copy-on-write and
// relies entirely on the GC, so it has nothing to adapt here; this
// component is grounded on the original source's BSTPool/NodePool
// instead, translated from Java's explicit get/offer contract to plain
// Go freelists. Pools are per-Tree, never process-global (spec.md §9's
// "make statNLeaves/statNInner per-tree" note applies equally to
// pooling), and carry no locking: the engine is single-writer.
type pools struct {
	nodes       []*Node
	entries     []*Entry
	uint64Slabs map[int][]Key
	entrySlabs  map[int][][]*Entry
}

func newPools() *pools {
	return &pools{
		uint64Slabs: make(map[int][]Key),
		entrySlabs:  make(map[int][][]*Entry),
	}
}

// getNode returns a zeroed Node, either recycled or freshly allocated.
func (p *pools) getNode() *Node {
	if n := len(p.nodes); n > 0 {
		nd := p.nodes[n-1]
		p.nodes = p.nodes[:n-1]
		*nd = Node{}
		return nd
	}
	return &Node{}
}

// offerNode returns a node to the pool. The caller must not reference
// nd after this call: pools hold weak ownership per spec.md §5.
func (p *pools) offerNode(nd *Node) {
	nd.idx = nil
	nd.count = 0
	p.nodes = append(p.nodes, nd)
}

// getEntry returns a zeroed Entry.
func (p *pools) getEntry() *Entry {
	if n := len(p.entries); n > 0 {
		e := p.entries[n-1]
		p.entries = p.entries[:n-1]
		*e = Entry{}
		return e
	}
	return &Entry{}
}

// offerEntry returns an entry to the pool, along with its KDKey: every
// KDKey still attached to an Entry at this point was itself obtained
// from cloneKey, so it is safe -- and required, to avoid leaking the
// slab -- to recycle it here too.
func (p *pools) offerEntry(e *Entry) {
	if e.KDKey != nil {
		p.offerKey(e.KDKey)
	}
	e.KDKey = nil
	e.Node = nil
	e.Value = nil
	p.entries = append(p.entries, e)
}

// getKey returns a Key of at least the given length; contents are
// uninitialized, matching spec.md §4.7's pool contract.
func (p *pools) getKey(size int) Key {
	slab := p.uint64Slabs[size]
	if n := len(slab); n > 0 {
		k := slab[n-1]
		p.uint64Slabs[size] = slab[:n-1]
		return k
	}
	return make(Key, size)
}

// offerKey returns a scratch Key array to the pool.
func (p *pools) offerKey(k Key) {
	size := len(k)
	p.uint64Slabs[size] = append(p.uint64Slabs[size], k)
}

// cloneKey copies k into a pool-backed Key, for callers that need an
// independent copy scoped to the lifetime of the Entry it will be
// attached to (as opposed to Key.Clone, whose copy is expected to
// outlive the Tree).
func (p *pools) cloneKey(k Key) Key {
	nk := p.getKey(len(k))
	copy(nk, k)
	return nk
}

// getEntrySlice returns a []*Entry of at least the given length.
func (p *pools) getEntrySlice(size int) []*Entry {
	slab := p.entrySlabs[size]
	if n := len(slab); n > 0 {
		s := slab[n-1]
		p.entrySlabs[size] = slab[:n-1]
		for i := range s {
			s[i] = nil
		}
		return s
	}
	return make([]*Entry, size)
}

// offerEntrySlice returns a scratch []*Entry to the pool.
func (p *pools) offerEntrySlice(s []*Entry) {
	size := len(s)
	p.entrySlabs[size] = append(p.entrySlabs[size], s)
}
