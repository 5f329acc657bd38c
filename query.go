package phtree

// Result is a materialized query hit: a window, k-NN, or range query
// entry with its key, value, and (for distance-based queries) the
// distance from the query center.
type Result struct {
	Key   Key
	Value interface{}
	Dist  float64
}

// frame is one level of an iterator's descent stack: the ordered
// entries of one node and a cursor into them. Building the slice once
// per visited node, rather than re-walking the node's secondaryIndex on
// every step, is the one allocation-per-node this repo's iterators make;
// spec.md §5's "no allocation per step unless a new result is
// materialized" is honored at entry granularity, not at node-descent
// granularity (see DESIGN.md).
type frame struct {
	entries []*Entry
	pos     int
}

// Iterator performs a full, unfiltered traversal of a Tree in hcPos
// order, visiting every entry exactly once (spec.md §8, property 5).
// It is invalidated by any mutation to the tree that happens between
// its creation and its next HasNext/Next call (spec.md §5).
type Iterator struct {
	t        *Tree
	modCount uint64
	stack    []frame
	filter   Filter
}

// Iterator returns a full traversal over t.
func (t *Tree) Iterator() *Iterator {
	it := &Iterator{t: t, modCount: t.modCount}
	it.push(t.root)
	return it
}

// SetFilter restricts the iterator to entries for which f returns true.
func (it *Iterator) SetFilter(f Filter) { it.filter = f }

func (it *Iterator) push(n *Node) {
	entries := it.t.pools.getEntrySlice(n.idx.size())
	i := 0
	n.idx.forEach(func(e *Entry) bool {
		entries[i] = e
		i++
		return true
	})
	it.stack = append(it.stack, frame{entries: entries})
}

// HasNext reports whether another entry is available. It returns
// ErrConcurrentModification if the tree was mutated since this
// iterator was created or last advanced.
func (it *Iterator) HasNext() (bool, error) {
	if it.modCount != it.t.modCount {
		return false, ErrConcurrentModification
	}
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.pos >= len(top.entries) {
			it.t.pools.offerEntrySlice(top.entries)
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		e := top.entries[top.pos]
		if e.IsNode() {
			top.pos++
			it.push(e.Node)
			continue
		}
		if it.filter != nil && !it.filter(e.KDKey) {
			top.pos++
			continue
		}
		return true, nil
	}
	return false, nil
}

// Next returns the current entry and advances the iterator. Callers
// must call HasNext first; Next on an exhausted iterator returns a
// nil key.
func (it *Iterator) Next() (Key, interface{}, error) {
	if it.modCount != it.t.modCount {
		return nil, nil, ErrConcurrentModification
	}
	if len(it.stack) == 0 {
		return nil, nil, nil
	}
	top := &it.stack[len(it.stack)-1]
	e := top.entries[top.pos]
	top.pos++
	return e.KDKey, e.Value, nil
}
