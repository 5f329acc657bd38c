package phtree

// inWindow reports whether key falls inside [min, max] in every
// dimension -- the exact per-entry test spec.md §4.6 calls for.
func inWindow(key, min, max Key) bool {
	for d := 0; d < len(key); d++ {
		if key[d] < min[d] || key[d] > max[d] {
			return false
		}
	}
	return true
}

// WindowIterator drives a rectangular window query (spec.md §4.6) as a
// resumable state machine over the tree. Rather than deriving the
// candidate-hcPos range (hcMin/hcMax with carry) spec.md §4.6 describes
// as a performance optimization, this implementation prunes subnodes
// with the exact checkInfix test and terminal entries with the exact
// inWindow test at every node -- correct by construction, at the cost
// of not skipping whole hcPos ranges before expanding them (see
// DESIGN.md).
type WindowIterator struct {
	t        *Tree
	min, max Key
	modCount uint64
	stack    []frame
	filter   Filter
}

// Query returns a window query iterator over [min, max] (inclusive,
// component-wise).
func (t *Tree) Query(min, max Key) *WindowIterator {
	t.checkKey(min)
	t.checkKey(max)
	wi := &WindowIterator{t: t, min: min, max: max, modCount: t.modCount}
	wi.push(t.root)
	return wi
}

// SetFilter restricts the iterator to entries for which f returns true,
// in addition to the window test.
func (wi *WindowIterator) SetFilter(f Filter) { wi.filter = f }

// push fills a pool-backed scratch slice sized to the node's full entry
// count, since the number surviving the window/infix filter below isn't
// known until forEach finishes; the unused tail is trimmed off before
// the frame is stacked, so only the entries actually kept are ever
// visited or handed back to offerEntrySlice.
func (wi *WindowIterator) push(n *Node) {
	scratch := wi.t.pools.getEntrySlice(n.idx.size())
	count := 0
	n.idx.forEach(func(e *Entry) bool {
		if e.IsNode() {
			if checkInfix(e.Node.postLen, e.Node.infixLen, e.KDKey, wi.min, wi.max) {
				scratch[count] = e
				count++
			}
			return true
		}
		if inWindow(e.KDKey, wi.min, wi.max) {
			scratch[count] = e
			count++
		}
		return true
	})
	wi.stack = append(wi.stack, frame{entries: scratch[:count]})
}

// HasNext reports whether another entry matching the window remains.
func (wi *WindowIterator) HasNext() (bool, error) {
	if wi.modCount != wi.t.modCount {
		return false, ErrConcurrentModification
	}
	for len(wi.stack) > 0 {
		top := &wi.stack[len(wi.stack)-1]
		if top.pos >= len(top.entries) {
			wi.t.pools.offerEntrySlice(top.entries)
			wi.stack = wi.stack[:len(wi.stack)-1]
			continue
		}
		e := top.entries[top.pos]
		if e.IsNode() {
			top.pos++
			wi.push(e.Node)
			continue
		}
		if wi.filter != nil && !wi.filter(e.KDKey) {
			top.pos++
			continue
		}
		return true, nil
	}
	return false, nil
}

// Next returns the current matching entry and advances the iterator.
func (wi *WindowIterator) Next() (Key, interface{}, error) {
	if wi.modCount != wi.t.modCount {
		return nil, nil, ErrConcurrentModification
	}
	if len(wi.stack) == 0 {
		return nil, nil, nil
	}
	top := &wi.stack[len(wi.stack)-1]
	e := top.entries[top.pos]
	top.pos++
	return e.KDKey, e.Value, nil
}

// CollectAll drains wi into a Result slice. Convenience wrapper for
// callers that don't need resumable iteration.
func (wi *WindowIterator) CollectAll() ([]Result, error) {
	var out []Result
	for {
		ok, err := wi.HasNext()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		k, v, err := wi.Next()
		if err != nil {
			return out, err
		}
		out = append(out, Result{Key: k, Value: v})
	}
}
