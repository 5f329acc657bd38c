package phtree

// Node is a PH-tree node: it holds postLen, infixLen, an entry count,
// and a secondary index mapping hcPos to Entry. Operations are
// grounded directly on the original source's Node.java
// (doInsertIfMatching, doIfMatching, handleCollision, insertSplit,
// mergeIntoParentNt) and on the shape of the teacher's Hamt.Put/
// Hamt.Del/find: locate by address, mutate, rebalance.
//
// Node methods take the owning *Tree as their first argument rather
// than holding a back-reference, since pools and dimension are
// properties of the Tree, not the Node -- the same ownership split the
// teacher draws between Hamt (holds nothing persistent) and its tables
// (hold only what the Trie position requires).
type Node struct {
	postLen  int
	infixLen int
	count    int
	idx      secondaryIndex
}

func newNode(t *Tree, postLen, infixLen int) *Node {
	n := t.pools.getNode()
	n.postLen = postLen
	n.infixLen = infixLen
	n.idx = newSecondaryIndex(t.dim)
	return n
}

func keysEqual(a, b Key) bool {
	for d := 0; d < len(a); d++ {
		if a[d] != b[d] {
			return false
		}
	}
	return true
}

// childInfixMatches reports whether kdKey is compatible with the infix
// carried by parent entry e on its way into subnode s: spec.md §4.3's
// "if S.infixLen == 0 recurse with no further check, else compute mcb
// against infixMask(S)".
func (n *Node) childInfixMatches(e *Entry, s *Node, kdKey Key) bool {
	if s.infixLen == 0 {
		return true
	}
	return conflictingBits(kdKey, e.KDKey, infixMask(s.postLen)) == 0
}

// get implements spec.md §4.3's get(kdKey).
func (n *Node) get(kdKey Key) (interface{}, bool) {
	hcPos := hc(kdKey, n.postLen)
	e, ok := n.idx.get(hcPos)
	if !ok {
		return nil, false
	}
	if e.IsNode() {
		if !n.childInfixMatches(e, e.Node, kdKey) {
			return nil, false
		}
		return e.Node.get(kdKey)
	}
	if !keysEqual(e.KDKey, kdKey) {
		return nil, false
	}
	return e.Value, true
}

// insert implements spec.md §4.3's insert(kdKey, value). existed
// reports whether kdKey was already present (prior holds its old
// value); existed == false means a brand-new key was added.
func (n *Node) insert(t *Tree, kdKey Key, value interface{}) (prior interface{}, existed bool) {
	hcPos := hc(kdKey, n.postLen)
	e, created := n.idx.getOrCreate(hcPos, func() *Entry {
		return newValueEntry(t.pools, hcPos, t.pools.cloneKey(kdKey), value)
	})
	if created {
		n.count++
		return nil, false
	}

	if e.IsNode() {
		s := e.Node
		if s.infixLen == 0 {
			return s.insert(t, kdKey, value)
		}
		mcb := conflictingBits(kdKey, e.KDKey, infixMask(s.postLen))
		if mcb == 0 {
			return s.insert(t, kdKey, value)
		}
		n.splitEntry(t, e, kdKey, value, mcb)
		return nil, false
	}

	// Terminal entry at this hcPos. If the full keys agree, this is a
	// replacement; spec.md's "postLen == 0 implies identical keys"
	// shortcut is subsumed here rather than special-cased, since
	// keysEqual already detects it in one pass and conflictingBits
	// below correctly yields 0 in exactly that case too.
	if keysEqual(e.KDKey, kdKey) {
		prior = e.Value
		e.Value = value
		return prior, true
	}
	mcb := conflictingBits(kdKey, e.KDKey, AllBits)
	n.splitEntry(t, e, kdKey, value, mcb)
	return nil, false
}

// splitEntry implements spec.md §4.4's split: e currently holds either
// a terminal value or a subnode under kdKey's hcPos at this node. A new
// intermediate Node is created at bit mcb-1 holding both the entry's
// old child and the new (kdKey, value) pair; e is mutated in place to
// point at the new node, keeping its own KDKey as the infix carrier.
func (n *Node) splitEntry(t *Tree, e *Entry, newKey Key, newValue interface{}, mcb int) {
	newPostLen := mcb - 1
	newInfixLen := n.postLen - mcb
	sub := newNode(t, newPostLen, newInfixLen)

	// carried gets its own cloned KDKey rather than reusing e.KDKey's
	// backing array: e keeps that array as its own infix carrier for as
	// long as it points at sub, and pooling requires each Entry to own
	// the Key it can later recycle through offerEntry without risking
	// freeing memory another live Entry still reads.
	oldHC := hc(e.KDKey, newPostLen)
	if e.IsNode() {
		child := e.Node
		child.infixLen = newPostLen - child.postLen - 1
		carried := newNodeEntry(t.pools, oldHC, t.pools.cloneKey(e.KDKey), child)
		sub.idx.getOrCreate(oldHC, func() *Entry { return carried })
	} else {
		carried := newValueEntry(t.pools, oldHC, t.pools.cloneKey(e.KDKey), e.Value)
		sub.idx.getOrCreate(oldHC, func() *Entry { return carried })
	}
	sub.count++

	newHC := hc(newKey, newPostLen)
	sub.idx.getOrCreate(newHC, func() *Entry {
		return newValueEntry(t.pools, newHC, t.pools.cloneKey(newKey), newValue)
	})
	sub.count++

	e.Node = sub
	e.Value = nil
	t.stats.InnerNodes++
}

// mergeChild folds a child node that has dropped to a single entry
// into the parent entry that points at it, per spec.md §4.4: the
// survivor replaces the parent entry wholesale, and if the survivor is
// itself a subnode its infixLen absorbs the merged node's postLen bit
// and infixLen.
func (n *Node) mergeChild(t *Tree, parentEntry *Entry, child *Node) {
	survivor, ok := child.idx.firstValue()
	invariant(ok, "merge: empty child node")

	parentEntry.KDKey = survivor.KDKey
	if survivor.IsNode() {
		sub := survivor.Node
		sub.infixLen += 1 + child.infixLen
		parentEntry.Node = sub
		parentEntry.Value = nil
	} else {
		parentEntry.Node = nil
		parentEntry.Value = survivor.Value
	}

	// survivor's KDKey ownership just transferred to parentEntry above;
	// clear it here first so offerEntry doesn't recycle the Key out from
	// under its new owner.
	survivor.KDKey = nil
	survivor.Node = nil
	survivor.Value = nil
	t.pools.offerEntry(survivor)

	t.pools.offerNode(child)
	t.stats.InnerNodes--
}

// removeIf implements spec.md §4.3's remove(kdKey, predicate) for the
// two simple predicates Tree exposes directly (unconditional remove,
// and remove-if-value-equals): match reports whether the current value
// should be deleted. A key mismatch or a rejected value leaves the
// entry in place and reports (nil, false); there is no three-way
// REMOVE_OP result. See compute for the ComputeFunc-driven path used by
// Compute/ComputeIfPresent.
func (n *Node) removeIf(t *Tree, kdKey Key, match func(interface{}) bool) (removed interface{}, ok bool) {
	hcPos := hc(kdKey, n.postLen)
	e, found := n.idx.get(hcPos)
	if !found {
		return nil, false
	}

	if e.IsNode() {
		s := e.Node
		if !n.childInfixMatches(e, s, kdKey) {
			return nil, false
		}
		val, didRemove := s.removeIf(t, kdKey, match)
		if didRemove {
			invariant(s.count >= 1, "node count underflow after remove")
			if s.count == 1 {
				n.mergeChild(t, e, s)
			}
		}
		return val, didRemove
	}

	if !keysEqual(e.KDKey, kdKey) {
		return nil, false
	}
	if !match(e.Value) {
		return nil, false
	}

	old := e.Value
	n.idx.remove(hcPos)
	n.count--
	t.pools.offerEntry(e)
	return old, true
}

// ComputeFunc is the mapping function driving Node.compute: given the
// key and its current value (current/found valid only when found is
// true), it returns the value to store and whether the entry should
// instead be deleted. Returning remove == true when found == false is
// a no-op.
type ComputeFunc func(key Key, current interface{}, found bool) (newValue interface{}, remove bool)

// compute implements spec.md §4.3's compute(kdKey, mappingFn): a
// unified insert/update/remove driven by fn, under the same split/
// merge policy as insert/removeIf.
func (n *Node) compute(t *Tree, kdKey Key, fn ComputeFunc) (old interface{}, hadOld bool) {
	hcPos := hc(kdKey, n.postLen)
	e, found := n.idx.get(hcPos)

	if !found {
		newVal, remove := fn(kdKey, nil, false)
		if remove {
			return nil, false
		}
		n.idx.getOrCreate(hcPos, func() *Entry {
			return newValueEntry(t.pools, hcPos, t.pools.cloneKey(kdKey), newVal)
		})
		n.count++
		return nil, false
	}

	if e.IsNode() {
		s := e.Node
		if !n.childInfixMatches(e, s, kdKey) {
			newVal, remove := fn(kdKey, nil, false)
			if remove {
				return nil, false
			}
			mcb := conflictingBits(kdKey, e.KDKey, infixMask(s.postLen))
			n.splitEntry(t, e, kdKey, newVal, mcb)
			return nil, false
		}
		old, hadOld = s.compute(t, kdKey, fn)
		if s.count == 1 {
			n.mergeChild(t, e, s)
		}
		return old, hadOld
	}

	if !keysEqual(e.KDKey, kdKey) {
		newVal, remove := fn(kdKey, nil, false)
		if remove {
			return nil, false
		}
		mcb := conflictingBits(kdKey, e.KDKey, AllBits)
		n.splitEntry(t, e, kdKey, newVal, mcb)
		return nil, false
	}

	newVal, remove := fn(kdKey, e.Value, true)
	old, hadOld = e.Value, true
	if remove {
		n.idx.remove(hcPos)
		n.count--
		t.pools.offerEntry(e)
		return old, true
	}
	e.Value = newVal
	return old, true
}

// findOwner descends to the Node and Entry that directly holds a
// terminal entry for kdKey, used by Tree.Update's in-place key rewrite
// fast path (see SUPPLEMENTED FEATURES #2 in SPEC_FULL.md).
func (n *Node) findOwner(kdKey Key) (owner *Node, entry *Entry, found bool) {
	hcPos := hc(kdKey, n.postLen)
	e, ok := n.idx.get(hcPos)
	if !ok {
		return nil, nil, false
	}
	if e.IsNode() {
		if !n.childInfixMatches(e, e.Node, kdKey) {
			return nil, nil, false
		}
		return e.Node.findOwner(kdKey)
	}
	if !keysEqual(e.KDKey, kdKey) {
		return nil, nil, false
	}
	return n, e, true
}
