package phtree

import "github.com/pkg/errors"

// Stats holds the per-Tree counters spec.md §9 asks to be de-globalized
// from the original source's process-wide statNLeaves/statNInner (see
// SUPPLEMENTED FEATURES #5 in SPEC_FULL.md).
type Stats struct {
	InnerNodes int
}

// Tree owns the root Node, dimensionality, entry count, and the
// per-tree pools; it is a thin dispatcher over the root exactly as
// spec.md §4.5 describes, the same role the teacher's Hamt struct plays
// over its own root table.
type Tree struct {
	dim      int
	size     int
	root     *Node
	pools    *pools
	modCount uint64
	stats    Stats
}

// NewTree creates an empty Tree over dim-dimensional keys.
func NewTree(dim int) *Tree {
	if dim <= 0 {
		panic(errors.Wrapf(ErrInvariantViolation, "dimension must be positive, got %d", dim))
	}
	t := &Tree{dim: dim, pools: newPools()}
	t.root = newNode(t, MaxBitPos, 0)
	return t
}

// Dim returns the tree's configured key dimension.
func (t *Tree) Dim() int { return t.dim }

// Size returns the number of terminal entries reachable from the root.
func (t *Tree) Size() int { return t.size }

// Stats returns a snapshot of the tree's structural counters.
func (t *Tree) Stats() Stats { return t.stats }

func (t *Tree) checkKey(k Key) {
	checkDim(len(k), t.dim)
}

// Get returns the value stored at key, if any.
func (t *Tree) Get(key Key) (interface{}, bool) {
	t.checkKey(key)
	return t.root.get(key)
}

// Contains reports whether key is present in the tree.
func (t *Tree) Contains(key Key) bool {
	_, ok := t.Get(key)
	return ok
}

// Put inserts or replaces key's value, returning the prior value if
// key was already present.
func (t *Tree) Put(key Key, value interface{}) (prior interface{}, hadPrior bool) {
	t.checkKey(key)
	prior, hadPrior = t.root.insert(t, key, value)
	if !hadPrior {
		t.size++
	}
	t.modCount++
	return prior, hadPrior
}

// PutIfAbsent inserts value at key only if key is absent, returning the
// existing value (and true) if it was already present.
func (t *Tree) PutIfAbsent(key Key, value interface{}) (prior interface{}, hadPrior bool) {
	t.checkKey(key)
	old, hadOld := t.root.compute(t, key, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		if found {
			return cur, false
		}
		return value, false
	})
	if !hadOld {
		t.size++
		t.modCount++
	}
	return old, hadOld
}

// Remove deletes key unconditionally, returning its prior value.
func (t *Tree) Remove(key Key) (value interface{}, removed bool) {
	t.checkKey(key)
	value, removed = t.root.removeIf(t, key, func(interface{}) bool { return true })
	if removed {
		t.size--
		t.modCount++
	}
	return value, removed
}

// RemoveValue deletes key only if its current value equals value
// (compared with ==, matching the teacher's key/value equality
// conventions), reporting whether the removal happened.
func (t *Tree) RemoveValue(key Key, value interface{}) bool {
	t.checkKey(key)
	_, removed := t.root.removeIf(t, key, func(cur interface{}) bool { return cur == value })
	if removed {
		t.size--
		t.modCount++
	}
	return removed
}

// Replace sets key's value only if key is already present, returning
// the prior value.
func (t *Tree) Replace(key Key, value interface{}) (prior interface{}, hadPrior bool) {
	t.checkKey(key)
	old, hadOld := t.root.compute(t, key, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		if !found {
			return nil, true // remove == true but found == false is a documented no-op
		}
		return value, false
	})
	if hadOld {
		t.modCount++
	}
	return old, hadOld
}

// ReplaceValue sets key's value to newValue only if key is present and
// its current value equals oldValue.
func (t *Tree) ReplaceValue(key Key, oldValue, newValue interface{}) bool {
	t.checkKey(key)
	var didReplace bool
	t.root.compute(t, key, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		if !found || cur != oldValue {
			return nil, true
		}
		didReplace = true
		return newValue, false
	})
	if didReplace {
		t.modCount++
	}
	return didReplace
}

// Compute applies fn to key's current value (or nil if absent),
// inserting, updating, or removing the entry according to fn's result.
func (t *Tree) Compute(key Key, fn ComputeFunc) (old interface{}, hadOld bool) {
	t.checkKey(key)
	sizeBefore := t.size
	old, hadOld = t.root.compute(t, key, fn)
	t.applyComputeSizeDelta(key, hadOld, sizeBefore, fn)
	return old, hadOld
}

// applyComputeSizeDelta keeps Tree.size correct without threading it
// through every Node.compute frame: a second, side-effect-free probe
// tells us whether the key is present after the call.
func (t *Tree) applyComputeSizeDelta(key Key, hadOldBefore bool, sizeBefore int, _ ComputeFunc) {
	_, presentAfter := t.root.get(key)
	switch {
	case !hadOldBefore && presentAfter:
		t.size = sizeBefore + 1
	case hadOldBefore && !presentAfter:
		t.size = sizeBefore - 1
	default:
		t.size = sizeBefore
	}
	t.modCount++
}

// ComputeIfAbsent inserts fn(key)'s result only if key is absent.
func (t *Tree) ComputeIfAbsent(key Key, fn func(Key) interface{}) (interface{}, bool) {
	return t.Compute(key, func(k Key, cur interface{}, found bool) (interface{}, bool) {
		if found {
			return cur, false
		}
		return fn(k), false
	})
}

// ComputeIfPresent updates key's value via fn only if key is present;
// fn returning removed == true deletes the entry.
func (t *Tree) ComputeIfPresent(key Key, fn func(Key, interface{}) (newValue interface{}, remove bool)) (interface{}, bool) {
	return t.Compute(key, func(k Key, cur interface{}, found bool) (interface{}, bool) {
		if !found {
			return nil, true
		}
		return fn(k, cur)
	})
}

// Update moves the value stored at oldKey to newKey (spec.md §4.3). If
// the structural difference between oldKey and newKey lies entirely
// within the bits the owning node has not yet dispatched on, the kdKey
// is rewritten in place with no remove+insert (SUPPLEMENTED FEATURES #2
// in SPEC_FULL.md); otherwise this falls back to a full removal from
// oldKey's position followed by an insertion of newKey from the root.
func (t *Tree) Update(oldKey, newKey Key) (value interface{}, found bool) {
	t.checkKey(oldKey)
	t.checkKey(newKey)

	owner, entry, ok := t.root.findOwner(oldKey)
	if !ok {
		return nil, false
	}

	mask := maskAtOrAbove(owner.postLen)
	if conflictingBits(oldKey, newKey, mask) == 0 {
		old := entry.Value
		// The old entry.KDKey is not returned to pools.offerKey here; it
		// is left to the GC.
		entry.KDKey = t.pools.cloneKey(newKey)
		t.modCount++
		return old, true
	}

	old, _ := t.root.removeIf(t, oldKey, func(interface{}) bool { return true })
	t.size--
	_, existed := t.root.insert(t, newKey, old)
	if !existed {
		t.size++
	}
	t.modCount++
	return old, true
}

func maskAtOrAbove(postLen int) uint64 {
	if postLen <= 0 {
		return AllBits
	}
	return ^((uint64(1) << uint(postLen)) - 1)
}

// Clear empties the tree, returning every node and entry to the pool.
func (t *Tree) Clear() {
	t.drain(t.root)
	t.root = newNode(t, MaxBitPos, 0)
	t.size = 0
	t.stats = Stats{}
	t.modCount++
}

func (t *Tree) drain(n *Node) {
	n.idx.forEach(func(e *Entry) bool {
		if e.IsNode() {
			t.drain(e.Node)
		}
		t.pools.offerEntry(e)
		return true
	})
	t.pools.offerNode(n)
}
