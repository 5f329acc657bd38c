package phtree

// Key is a k-dimensional point. Every Key handled by one Tree has the
// same length; signed integers and IEEE-754 doubles are expected to
// already be mapped to this monotone unsigned encoding by the caller's
// Preprocessor (see external.go) before reaching the tree.
type Key []uint64

// Clone returns an independent copy of k, allocated outside any Tree's
// pools. Used where a key must outlive the Tree that produced it, such
// as a NearestNeighbor Result (window and range query Results carry the
// entry's own KDKey, not a clone) -- internal callers that keep a
// clone scoped to one Entry's lifetime use pools.cloneKey instead.
func (k Key) Clone() Key {
	nk := make(Key, len(k))
	copy(nk, k)
	return nk
}

// Entry is the fixed-shape record a node's secondary index maps hcPos
// to. Exactly one of Node and Value is meaningful at a time: an Entry
// whose Node field is non-nil represents a subtree rooted at KDKey: a
// terminal entry carries a Value instead. This is the tagged-variant
// child discriminator spec.md §9 asks for, implemented as two mutually
// exclusive fields rather than an interface{} child plus type switch,
// since the set of variants is fixed at two and never grows.
type Entry struct {
	HCPos int
	KDKey Key

	Node  *Node
	Value interface{}
}

// IsNode reports whether this entry's child is a subnode rather than a
// terminal value.
func (e *Entry) IsNode() bool { return e.Node != nil }

func newValueEntry(p *pools, hcPos int, kdKey Key, value interface{}) *Entry {
	e := p.getEntry()
	e.HCPos = hcPos
	e.KDKey = kdKey
	e.Value = value
	return e
}

func newNodeEntry(p *pools, hcPos int, kdKey Key, node *Node) *Entry {
	e := p.getEntry()
	e.HCPos = hcPos
	e.KDKey = kdKey
	e.Node = node
	return e
}
