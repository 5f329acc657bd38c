package phtree

// Preprocessor is the external collaborator (spec.md §6) that maps
// floating-point or signed-integer coordinates into this engine's
// monotone unsigned Key encoding and back. No concrete implementation
// ships with this repository: the float facade is an explicit
// non-goal (spec.md §1), so callers that need one supply their own.
type Preprocessor interface {
	// Pre maps floats into keyOut, a Key of the same length.
	Pre(floats []float64, keyOut Key)
	// Post is the exact inverse of Pre.
	Post(key Key, floatsOut []float64)
}

// DistanceFunc is the external collaborator driving NearestNeighbor
// and RangeQuery (spec.md §6): Dist is the exact distance between two
// keys, and MinDistToRegion is a lower bound on the distance from
// center to any key inside the hypercube region whose coordinates
// match regionKey above bit postLen and span [0, 2^(postLen+1)) below.
type DistanceFunc interface {
	Dist(a, b Key) float64
	MinDistToRegion(center, regionKey Key, postLen int) float64
}

// Filter is an optional predicate over kdKey supplied to a query to
// exclude entries without a full distance or window test.
type Filter func(kdKey Key) bool
