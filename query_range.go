package phtree

// RangeQuery returns every entry within radius of center under dist,
// implementing spec.md §4.6's range query as a window query over the
// axis-aligned bounding box of the ball, post-filtered by exact
// distance. The bounding box is derived by treating each dimension's
// uint64 value as a plain integer coordinate (the monotone encoding
// every Key is expected to already carry; see external.go's
// Preprocessor contract) -- this is exact for any metric whose
// per-axis projection is monotone in that encoding, which includes the
// Euclidean metric this repo's own tests exercise. See external.go for
// the Preprocessor contract that is expected to have produced that
// encoding before a key ever reaches the tree.
func (t *Tree) RangeQuery(center Key, radius float64, dist DistanceFunc) []Result {
	t.checkKey(center)
	if radius < 0 {
		return nil
	}

	min := make(Key, t.dim)
	max := make(Key, t.dim)
	for d := 0; d < t.dim; d++ {
		lo := float64(center[d]) - radius
		hi := float64(center[d]) + radius
		if lo <= 0 {
			min[d] = 0
		} else {
			min[d] = uint64(lo)
		}
		if hi >= maxUint64Float {
			max[d] = AllBits
		} else {
			max[d] = uint64(hi)
		}
	}

	wi := t.Query(min, max)
	var out []Result
	for {
		ok, err := wi.HasNext()
		if err != nil || !ok {
			break
		}
		k, v, err := wi.Next()
		if err != nil {
			break
		}
		d := dist.Dist(center, k)
		if d <= radius {
			out = append(out, Result{Key: k, Value: v, Dist: d})
		}
	}
	return out
}

const maxUint64Float = 1.8446744073709552e19
