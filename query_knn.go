package phtree

import "container/heap"

// frontierItem is one entry in the k-NN node frontier: a subnode not
// yet expanded, together with the lower bound on distance from the
// query center to any key it could contain.
type frontierItem struct {
	bound float64
	node  *Node
}

// frontierHeap is the min-heap of frontierItem ordered by bound,
// spec.md §4.6's "node frontier (min-heap of (lowerBoundDistance,
// Node, entryCursor))" -- the entryCursor is not needed here because
// each frontierItem's node is expanded in full, in one step, rather
// than resumed entry-by-entry.
type frontierHeap []frontierItem

func (h frontierHeap) Len() int            { return len(h) }
func (h frontierHeap) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h frontierHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x interface{}) { *h = append(*h, x.(frontierItem)) }
func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// bestItem is one candidate in the best-so-far set: a max-heap keyed
// by distance so the worst of the current top-k sits at the root and
// can be evicted in O(log k).
type bestItem struct {
	key   Key
	value interface{}
	dist  float64
}

type bestHeap []bestItem

func (h bestHeap) Len() int            { return len(h) }
func (h bestHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h bestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *bestHeap) Push(x interface{}) { *h = append(*h, x.(bestItem)) }
func (h *bestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NearestNeighbor returns the k entries closest to center under dist,
// implementing spec.md §4.6's k-NN query with a container/heap-backed
// best-so-far set and node frontier (see SPEC_FULL.md's DOMAIN STACK
// section for why container/heap, not a third-party priority queue, is
// the grounded choice here). Ties at the k-th distance are all
// included, so the result may hold more than k entries (spec.md §4.6,
// §8 property 7).
func (t *Tree) NearestNeighbor(k int, center Key, dist DistanceFunc) []Result {
	t.checkKey(center)
	if k <= 0 {
		return nil
	}

	frontier := &frontierHeap{{bound: 0, node: t.root}}
	heap.Init(frontier)
	best := &bestHeap{}
	heap.Init(best)

	for frontier.Len() > 0 {
		if best.Len() >= k && (*frontier)[0].bound > (*best)[0].dist {
			break
		}

		top := heap.Pop(frontier).(frontierItem)
		top.node.idx.forEach(func(e *Entry) bool {
			if e.IsNode() {
				bound := dist.MinDistToRegion(center, e.KDKey, e.Node.postLen)
				if best.Len() < k || bound <= (*best)[0].dist {
					heap.Push(frontier, frontierItem{bound: bound, node: e.Node})
				}
				return true
			}

			d := dist.Dist(center, e.KDKey)
			switch {
			case best.Len() < k:
				heap.Push(best, bestItem{key: e.KDKey.Clone(), value: e.Value, dist: d})
			case d < (*best)[0].dist:
				heap.Push(best, bestItem{key: e.KDKey.Clone(), value: e.Value, dist: d})
				// Drop the whole group at the worst distance only if the
				// closer entries alone still number at least k.
				worst, n := (*best)[0].dist, 0
				for _, b := range *best {
					if b.dist == worst {
						n++
					}
				}
				if best.Len()-n >= k {
					for ; n > 0; n-- {
						heap.Pop(best)
					}
				}
			case d == (*best)[0].dist:
				heap.Push(best, bestItem{key: e.KDKey.Clone(), value: e.Value, dist: d})
			}
			return true
		})
	}

	n := best.Len()
	out := make([]Result, n)
	for i := n - 1; i >= 0; i-- {
		item := heap.Pop(best).(bestItem)
		out[i] = Result{Key: item.key, Value: item.value, Dist: item.dist}
	}
	return out
}
