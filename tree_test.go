package phtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRemoveBasic(t *testing.T) {
	tr := NewTree(2)

	_, hadPrior := tr.Put(Key{0, 0}, "a")
	require.False(t, hadPrior)
	_, hadPrior = tr.Put(Key{1, 1}, "b")
	require.False(t, hadPrior)

	v, ok := tr.Get(Key{0, 0})
	require.True(t, ok)
	require.Equal(t, "a", v)

	results, err := tr.Query(Key{0, 0}, Key{1, 1}).CollectAll()
	require.NoError(t, err)
	require.Len(t, results, 2)

	removed, ok := tr.Remove(Key{0, 0})
	require.True(t, ok)
	require.Equal(t, "a", removed)
	require.Equal(t, 1, tr.Size())
}

func TestInsertTriggersSplitAndRemoveTriggersMerge(t *testing.T) {
	tr := NewTree(2)

	tr.Put(Key{3, 3}, "x")
	tr.Put(Key{3, 4}, "y")

	v, ok := tr.Get(Key{3, 4})
	require.True(t, ok)
	require.Equal(t, "y", v)

	require.Greater(t, tr.Stats().InnerNodes, 0, "expected a split to have created an inner node")

	tr.Remove(Key{3, 3})
	v, ok = tr.Get(Key{3, 4})
	require.True(t, ok)
	require.Equal(t, "y", v)
	require.Equal(t, 0, tr.Stats().InnerNodes, "expected the remove to have merged the inner node away")
}

func TestAllEightCornersOfACube(t *testing.T) {
	tr := NewTree(3)

	for b0 := uint64(0); b0 <= 1; b0++ {
		for b1 := uint64(0); b1 <= 1; b1++ {
			for b2 := uint64(0); b2 <= 1; b2++ {
				tr.Put(Key{b0, b1, b2}, nil)
			}
		}
	}
	require.Equal(t, 8, tr.Size())

	results, err := tr.Query(Key{0, 0, 0}, Key{1, 1, 1}).CollectAll()
	require.NoError(t, err)
	require.Len(t, results, 8)
}

func TestSizeTracksInsertsAndRemoves(t *testing.T) {
	tr := NewTree(2)
	for i := uint64(0); i < 50; i++ {
		tr.Put(Key{i, i * 2}, int(i))
	}
	require.Equal(t, 50, tr.Size())

	for i := uint64(0); i < 20; i++ {
		tr.Remove(Key{i, i * 2})
	}
	require.Equal(t, 30, tr.Size())
}

func TestPutReplacesExistingValue(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{5, 5}, "v1")
	prior, hadPrior := tr.Put(Key{5, 5}, "v2")
	require.True(t, hadPrior)
	require.Equal(t, "v1", prior)

	v, _ := tr.Get(Key{5, 5})
	require.Equal(t, "v2", v)
	require.Equal(t, 1, tr.Size())
}

func TestPutThenRemoveRoundTrip(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{9, 9}, "v")
	removed, ok := tr.Remove(Key{9, 9})
	require.True(t, ok)
	require.Equal(t, "v", removed)
	_, ok = tr.Get(Key{9, 9})
	require.False(t, ok)
}

func TestComputeInsertsThenRemoves(t *testing.T) {
	tr := NewTree(2)
	toggle := func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		if !found {
			return "x", false
		}
		return nil, true
	}

	tr.Compute(Key{7, 7}, toggle)
	v, ok := tr.Get(Key{7, 7})
	require.True(t, ok)
	require.Equal(t, "x", v)

	tr.Compute(Key{7, 7}, toggle)
	_, ok = tr.Get(Key{7, 7})
	require.False(t, ok)
}

func TestUpdateMovesKey(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{1, 1}, "v")

	oldVal, found := tr.Update(Key{1, 1}, Key{1, 2})
	require.True(t, found)
	require.Equal(t, "v", oldVal)

	_, ok := tr.Get(Key{1, 1})
	require.False(t, ok)
	v, ok := tr.Get(Key{1, 2})
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestUpdateWithDeepKeyDivergenceStillMoves(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{0, 0}, "v")
	tr.Put(Key{1 << 40, 1 << 40}, "w")

	_, found := tr.Update(Key{0, 0}, Key{1 << 62, 1 << 62})
	require.True(t, found)

	_, ok := tr.Get(Key{0, 0})
	require.False(t, ok)
	v, ok := tr.Get(Key{1 << 62, 1 << 62})
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestClearResetsTree(t *testing.T) {
	tr := NewTree(2)
	for i := uint64(0); i < 10; i++ {
		tr.Put(Key{i, i}, i)
	}
	tr.Clear()
	require.Equal(t, 0, tr.Size())
	_, ok := tr.Get(Key{0, 0})
	require.False(t, ok)

	tr.Put(Key{3, 3}, "after-clear")
	v, ok := tr.Get(Key{3, 3})
	require.True(t, ok)
	require.Equal(t, "after-clear", v)
}

func TestDimensionMismatchPanics(t *testing.T) {
	tr := NewTree(3)
	require.Panics(t, func() { tr.Get(Key{1, 2}) })
}

func TestIteratorVisitsEachEntryExactlyOnce(t *testing.T) {
	tr := NewTree(2)
	want := map[uint64]bool{}
	for i := uint64(0); i < 40; i++ {
		tr.Put(Key{i, i * 3}, nil)
		want[i] = true
	}

	it := tr.Iterator()
	seen := map[uint64]int{}
	for {
		ok, err := it.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		k, _, err := it.Next()
		require.NoError(t, err)
		seen[k[0]]++
	}
	require.Len(t, seen, 40)
	for k, count := range seen {
		require.Equal(t, 1, count, "key %d visited more than once", k)
	}
}

func TestIteratorDetectsConcurrentModification(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{1, 1}, "a")
	tr.Put(Key{2, 2}, "b")

	it := tr.Iterator()
	tr.Put(Key{3, 3}, "c")

	_, err := it.HasNext()
	require.ErrorIs(t, err, ErrConcurrentModification)
}

func TestWindowQueryExactBounds(t *testing.T) {
	tr := NewTree(2)
	tr.Put(Key{0, 0}, "in")
	tr.Put(Key{5, 5}, "in")
	tr.Put(Key{10, 10}, "out")
	tr.Put(Key{5, 11}, "out")

	results, err := tr.Query(Key{0, 0}, Key{5, 5}).CollectAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, "in", r.Value)
	}
}
