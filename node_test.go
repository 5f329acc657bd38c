package phtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeInsertGetOnEmptyRoot(t *testing.T) {
	tr := NewTree(2)
	root := tr.root

	_, existed := root.insert(tr, Key{1, 1}, "a")
	require.False(t, existed)
	require.Equal(t, 1, root.count)

	v, ok := root.get(Key{1, 1})
	require.True(t, ok)
	require.Equal(t, "a", v)

	_, ok = root.get(Key{2, 2})
	require.False(t, ok)
}

func TestNodeInsertReplacesSameKey(t *testing.T) {
	tr := NewTree(2)
	root := tr.root

	root.insert(tr, Key{1, 1}, "a")
	prior, existed := root.insert(tr, Key{1, 1}, "b")
	require.True(t, existed)
	require.Equal(t, "a", prior)
	require.Equal(t, 1, root.count)

	v, _ := root.get(Key{1, 1})
	require.Equal(t, "b", v)
}

func TestNodeSplitEntryOnConflict(t *testing.T) {
	tr := NewTree(2)
	root := tr.root

	root.insert(tr, Key{3, 3}, "x")
	root.insert(tr, Key{3, 4}, "y")

	require.Equal(t, 1, root.count, "the two keys share an hcPos at the root and collapse into one subnode entry")

	vx, ok := root.get(Key{3, 3})
	require.True(t, ok)
	require.Equal(t, "x", vx)
	vy, ok := root.get(Key{3, 4})
	require.True(t, ok)
	require.Equal(t, "y", vy)
}

func TestNodeRemoveIfUnconditional(t *testing.T) {
	tr := NewTree(2)
	root := tr.root
	root.insert(tr, Key{5, 5}, "v")

	removed, ok := root.removeIf(tr, Key{5, 5}, func(interface{}) bool { return true })
	require.True(t, ok)
	require.Equal(t, "v", removed)
	require.Equal(t, 0, root.count)

	_, ok = root.get(Key{5, 5})
	require.False(t, ok)
}

func TestNodeRemoveIfPredicateRejectsWrongValue(t *testing.T) {
	tr := NewTree(2)
	root := tr.root
	root.insert(tr, Key{5, 5}, "v")

	_, ok := root.removeIf(tr, Key{5, 5}, func(cur interface{}) bool { return cur == "not-v" })
	require.False(t, ok)

	v, ok := root.get(Key{5, 5})
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestNodeMergeChildCollapsesSingleEntrySubnode(t *testing.T) {
	tr := NewTree(2)
	root := tr.root

	root.insert(tr, Key{3, 3}, "x")
	root.insert(tr, Key{3, 4}, "y")
	innerBefore := tr.stats.InnerNodes
	require.Greater(t, innerBefore, 0)

	root.removeIf(tr, Key{3, 3}, func(interface{}) bool { return true })

	v, ok := root.get(Key{3, 4})
	require.True(t, ok)
	require.Equal(t, "y", v)
	require.Equal(t, innerBefore-1, tr.stats.InnerNodes, "merging the surviving single entry back into the parent should retire the inner node")
}

func TestNodeComputeInsertsUpdatesAndRemoves(t *testing.T) {
	tr := NewTree(2)
	root := tr.root

	old, hadOld := root.compute(tr, Key{1, 1}, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		require.False(t, found)
		return "a", false
	})
	require.False(t, hadOld)
	require.Nil(t, old)

	old, hadOld = root.compute(tr, Key{1, 1}, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		require.True(t, found)
		require.Equal(t, "a", cur)
		return "b", false
	})
	require.True(t, hadOld)
	require.Equal(t, "a", old)

	v, _ := root.get(Key{1, 1})
	require.Equal(t, "b", v)

	old, hadOld = root.compute(tr, Key{1, 1}, func(_ Key, cur interface{}, found bool) (interface{}, bool) {
		require.True(t, found)
		return nil, true
	})
	require.True(t, hadOld)
	require.Equal(t, "b", old)

	_, ok := root.get(Key{1, 1})
	require.False(t, ok)
}

func TestNodeFindOwnerLocatesTerminalEntry(t *testing.T) {
	tr := NewTree(2)
	root := tr.root
	root.insert(tr, Key{3, 3}, "x")
	root.insert(tr, Key{3, 4}, "y")

	owner, entry, found := root.findOwner(Key{3, 4})
	require.True(t, found)
	require.NotNil(t, owner)
	require.Equal(t, "y", entry.Value)

	_, _, found = root.findOwner(Key{9, 9})
	require.False(t, found)
}

func TestChildInfixMatchesRejectsDivergentKey(t *testing.T) {
	tr := NewTree(2)
	root := tr.root
	root.insert(tr, Key{3, 3}, "x")
	root.insert(tr, Key{3, 4}, "y")

	hcPos := hc(Key{3, 3}, root.postLen)
	e, ok := root.idx.get(hcPos)
	require.True(t, ok)
	require.True(t, e.IsNode())

	require.True(t, root.childInfixMatches(e, e.Node, Key{3, 3}))
	require.False(t, root.childInfixMatches(e, e.Node, Key{3, 200}))
}
