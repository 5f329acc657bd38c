// Package phtree implements the PH-tree node engine: a recursive,
// bit-sliced trie over k-dimensional integer keys. Each node dispatches
// its children by a hypercube address (hcPos) derived from one bit of
// every dimension at the node's post length (postLen); the bits above
// postLen shared by every key reachable through a node are stored,
// un-duplicated, as the infix of the parent entry that points at it.
//
// Three secondary-index representations back a node's hcPos -> Entry
// mapping (leafIndex, arrayIndex, bptreeIndex), selected by dimension
// at Tree construction time. Splitting, merging, and the iterative
// query engines (window, masked, k-nearest-neighbor, range) all operate
// against the same secondaryIndex capability set, so a node never knows
// which representation backs it.
package phtree
