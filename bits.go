package phtree

import "math/bits"

// MaxBitPos is the highest bit position a key can be split on; the root
// of every tree holds postLen == MaxBitPos.
const MaxBitPos = 63

// AllBits is the all-ones mask passed to conflictingBits when a
// terminal entry's kdKey is compared with no restriction (spec's
// "mask -1").
const AllBits = ^uint64(0)

// hc computes the hypercube address of key at the given bit position:
// one bit per dimension, dimension d contributing bit d of the result.
func hc(key Key, bitPos int) int {
	var pos int
	shift := uint(bitPos)
	for d := 0; d < len(key); d++ {
		pos |= int((key[d]>>shift)&1) << uint(d)
	}
	return pos
}

// conflictingBits returns the 1-based position of the most significant
// bit, among those set in mask, at which any dimension of a and b
// differ. It returns 0 if a and b agree on every masked bit.
func conflictingBits(a, b Key, mask uint64) int {
	var diff uint64
	for d := 0; d < len(a); d++ {
		diff |= a[d] ^ b[d]
	}
	diff &= mask
	if diff == 0 {
		return 0
	}
	return 64 - bits.LeadingZeros64(diff)
}

// infixMask returns the mask of bits strictly above postLen: the bits a
// subnode with this postLen treats as its own infix carrier window.
// postLen == 63 (the root) has no bits above it, so its mask is 0.
func infixMask(postLen int) uint64 {
	if postLen >= MaxBitPos {
		return 0
	}
	return ^((uint64(1) << uint(postLen+1)) - 1)
}

// infixWindowMask returns the mask of bits in (postLen, postLen+infixLen],
// the window of bits carried as a literal infix by the parent entry that
// points at a node with the given postLen/infixLen. The mask is empty
// when infixLen == 0. Window pruning does not use this mask: checkInfix
// compares every bit above postLen, not only the infix window.
func infixWindowMask(postLen, infixLen int) uint64 {
	if infixLen == 0 {
		return 0
	}
	hi := postLen + infixLen
	var upTo uint64
	if hi >= MaxBitPos {
		upTo = AllBits
	} else {
		upTo = (uint64(1) << uint(hi+1)) - 1
	}
	lo := (uint64(1) << uint(postLen+1)) - 1
	return upTo &^ lo
}

// checkInfix tests whether kdKey -- the literal full key stored in the
// parent entry that carries this node's infix -- could plausibly match
// the window [min, max] in every dimension, given that bits below
// postLen+1 are not yet determined for any individual descendant. Bits
// at or above postLen+1 are real, already-fixed bits (either this
// node's own infix or bits fixed by an ancestor), so they are taken
// from kdKey as-is; only the undetermined low bits are filled with the
// best case (all 0 for the low bound, all 1 for the high bound) before
// comparing against min/max. infixLen is accepted for documentation
// symmetry with spec.md's mask1100 description but does not change the
// comparison: everything above postLen+1 is equally fixed whether it
// came from this node's own infix or an ancestor's.
func checkInfix(postLen, infixLen int, kdKey, min, max Key) bool {
	var lowMask uint64
	if postLen < MaxBitPos {
		lowMask = (uint64(1) << uint(postLen+1)) - 1
	} else {
		lowMask = AllBits
	}
	for d := 0; d < len(kdKey); d++ {
		bestHigh := kdKey[d] | lowMask
		bestLow := kdKey[d] &^ lowMask
		if bestHigh < min[d] || bestLow > max[d] {
			return false
		}
	}
	return true
}

// hcMasked reports whether hcPos is accepted by a minMask/maxMask pair
// as used by masked iteration: (hcPos | minMask) & maxMask == hcPos.
func hcMasked(hcPos int, minMask, maxMask uint64) bool {
	h := uint64(hcPos)
	return (h|minMask)&maxMask == h
}

func popcount64(x uint64) int {
	return bits.OnesCount64(x)
}
