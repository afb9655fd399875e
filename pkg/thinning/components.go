package thinning

import "math/bits"

// CountComponents returns the number of 26-connected components formed by the
// set bits of code once the centre is removed. The flood fill works on a
// bitset frontier, so it needs neither recursion nor allocation.
func CountComponents(code uint32) int {
	rest := code & blockMask &^ centerMask
	n := 0
	for rest != 0 {
		n++
		frontier := rest & -rest
		rest &^= frontier
		for frontier != 0 {
			k := bits.TrailingZeros32(frontier)
			frontier &^= 1 << k
			grown := adjacency[k] & rest
			rest &^= grown
			frontier |= grown
		}
	}
	return n
}
