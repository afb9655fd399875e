//go:build thindebug

package thinning

// debugChecks enables contract assertions in the inner loops.
const debugChecks = true
