//go:build !thindebug

package thinning

const debugChecks = false
