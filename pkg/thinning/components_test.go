package thinning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountComponents(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want int
	}{
		{"empty", 0, 0},
		{"centre only", centerMask, 0},
		{"full block", blockMask, 1},
		{"single neighbour", codeOf([3]int{1, 0, 0}), 1},
		{"opposite corners", codeOf([3]int{-1, -1, -1}, [3]int{1, 1, 1}), 2},
		{"adjacent corners", codeOf([3]int{-1, -1, -1}, [3]int{0, -1, -1}), 1},
		{"four bottom corners", codeOf([3]int{-1, -1, -1}, [3]int{1, -1, -1}, [3]int{-1, 1, -1}, [3]int{1, 1, -1}), 4},
		{"ring in plane", slabCode(func(_, _, dz int) bool { return dz == 0 }), 1},
		{"two slabs", slabCode(func(_, _, dz int) bool { return dz != 0 }), 2},
		{"six faces", codeOf(
			[3]int{1, 0, 0}, [3]int{-1, 0, 0},
			[3]int{0, 1, 0}, [3]int{0, -1, 0},
			[3]int{0, 0, 1}, [3]int{0, 0, -1},
		), 1},
		{"opposite faces", codeOf([3]int{1, 0, 0}, [3]int{-1, 0, 0}), 2},
		{"faces sharing an edge", codeOf([3]int{1, 0, 0}, [3]int{0, 1, 0}), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountComponents(tt.code))
			// the centre bit never matters
			assert.Equal(t, tt.want, CountComponents(tt.code&^centerMask))
		})
	}
}
