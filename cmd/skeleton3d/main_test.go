package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDims(t *testing.T) {
	d, err := parseDims("64x32x16")
	require.NoError(t, err)
	assert.Equal(t, []int{64, 32, 16}, d)

	d, err = parseDims("8, 9, 10")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9, 10}, d)

	for _, bad := range []string{"", "4x4", "4x0x4", "axbxc", "1x2x3x4"} {
		_, err := parseDims(bad)
		assert.Error(t, err, bad)
	}
}
