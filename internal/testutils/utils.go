package testutils

import (
	"bytes"
	"crypto/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func RandomBytes(t *testing.T, n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// RandomKeys returns n distinct keys of up to maxLen bytes in bytewise order.
// Keys may be empty.
func RandomKeys(t *testing.T, n, maxLen int) [][]byte {
	seen := make(map[string]bool, n)
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		size := RandomBytes(t, 1)[0] % byte(maxLen+1)
		k := RandomBytes(t, int(size))
		if seen[string(k)] {
			continue
		}
		seen[string(k)] = true
		keys = append(keys, k)
	}
	slices.SortFunc(keys, bytes.Compare)
	return keys
}
