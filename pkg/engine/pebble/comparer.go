package pebble

import (
	"github.com/cockroachdb/pebble"

	"github.com/eigerco/levelbridge/pkg/native/host"
)

// comparer maps a registered order onto pebble. Keys are never split or
// shortened, so only Compare decides placement. ImmediateSuccessor assumes a
// key sorts before its extensions.
func comparer(c host.Comparer) *pebble.Comparer {
	if c == nil {
		return pebble.DefaultComparer
	}
	out := *pebble.DefaultComparer
	out.Compare = c.Compare
	out.Equal = func(a, b []byte) bool { return c.Compare(a, b) == 0 }
	out.AbbreviatedKey = func([]byte) uint64 { return 0 }
	out.Separator = func(dst, a, _ []byte) []byte { return append(dst, a...) }
	out.Successor = func(dst, a []byte) []byte { return append(dst, a...) }
	out.ImmediateSuccessor = func(dst, a []byte) []byte { return append(append(dst, a...), 0x00) }
	out.Split = func(a []byte) int { return len(a) }
	out.Name = c.Name()
	return &out
}
