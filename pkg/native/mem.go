package native

import "unsafe"

// placeholder is handed out for empty spans; engines require non-null pointers.
var placeholder [1]byte

// Ptr returns a pointer to the first element of a byte slice.
// For empty slices, returns a dummy non-null pointer.
func Ptr(b []byte) *byte {
	if len(b) == 0 {
		return &placeholder[0]
	}
	return &b[0]
}

// View returns the n bytes starting at p without copying. The result aliases
// engine memory and must not be used after the engine invalidates it.
func View(p *byte, n uintptr) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

// Copy returns a Go-owned copy of the n bytes starting at p. The result is
// never nil, so an empty value can be told apart from a missing one.
func Copy(p *byte, n uintptr) []byte {
	out := make([]byte, n)
	copy(out, View(p, n))
	return out
}

// GoBytes copies a NUL-terminated engine string.
func GoBytes(p *byte) []byte {
	if p == nil {
		return nil
	}
	var n uintptr
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return Copy(p, n)
}

// GoString copies a NUL-terminated engine string into a Go string.
func GoString(p *byte) string {
	return string(GoBytes(p))
}

// CString returns s as a NUL-terminated byte slice suitable for handing to an
// engine. The caller keeps the slice reachable for as long as the engine may
// read it.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
