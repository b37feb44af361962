package leveldb

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/eigerco/levelbridge/pkg/native"
)

// Kind classifies failures reported by the engine.
type Kind int

const (
	KindOpen Kind = iota + 1
	KindIO
	KindEncoding
	KindCommit
)

var (
	ErrOpen     = errors.New("leveldb: open failed")
	ErrIO       = errors.New("leveldb: i/o failure")
	ErrEncoding = errors.New("leveldb: engine message is not valid UTF-8")
	ErrCommit   = errors.New("leveldb: batch commit failed")

	ErrClosed          = errors.New("leveldb: database is closed")
	ErrReleased        = errors.New("leveldb: already released")
	ErrForeignSnapshot = errors.New("leveldb: snapshot belongs to another database")
	ErrForeignBatch    = errors.New("leveldb: batch belongs to another engine")
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindIO:
		return "io"
	case KindEncoding:
		return "encoding"
	case KindCommit:
		return "commit"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindOpen:
		return ErrOpen
	case KindIO:
		return ErrIO
	case KindEncoding:
		return ErrEncoding
	case KindCommit:
		return ErrCommit
	}
	return nil
}

// Error carries a diagnostic produced by the engine. errors.Is matches it
// against the sentinel of its Kind.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Raw is the original message when it was not valid UTF-8.
	Raw []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("leveldb: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// translate converts an error slot filled by the engine. The engine buffer is
// copied and released through lib.Free before returning.
func translate(lib *native.Lib, errptr *byte, kind Kind, op string) error {
	if errptr == nil {
		return nil
	}
	raw := native.GoBytes(errptr)
	lib.Free(errptr)

	if !utf8.Valid(raw) {
		return &Error{
			Kind:    KindEncoding,
			Op:      op,
			Message: strings.ToValidUTF8(string(raw), "�"),
			Raw:     raw,
		}
	}
	return &Error{Kind: kind, Op: op, Message: string(raw)}
}
