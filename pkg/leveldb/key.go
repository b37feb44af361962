package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrKeyDecode is returned when stored bytes cannot be decoded as a key.
var ErrKeyDecode = errors.New("leveldb: malformed key")

// KeyCodec converts keys to the bytes handed to the engine and back.
// Encoding must be deterministic and injective, and Decode(Encode(k)) must
// equal k. The encoded slice is only used for the duration of a single call.
type KeyCodec[K any] interface {
	Encode(key K) []byte
	Decode(data []byte) (K, error)
}

// Built-in codecs. Integer codecs are big-endian with the sign bit flipped, so
// bytewise order equals numeric order.
var (
	BytesKey  KeyCodec[[]byte] = bytesCodec{}
	StringKey KeyCodec[string] = stringCodec{}
	Int32Key  KeyCodec[int32]  = int32Codec{}
	Int64Key  KeyCodec[int64]  = int64Codec{}
	Uint64Key KeyCodec[uint64] = uint64Codec{}
)

type bytesCodec struct{}

func (bytesCodec) Encode(key []byte) []byte {
	return key
}

func (bytesCodec) Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

type stringCodec struct{}

func (stringCodec) Encode(key string) []byte {
	return []byte(key)
}

func (stringCodec) Decode(data []byte) (string, error) {
	return string(data), nil
}

const signBit32 = 1 << 31

type int32Codec struct{}

func (int32Codec) Encode(key int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(key)^signBit32)
}

func (int32Codec) Decode(data []byte) (int32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: int32 key of %d bytes", ErrKeyDecode, len(data))
	}
	return int32(binary.BigEndian.Uint32(data) ^ signBit32), nil
}

const signBit64 = 1 << 63

type int64Codec struct{}

func (int64Codec) Encode(key int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(key)^signBit64)
}

func (int64Codec) Decode(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: int64 key of %d bytes", ErrKeyDecode, len(data))
	}
	return int64(binary.BigEndian.Uint64(data) ^ signBit64), nil
}

type uint64Codec struct{}

func (uint64Codec) Encode(key uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, key)
}

func (uint64Codec) Decode(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: uint64 key of %d bytes", ErrKeyDecode, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
