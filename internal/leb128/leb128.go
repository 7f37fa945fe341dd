// Package leb128 provides signed (SLEB128) and unsigned (ULEB128)
// variable-length integer encoding for 32- and 64-bit values.
//
// Each output byte holds 7 payload bits; the high bit is the continuation
// flag. Encoding and decoding follow the standard LLVM/DWARF LEB128
// definitions.
//
// Reference: adapted from the varint routines in this module's ancestor
// key/value store (util/coding.h-style EncodeVarint32/64, zig-zag
// signed encoding), generalized to streaming sources and a strict
// width limit per value.
package leb128

import (
	"errors"
	"io"
)

// MaxUnsigned32Bytes is the maximum number of bytes a ULEB128-encoded
// 32-bit value can occupy.
const MaxUnsigned32Bytes = 5

// MaxUnsigned64Bytes is the maximum number of bytes a ULEB128-encoded
// 64-bit value can occupy.
const MaxUnsigned64Bytes = 10

var (
	// ErrIncomplete is returned when the byte source is exhausted before a
	// value finished decoding.
	ErrIncomplete = errors.New("leb128: incomplete value")

	// ErrOverlong is returned when a value's continuation bit is still set
	// after its width limit (5 bytes for 32-bit, 10 bytes for 64-bit).
	ErrOverlong = errors.New("leb128: value exceeds width limit")
)

// ByteSink is the minimal interface written to by the encode routines. It is
// satisfied by any type with a WriteByte method, such as iosink.Writer or
// *bytes.Buffer.
type ByteSink interface {
	WriteByte(c byte) error
}

// WriteUnsigned writes v to dst as ULEB128 and returns the number of bytes
// written.
func WriteUnsigned(dst ByteSink, v uint64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := dst.WriteByte(b); err != nil {
			return n, err
		}
		n++
		if v == 0 {
			return n, nil
		}
	}
}

// WriteSigned writes v to dst as SLEB128 and returns the number of bytes
// written.
func WriteSigned(dst ByteSink, v int64) (int, error) {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		if err := dst.WriteByte(b); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// AppendUnsigned appends the ULEB128 encoding of v to dst and returns the
// extended slice.
func AppendUnsigned(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendSigned appends the SLEB128 encoding of v to dst and returns the
// extended slice.
func AppendSigned(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// ByteCount returns the number of bytes WriteUnsigned would write for v.
func ByteCount(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// SignedByteCount returns the number of bytes WriteSigned would write for v.
func SignedByteCount(v int64) int {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		}
		n++
	}
	return n
}

// ReadUnsigned32 reads a ULEB128-encoded uint32 from src.
func ReadUnsigned32(src io.ByteReader) (uint32, error) {
	v, err := readUnsigned(src, MaxUnsigned32Bytes)
	return uint32(v), err
}

// ReadUnsigned64 reads a ULEB128-encoded uint64 from src.
func ReadUnsigned64(src io.ByteReader) (uint64, error) {
	return readUnsigned(src, MaxUnsigned64Bytes)
}

// ReadSigned32 reads an SLEB128-encoded int32 from src.
func ReadSigned32(src io.ByteReader) (int32, error) {
	v, err := readSigned(src, MaxUnsigned32Bytes)
	return int32(v), err
}

// ReadSigned64 reads an SLEB128-encoded int64 from src.
func ReadSigned64(src io.ByteReader) (int64, error) {
	return readSigned(src, MaxUnsigned64Bytes)
}

func readUnsigned(src io.ByteReader, maxBytes int) (uint64, error) {
	var result uint64

	var shift uint

	for i := 0; i < maxBytes; i++ {
		b, err := src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrIncomplete
			}

			return 0, err
		}

		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}

		shift += 7
	}

	return 0, ErrOverlong
}

func readSigned(src io.ByteReader, maxBytes int) (int64, error) {
	var result int64

	var shift uint

	var b byte

	var err error

	i := 0
	for {
		if i >= maxBytes {
			return 0, ErrOverlong
		}

		b, err = src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrIncomplete
			}

			return 0, err
		}

		result |= int64(b&0x7f) << shift
		shift += 7
		i++

		if b&0x80 == 0 {
			break
		}
	}

	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}

	return result, nil
}

// ReadUnsignedFromBuffer decodes a ULEB128 uint64 from a bounded byte slice
// instead of a stream, returning the value and the number of bytes
// consumed. Used by decoders operating over an in-memory span rather than
// a forward stream.
func ReadUnsignedFromBuffer(src []byte) (value uint64, bytesRead int, err error) {
	var shift uint

	for bytesRead < len(src) && bytesRead < MaxUnsigned64Bytes {
		b := src[bytesRead]
		bytesRead++
		value |= uint64(b&0x7f) << shift

		if b&0x80 == 0 {
			return value, bytesRead, nil
		}

		shift += 7
	}

	if bytesRead >= MaxUnsigned64Bytes {
		return 0, 0, ErrOverlong
	}

	return 0, 0, ErrIncomplete
}

// ReadSignedFromBuffer decodes an SLEB128 int64 from a bounded byte slice.
func ReadSignedFromBuffer(src []byte) (value int64, bytesRead int, err error) {
	var shift uint

	var b byte

	for {
		if bytesRead >= len(src) {
			return 0, 0, ErrIncomplete
		}

		if bytesRead >= MaxUnsigned64Bytes {
			return 0, 0, ErrOverlong
		}

		b = src[bytesRead]
		bytesRead++
		value |= int64(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			break
		}
	}

	if shift < 64 && b&0x40 != 0 {
		value |= -1 << shift
	}

	return value, bytesRead, nil
}

// I64ToZigzag converts a signed int64 to zigzag-encoded uint64 so small
// magnitude negative numbers stay compact under ULEB128. Not used by the
// core (SLEB128 already handles signed values directly) but kept for
// callers that need a ULEB128-only wire shape, mirroring the ancestor
// store's zig-zag helper.
func I64ToZigzag(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// ZigzagToI64 converts a zigzag-encoded uint64 back to a signed int64.
func ZigzagToI64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}
