// Package arraycodec implements the array payload encodings: zero-based
// one-dimensional arrays (SZARRAY) and multidimensional/non-zero-based
// arrays (MDARRAY), for primitive element kinds.
//
// Inside an array, elements never carry their own payload tag — only the
// array's own tag is written once. In Size mode, integer and character
// element kinds instead get a bitmap prefix (one bit per element: set
// means that element used LEB128, clear means native) so a decoder still
// knows, element by element, how many bytes to consume without a tag byte
// per element.
//
// Reference: grounded on this module's ancestor store's length-prefixed
// slice convention (internal/encoding's AppendLengthPrefixedSlice /
// DecodeLengthPrefixedSlice — ULEB128 length then raw bytes), generalized
// to typed elements and the native/LEB128 per-element bitmap choice.
package arraycodec

import (
	"math"

	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/leb128"
	"github.com/aalhour/binarchive/internal/primitive"
	"github.com/aalhour/binarchive/internal/wireerr"
)

// Dim describes one dimension of an MDARRAY: its lower bound and length.
// A zero-based SZARRAY is the degenerate rank-1 case with Lower == 0.
type Dim struct {
	Lower  int64
	Length int64
}

// TotalElements returns the product of every dimension's length.
func TotalElements(dims []Dim) int64 {
	total := int64(1)
	for _, d := range dims {
		total *= d.Length
	}

	return total
}

// Signed is the set of signed integer kinds array elements can use.
type Signed interface{ ~int16 | ~int32 | ~int64 }

// Unsigned is the set of unsigned integer/char kinds array elements can use.
type Unsigned interface{ ~uint16 | ~uint32 | ~uint64 }

func bitmapLen(n int) int {
	return (n + 7) / 8
}

func bitmapSet(bitmap []byte, i int) {
	bitmap[i/8] |= 1 << uint(i%8)
}

func bitmapGet(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<uint(i%8)) != 0
}

// WriteSignedElements writes length, an optional LEB128-choice bitmap (Size
// mode only), then the elements themselves with no further tags.
func WriteSignedElements[T Signed](w iosink.Writer, values []T, width int, mode primitive.Mode) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	if mode == primitive.Size {
		bitmap := make([]byte, bitmapLen(len(values)))

		for i, v := range values {
			if leb128SignedLen(int64(v)) < width {
				bitmapSet(bitmap, i)
			}
		}

		if _, err := w.Write(bitmap); err != nil {
			return err
		}

		for i, v := range values {
			if bitmapGet(bitmap, i) {
				if _, err := leb128.WriteSigned(w, int64(v)); err != nil {
					return err
				}
			} else if err := writeNative(w, uint64(v), width); err != nil {
				return err
			}
		}

		return nil
	}

	for _, v := range values {
		if err := writeNative(w, uint64(v), width); err != nil {
			return err
		}
	}

	return nil
}

// ReadSignedElements reads the length, optional bitmap, and elements
// written by WriteSignedElements.
func ReadSignedElements[T Signed](r iosink.Reader, width int, mode primitive.Mode) ([]T, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	values := make([]T, n)

	if mode == primitive.Size {
		bitmap := make([]byte, bitmapLen(int(n)))
		if err := readFull(r, bitmap); err != nil {
			return nil, err
		}

		for i := range values {
			if bitmapGet(bitmap, i) {
				v, err := leb128.ReadSigned64(r)
				if err != nil {
					return nil, mapErr(err)
				}

				values[i] = T(v)
			} else {
				v, err := readNative(r, width)
				if err != nil {
					return nil, err
				}

				values[i] = T(signExtend(v, width))
			}
		}

		return values, nil
	}

	for i := range values {
		v, err := readNative(r, width)
		if err != nil {
			return nil, err
		}

		values[i] = T(signExtend(v, width))
	}

	return values, nil
}

// WriteUnsignedElements is the unsigned/char counterpart of
// WriteSignedElements.
func WriteUnsignedElements[T Unsigned](w iosink.Writer, values []T, width int, mode primitive.Mode) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	if mode == primitive.Size {
		bitmap := make([]byte, bitmapLen(len(values)))

		for i, v := range values {
			if leb128.ByteCount(uint64(v)) < width {
				bitmapSet(bitmap, i)
			}
		}

		if _, err := w.Write(bitmap); err != nil {
			return err
		}

		for i, v := range values {
			if bitmapGet(bitmap, i) {
				if _, err := leb128.WriteUnsigned(w, uint64(v)); err != nil {
					return err
				}
			} else if err := writeNative(w, uint64(v), width); err != nil {
				return err
			}
		}

		return nil
	}

	for _, v := range values {
		if err := writeNative(w, uint64(v), width); err != nil {
			return err
		}
	}

	return nil
}

// ReadUnsignedElements reads what WriteUnsignedElements wrote.
func ReadUnsignedElements[T Unsigned](r iosink.Reader, width int, mode primitive.Mode) ([]T, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	values := make([]T, n)

	if mode == primitive.Size {
		bitmap := make([]byte, bitmapLen(int(n)))
		if err := readFull(r, bitmap); err != nil {
			return nil, err
		}

		for i := range values {
			if bitmapGet(bitmap, i) {
				v, err := leb128.ReadUnsigned64(r)
				if err != nil {
					return nil, mapErr(err)
				}

				values[i] = T(v)
			} else {
				v, err := readNative(r, width)
				if err != nil {
					return nil, err
				}

				values[i] = T(v)
			}
		}

		return values, nil
	}

	for i := range values {
		v, err := readNative(r, width)
		if err != nil {
			return nil, err
		}

		values[i] = T(v)
	}

	return values, nil
}

// WriteByteElements writes a length-prefixed raw byte array: no bitmap,
// width-1 elements are never shorter as LEB128.
func WriteByteElements(w iosink.Writer, values []byte) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	_, err := w.Write(values)

	return err
}

// ReadByteElements reads what WriteByteElements wrote.
func ReadByteElements(r iosink.Reader) ([]byte, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// WriteFloat32Elements writes a length-prefixed array of native
// little-endian float32 values. Floats never use the bitmap/LEB128 choice.
func WriteFloat32Elements(w iosink.Writer, values []float32) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	for _, v := range values {
		if err := writeNative(w, uint64(math.Float32bits(v)), 4); err != nil {
			return err
		}
	}

	return nil
}

// ReadFloat32Elements reads what WriteFloat32Elements wrote.
func ReadFloat32Elements(r iosink.Reader) ([]float32, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	values := make([]float32, n)

	for i := range values {
		v, err := readNative(r, 4)
		if err != nil {
			return nil, err
		}

		values[i] = math.Float32frombits(uint32(v))
	}

	return values, nil
}

// WriteFloat64Elements writes a length-prefixed array of native
// little-endian float64 values.
func WriteFloat64Elements(w iosink.Writer, values []float64) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	for _, v := range values {
		if err := writeNative(w, math.Float64bits(v), 8); err != nil {
			return err
		}
	}

	return nil
}

// ReadFloat64Elements reads what WriteFloat64Elements wrote.
func ReadFloat64Elements(r iosink.Reader) ([]float64, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	values := make([]float64, n)

	for i := range values {
		v, err := readNative(r, 8)
		if err != nil {
			return nil, err
		}

		values[i] = math.Float64frombits(v)
	}

	return values, nil
}

// WriteBoolElements writes a length-prefixed bool array. In Size mode,
// elements are packed one bit per element, little-endian within each
// byte. In Speed mode, one byte per element.
func WriteBoolElements(w iosink.Writer, values []bool, mode primitive.Mode) error {
	if _, err := leb128.WriteUnsigned(w, uint64(len(values))); err != nil {
		return err
	}

	if mode == primitive.Size {
		packed := make([]byte, bitmapLen(len(values)))

		for i, v := range values {
			if v {
				bitmapSet(packed, i)
			}
		}

		_, err := w.Write(packed)

		return err
	}

	for _, v := range values {
		b := byte(0)
		if v {
			b = 1
		}

		if err := w.WriteByte(b); err != nil {
			return err
		}
	}

	return nil
}

// ReadBoolElements reads what WriteBoolElements wrote.
func ReadBoolElements(r iosink.Reader, mode primitive.Mode) ([]bool, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return nil, mapErr(err)
	}

	values := make([]bool, n)

	if mode == primitive.Size {
		packed := make([]byte, bitmapLen(int(n)))
		if err := readFull(r, packed); err != nil {
			return nil, err
		}

		for i := range values {
			values[i] = bitmapGet(packed, i)
		}

		return values, nil
	}

	for i := range values {
		b, err := r.ReadByte()
		if err != nil {
			return nil, wireerr.ErrUnexpectedEOF
		}

		values[i] = b != 0
	}

	return values, nil
}

// --- shared helpers -------------------------------------------------------

func leb128SignedLen(v int64) int {
	return leb128.SignedByteCount(v)
}

func writeNative(w iosink.Writer, v uint64, width int) error {
	span := w.Span(width)
	for i := 0; i < width; i++ {
		span[i] = byte(v >> (8 * i))
	}

	w.Advance(width)

	return nil
}

func readNative(r iosink.Reader, width int) (uint64, error) {
	buf := make([]byte, width)
	if err := readFull(r, buf); err != nil {
		return 0, err
	}

	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}

	return v, nil
}

func signExtend(v uint64, width int) int64 {
	bits := uint(width * 8)
	if bits == 64 {
		return int64(v)
	}

	shift := 64 - bits

	return int64(v<<shift) >> shift
}

func readFull(r iosink.Reader, buf []byte) error {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m

		if err != nil || m == 0 {
			if n < len(buf) {
				return wireerr.ErrUnexpectedEOF
			}

			return nil
		}
	}

	return nil
}

func mapErr(err error) error {
	switch err {
	case leb128.ErrIncomplete:
		return wireerr.ErrUnexpectedEOF
	case leb128.ErrOverlong:
		return wireerr.ErrOverlongLEB128
	default:
		return err
	}
}
