// Package primitive implements the per-kind encode/decode routines for
// scalar values: signed/unsigned integers, floats, bool, UTF-16 char,
// 128-bit fixed-point decimal, and ticks-epoch date/time.
//
// All multi-byte values are written little-endian on the wire by explicit
// byte placement (manual shifts in putUintLE for integers and chars,
// encoding/binary.LittleEndian for floats, decimal and datetime) rather
// than by reinterpreting host memory, so decode is correct on any host
// without a separate byte-swap step.
//
// Reference: grounded on this module's ancestor store's
// EncodeFixed16/32/64 fixed-width helpers (internal/encoding/coding.go),
// generalized to the full scalar kind set and the native/LEB128
// per-occurrence choice.
package primitive

import (
	"encoding/binary"
	"math"

	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/leb128"
	"github.com/aalhour/binarchive/internal/wireerr"
	"github.com/aalhour/binarchive/internal/wiretag"
)

// Mode selects the encoder's optimization axis: Speed favors raw
// fixed-width writes, Size favors the shorter of native/LEB128 per value.
type Mode uint8

const (
	// Speed always uses native fixed-width encoding for integers/chars.
	Speed Mode = iota
	// Size uses LEB128 whenever it is strictly shorter than native.
	Size
)

// CalendarKind is the two-bit calendar-kind flag packed into the top bits
// of an encoded DateTime tick value.
type CalendarKind uint8

const (
	CalendarUnspecified CalendarKind = 0
	CalendarUTC         CalendarKind = 1
	CalendarLocal       CalendarKind = 2
)

// DateTime is a ticks-epoch timestamp: 100-nanosecond increments since
// 0001-01-01T00:00:00 UTC, plus a calendar-kind flag.
type DateTime struct {
	Ticks int64 // must fit in 62 bits
	Kind  CalendarKind
}

const calendarKindShift = 62

// Encode packs Ticks and Kind into the signed 64-bit wire representation.
func (d DateTime) Encode() int64 {
	return d.Ticks | (int64(d.Kind) << calendarKindShift)
}

// DecodeDateTime unpacks a wire value into ticks and calendar kind.
func DecodeDateTime(v int64) DateTime {
	kind := CalendarKind((uint64(v) >> calendarKindShift) & 0x3)
	ticks := int64(uint64(v) &^ (uint64(0x3) << calendarKindShift))

	return DateTime{Ticks: ticks, Kind: kind}
}

// Decimal is a 128-bit exact fixed-point number: a 96-bit unsigned
// mantissa split into three little-endian 32-bit words, a sign bit, and a
// scale in [0, 28].
type Decimal struct {
	Low, Mid, High uint32
	Scale          uint8
	Negative       bool
}

func (d Decimal) flags() uint32 {
	var f uint32

	f = uint32(d.Scale) << 16
	if d.Negative {
		f |= 1 << 31
	}

	return f
}

func decodeDecimalFlags(f uint32) (scale uint8, negative bool) {
	return uint8((f >> 16) & 0xff), f&(1<<31) != 0
}

// WriteInt8 writes a signed 8-bit integer. Always one raw byte; there is
// no shorter LEB128 form for a single byte.
func WriteInt8(w iosink.Writer, v int8) error {
	if err := writeTag(w, wiretag.Int8); err != nil {
		return err
	}

	return w.WriteByte(byte(v))
}

// ReadInt8 reads the payload of an Int8 tag.
func ReadInt8(r iosink.Reader) (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// WriteUInt8 writes an unsigned 8-bit integer.
func WriteUInt8(w iosink.Writer, v uint8) error {
	if err := writeTag(w, wiretag.UInt8); err != nil {
		return err
	}

	return w.WriteByte(v)
}

// ReadUInt8 reads the payload of a UInt8 tag.
func ReadUInt8(r iosink.Reader) (uint8, error) {
	return r.ReadByte()
}

// WriteInt16 writes a signed 16-bit integer, choosing native or LEB128
// per mode.
func WriteInt16(w iosink.Writer, v int16, mode Mode) error {
	return writeSigned(w, int64(v), 2, wiretag.Int16, wiretag.Int16LEB128, mode)
}

// ReadInt16 reads the payload for tag (Int16 or Int16LEB128).
func ReadInt16(r iosink.Reader, tag wiretag.Tag) (int16, error) {
	v, err := readSigned(r, tag, wiretag.Int16LEB128, 2)
	return int16(v), err
}

// WriteUInt16 writes an unsigned 16-bit integer.
func WriteUInt16(w iosink.Writer, v uint16, mode Mode) error {
	return writeUnsigned(w, uint64(v), 2, wiretag.UInt16, wiretag.UInt16LEB128, mode)
}

// ReadUInt16 reads the payload for tag (UInt16 or UInt16LEB128).
func ReadUInt16(r iosink.Reader, tag wiretag.Tag) (uint16, error) {
	v, err := readUnsigned(r, tag, wiretag.UInt16LEB128, 2)
	return uint16(v), err
}

// WriteChar writes a UTF-16 code unit using the same native/LEB128 choice
// as UInt16.
func WriteChar(w iosink.Writer, v uint16, mode Mode) error {
	return writeUnsigned(w, uint64(v), 2, wiretag.Char, wiretag.CharLEB128, mode)
}

// ReadChar reads the payload for tag (Char or CharLEB128).
func ReadChar(r iosink.Reader, tag wiretag.Tag) (uint16, error) {
	v, err := readUnsigned(r, tag, wiretag.CharLEB128, 2)
	return uint16(v), err
}

// WriteInt32 writes a signed 32-bit integer.
func WriteInt32(w iosink.Writer, v int32, mode Mode) error {
	return writeSigned(w, int64(v), 4, wiretag.Int32, wiretag.Int32LEB128, mode)
}

// ReadInt32 reads the payload for tag (Int32 or Int32LEB128).
func ReadInt32(r iosink.Reader, tag wiretag.Tag) (int32, error) {
	v, err := readSigned(r, tag, wiretag.Int32LEB128, 4)
	return int32(v), err
}

// WriteUInt32 writes an unsigned 32-bit integer.
func WriteUInt32(w iosink.Writer, v uint32, mode Mode) error {
	return writeUnsigned(w, uint64(v), 4, wiretag.UInt32, wiretag.UInt32LEB128, mode)
}

// ReadUInt32 reads the payload for tag (UInt32 or UInt32LEB128).
func ReadUInt32(r iosink.Reader, tag wiretag.Tag) (uint32, error) {
	v, err := readUnsigned(r, tag, wiretag.UInt32LEB128, 4)
	return uint32(v), err
}

// WriteInt64 writes a signed 64-bit integer.
func WriteInt64(w iosink.Writer, v int64, mode Mode) error {
	return writeSigned(w, v, 8, wiretag.Int64, wiretag.Int64LEB128, mode)
}

// ReadInt64 reads the payload for tag (Int64 or Int64LEB128).
func ReadInt64(r iosink.Reader, tag wiretag.Tag) (int64, error) {
	return readSigned(r, tag, wiretag.Int64LEB128, 8)
}

// WriteUInt64 writes an unsigned 64-bit integer.
func WriteUInt64(w iosink.Writer, v uint64, mode Mode) error {
	return writeUnsigned(w, v, 8, wiretag.UInt64, wiretag.UInt64LEB128, mode)
}

// ReadUInt64 reads the payload for tag (UInt64 or UInt64LEB128).
func ReadUInt64(r iosink.Reader, tag wiretag.Tag) (uint64, error) {
	return readUnsigned(r, tag, wiretag.UInt64LEB128, 8)
}

// WriteFloat32 writes a 32-bit IEEE-754 float, always fixed-width.
func WriteFloat32(w iosink.Writer, v float32) error {
	if err := writeTag(w, wiretag.Float32); err != nil {
		return err
	}

	span := w.Span(4)
	binary.LittleEndian.PutUint32(span, math.Float32bits(v))
	w.Advance(4)

	return nil
}

// ReadFloat32 reads the payload of a Float32 tag.
func ReadFloat32(r iosink.Reader) (float32, error) {
	var buf [4]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteFloat64 writes a 64-bit IEEE-754 float, always fixed-width.
func WriteFloat64(w iosink.Writer, v float64) error {
	if err := writeTag(w, wiretag.Float64); err != nil {
		return err
	}

	span := w.Span(8)
	binary.LittleEndian.PutUint64(span, math.Float64bits(v))
	w.Advance(8)

	return nil
}

// ReadFloat64 reads the payload of a Float64 tag.
func ReadFloat64(r iosink.Reader) (float64, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteBool writes a boolean. In Speed mode it is one byte (0x00/0x01with
// a BoolNative tag); in Size mode it is a dedicated no-payload tag.
func WriteBool(w iosink.Writer, v bool, mode Mode) error {
	if mode == Size {
		if v {
			return writeTag(w, wiretag.BoolTrue)
		}

		return writeTag(w, wiretag.BoolFalse)
	}

	if err := writeTag(w, wiretag.BoolNative); err != nil {
		return err
	}

	if v {
		return w.WriteByte(1)
	}

	return w.WriteByte(0)
}

// ReadBool reads the payload (if any) for tag (BoolNative, BoolFalse, or
// BoolTrue).
func ReadBool(r iosink.Reader, tag wiretag.Tag) (bool, error) {
	switch tag {
	case wiretag.BoolFalse:
		return false, nil
	case wiretag.BoolTrue:
		return true, nil
	case wiretag.BoolNative:
		b, err := r.ReadByte()
		return b != 0, err
	default:
		return false, wireerr.UnexpectedTag(wiretag.BoolNative, tag)
	}
}

// WriteDecimal writes a 128-bit fixed-point decimal as four little-endian
// 32-bit words (low, mid, high, flags).
func WriteDecimal(w iosink.Writer, d Decimal) error {
	if err := writeTag(w, wiretag.Decimal); err != nil {
		return err
	}

	span := w.Span(16)
	binary.LittleEndian.PutUint32(span[0:4], d.Low)
	binary.LittleEndian.PutUint32(span[4:8], d.Mid)
	binary.LittleEndian.PutUint32(span[8:12], d.High)
	binary.LittleEndian.PutUint32(span[12:16], d.flags())
	w.Advance(16)

	return nil
}

// ReadDecimal reads the payload of a Decimal tag.
func ReadDecimal(r iosink.Reader) (Decimal, error) {
	var buf [16]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return Decimal{}, err
	}

	scale, negative := decodeDecimalFlags(binary.LittleEndian.Uint32(buf[12:16]))

	return Decimal{
		Low:      binary.LittleEndian.Uint32(buf[0:4]),
		Mid:      binary.LittleEndian.Uint32(buf[4:8]),
		High:     binary.LittleEndian.Uint32(buf[8:12]),
		Scale:    scale,
		Negative: negative,
	}, nil
}

// WriteDateTime writes a ticks-epoch timestamp as a signed 64-bit
// little-endian integer.
func WriteDateTime(w iosink.Writer, d DateTime) error {
	if err := writeTag(w, wiretag.DateTime); err != nil {
		return err
	}

	span := w.Span(8)
	binary.LittleEndian.PutUint64(span, uint64(d.Encode()))
	w.Advance(8)

	return nil
}

// ReadDateTime reads the payload of a DateTime tag.
func ReadDateTime(r iosink.Reader) (DateTime, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return DateTime{}, err
	}

	return DecodeDateTime(int64(binary.LittleEndian.Uint64(buf[:]))), nil
}

// WriteString writes a UTF-8 string with a ULEB128 byte-length prefix.
func WriteString(w iosink.Writer, v string) error {
	if err := writeTag(w, wiretag.String); err != nil {
		return err
	}

	if _, err := leb128.WriteUnsigned(w, uint64(len(v))); err != nil {
		return err
	}

	_, err := w.Write([]byte(v))

	return err
}

// ReadString reads the payload of a String tag.
func ReadString(r iosink.Reader) (string, error) {
	n, err := leb128.ReadUnsigned64(r)
	if err != nil {
		return "", mapLEB128Err(err)
	}

	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

// --- shared helpers -------------------------------------------------------

func writeTag(w iosink.Writer, t wiretag.Tag) error {
	return w.WriteByte(byte(t))
}

func writeUnsigned(w iosink.Writer, v uint64, width int, nativeTag, lebTag wiretag.Tag, mode Mode) error {
	if mode == Size && leb128.ByteCount(v) < width {
		if err := writeTag(w, lebTag); err != nil {
			return err
		}

		_, err := leb128.WriteUnsigned(w, v)

		return err
	}

	if err := writeTag(w, nativeTag); err != nil {
		return err
	}

	span := w.Span(width)
	putUintLE(span, v, width)
	w.Advance(width)

	return nil
}

func writeSigned(w iosink.Writer, v int64, width int, nativeTag, lebTag wiretag.Tag, mode Mode) error {
	if mode == Size && leb128.SignedByteCount(v) < width {
		if err := writeTag(w, lebTag); err != nil {
			return err
		}

		_, err := leb128.WriteSigned(w, v)

		return err
	}

	if err := writeTag(w, nativeTag); err != nil {
		return err
	}

	span := w.Span(width)
	putUintLE(span, uint64(v), width)
	w.Advance(width)

	return nil
}

func readUnsigned(r iosink.Reader, tag, lebTag wiretag.Tag, width int) (uint64, error) {
	if tag == lebTag {
		v, err := leb128.ReadUnsigned64(r)
		return v, mapLEB128Err(err)
	}

	buf := make([]byte, width)
	if _, err := readFull(r, buf); err != nil {
		return 0, err
	}

	return getUintLE(buf, width), nil
}

func readSigned(r iosink.Reader, tag, lebTag wiretag.Tag, width int) (int64, error) {
	if tag == lebTag {
		v, err := leb128.ReadSigned64(r)
		return v, mapLEB128Err(err)
	}

	buf := make([]byte, width)
	if _, err := readFull(r, buf); err != nil {
		return 0, err
	}

	return signExtend(getUintLE(buf, width), width), nil
}

// mapLEB128Err translates the leb128 package's local sentinels into the
// shared wireerr taxonomy used by every layer above the codec.
func mapLEB128Err(err error) error {
	switch err {
	case nil:
		return nil
	case leb128.ErrIncomplete:
		return wireerr.ErrUnexpectedEOF
	case leb128.ErrOverlong:
		return wireerr.ErrOverlongLEB128
	default:
		return err
	}
}

func putUintLE(dst []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func getUintLE(src []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(src[i]) << (8 * i)
	}

	return v
}

func signExtend(v uint64, width int) int64 {
	bits := uint(width * 8)
	if bits == 64 {
		return int64(v)
	}

	shift := 64 - bits
	return int64(v<<shift) >> shift
}

func readFull(r iosink.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m

		if err != nil {
			if n < len(buf) {
				return n, wireerr.ErrUnexpectedEOF
			}

			return n, nil
		}

		if m == 0 {
			return n, wireerr.ErrUnexpectedEOF
		}
	}

	return n, nil
}
