package primitive

import (
	"bytes"
	"testing"

	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/wiretag"
)

func readTag(t *testing.T, r iosink.Reader) wiretag.Tag {
	t.Helper()

	b, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}

	return wiretag.Tag(b)
}

// TestGoldenInt32Size reproduces spec scenario S1: Int32(300) in size mode
// encodes as <Int32LEB128> AC 02.
func TestGoldenInt32Size(t *testing.T) {
	w := iosink.NewBufferedWriter(8)
	if err := WriteInt32(w, 300, Size); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}

	want := []byte{byte(wiretag.Int32LEB128), 0xAC, 0x02}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got % x, want % x", w.Bytes(), want)
	}
}

// TestGoldenInt32Speed reproduces spec scenario S2: Int32(300) in speed
// mode encodes as <Int32Native> 2C 01 00 00.
func TestGoldenInt32Speed(t *testing.T) {
	w := iosink.NewBufferedWriter(8)
	if err := WriteInt32(w, 300, Speed); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}

	want := []byte{byte(wiretag.Int32), 0x2C, 0x01, 0x00, 0x00}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got % x, want % x", w.Bytes(), want)
	}
}

func TestIntegerRoundtripBothModes(t *testing.T) {
	values := []int32{0, 1, -1, 127, 128, -128, 300, 16384, -16384, 1 << 30, -(1 << 30)}

	for _, mode := range []Mode{Speed, Size} {
		for _, v := range values {
			w := iosink.NewBufferedWriter(8)
			if err := WriteInt32(w, v, mode); err != nil {
				t.Fatalf("WriteInt32(%d): %v", v, err)
			}

			r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
			tag := readTag(t, r)

			got, err := ReadInt32(r, tag)
			if err != nil {
				t.Fatalf("ReadInt32(%d): %v", v, err)
			}

			if got != v {
				t.Fatalf("mode %d: got %d, want %d", mode, got, v)
			}
		}
	}
}

func TestUInt64RoundtripBothModes(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF}

	for _, mode := range []Mode{Speed, Size} {
		for _, v := range values {
			w := iosink.NewBufferedWriter(8)
			if err := WriteUInt64(w, v, mode); err != nil {
				t.Fatalf("WriteUInt64(%d): %v", v, err)
			}

			r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
			tag := readTag(t, r)

			got, err := ReadUInt64(r, tag)
			if err != nil {
				t.Fatalf("ReadUInt64(%d): %v", v, err)
			}

			if got != v {
				t.Fatalf("mode %d: got %d, want %d", mode, got, v)
			}
		}
	}
}

func TestFloatRoundtrip(t *testing.T) {
	w := iosink.NewBufferedWriter(8)
	if err := WriteFloat64(w, 3.14159265358979); err != nil {
		t.Fatalf("WriteFloat64: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

	tag := readTag(t, r)
	if tag != wiretag.Float64 {
		t.Fatalf("got tag %s, want Float64", tag)
	}

	got, err := ReadFloat64(r)
	if err != nil {
		t.Fatalf("ReadFloat64: %v", err)
	}

	if got != 3.14159265358979 {
		t.Fatalf("got %v", got)
	}
}

func TestBoolSpeedAndSizeModes(t *testing.T) {
	for _, mode := range []Mode{Speed, Size} {
		for _, v := range []bool{true, false} {
			w := iosink.NewBufferedWriter(2)
			if err := WriteBool(w, v, mode); err != nil {
				t.Fatalf("WriteBool: %v", err)
			}

			r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
			tag := readTag(t, r)

			got, err := ReadBool(r, tag)
			if err != nil {
				t.Fatalf("ReadBool: %v", err)
			}

			if got != v {
				t.Fatalf("mode %d: got %v, want %v", mode, got, v)
			}
		}
	}

	// Size mode uses a dedicated no-payload tag.
	w := iosink.NewBufferedWriter(2)
	_ = WriteBool(w, true, Size)

	if !bytes.Equal(w.Bytes(), []byte{byte(wiretag.BoolTrue)}) {
		t.Fatalf("size-mode true should be a single tag byte, got % x", w.Bytes())
	}
}

func TestStringRoundtrip(t *testing.T) {
	w := iosink.NewBufferedWriter(8)
	if err := WriteString(w, "hi"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	want := append([]byte{byte(wiretag.String), 0x02}, "hi"...)
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got % x, want % x", w.Bytes(), want)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
	_ = readTag(t, r)

	got, err := ReadString(r)
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}

	if got != "hi" {
		t.Fatalf("got %q", got)
	}
}

func TestDecimalRoundtrip(t *testing.T) {
	d := Decimal{Low: 1, Mid: 2, High: 3, Scale: 28, Negative: true}

	w := iosink.NewBufferedWriter(20)
	if err := WriteDecimal(w, d); err != nil {
		t.Fatalf("WriteDecimal: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
	_ = readTag(t, r)

	got, err := ReadDecimal(r)
	if err != nil {
		t.Fatalf("ReadDecimal: %v", err)
	}

	if got != d {
		t.Fatalf("got %+v, want %+v", got, d)
	}
}

func TestDateTimeRoundtrip(t *testing.T) {
	d := DateTime{Ticks: 638123456789, Kind: CalendarUTC}

	w := iosink.NewBufferedWriter(10)
	if err := WriteDateTime(w, d); err != nil {
		t.Fatalf("WriteDateTime: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))
	_ = readTag(t, r)

	got, err := ReadDateTime(r)
	if err != nil {
		t.Fatalf("ReadDateTime: %v", err)
	}

	if got != d {
		t.Fatalf("got %+v, want %+v", got, d)
	}
}
