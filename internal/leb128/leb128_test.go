package leb128

import (
	"bytes"
	"testing"
)

func TestUnsignedRoundtrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 0xFFFFFFFF, 0x100000000, 0xFFFFFFFFFFFFFFFF}

	for _, v := range values {
		buf := AppendUnsigned(nil, v)

		got, n, err := ReadUnsignedFromBuffer(buf)
		if err != nil {
			t.Fatalf("ReadUnsignedFromBuffer(%d): %v", v, err)
		}

		if got != v {
			t.Fatalf("roundtrip mismatch: got %d, want %d", got, v)
		}

		if n != len(buf) {
			t.Fatalf("bytes consumed mismatch: %d vs %d", n, len(buf))
		}

		if n != ByteCount(v) {
			t.Fatalf("ByteCount(%d) = %d, want %d", v, ByteCount(v), n)
		}

		r := bytes.NewReader(buf)

		streamed, err := ReadUnsigned64(r)
		if err != nil {
			t.Fatalf("ReadUnsigned64(%d): %v", v, err)
		}

		if streamed != v {
			t.Fatalf("stream roundtrip mismatch: got %d, want %d", streamed, v)
		}
	}
}

func TestSignedRoundtrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 300, -300, 1 << 40, -(1 << 40), -9223372036854775808, 9223372036854775807}

	for _, v := range values {
		buf := AppendSigned(nil, v)

		got, n, err := ReadSignedFromBuffer(buf)
		if err != nil {
			t.Fatalf("ReadSignedFromBuffer(%d): %v", v, err)
		}

		if got != v {
			t.Fatalf("roundtrip mismatch: got %d, want %d", got, v)
		}

		if n != len(buf) {
			t.Fatalf("bytes consumed mismatch: %d vs %d", n, len(buf))
		}

		r := bytes.NewReader(buf)

		streamed, err := ReadSigned64(r)
		if err != nil {
			t.Fatalf("ReadSigned64(%d): %v", v, err)
		}

		if streamed != v {
			t.Fatalf("stream roundtrip mismatch: got %d, want %d", streamed, v)
		}
	}
}

func TestReadIncomplete(t *testing.T) {
	// A continuation byte with nothing following.
	buf := []byte{0x80}

	_, _, err := ReadUnsignedFromBuffer(buf)
	if err != ErrIncomplete {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}

	r := bytes.NewReader(buf)

	_, err = ReadUnsigned64(r)
	if err != ErrIncomplete {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
}

func TestReadOverlong(t *testing.T) {
	// 11 continuation bytes: exceeds MaxUnsigned64Bytes.
	buf := bytes.Repeat([]byte{0x80}, 11)

	_, _, err := ReadUnsignedFromBuffer(buf)
	if err != ErrOverlong {
		t.Fatalf("got %v, want ErrOverlong", err)
	}
}

func TestZigzag(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 12345, -12345}
	for _, v := range values {
		z := I64ToZigzag(v)
		got := ZigzagToI64(z)

		if got != v {
			t.Fatalf("zigzag roundtrip mismatch: got %d, want %d", got, v)
		}
	}
}

func FuzzUnsignedRoundtrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(300))
	f.Add(uint64(0xFFFFFFFFFFFFFFFF))

	f.Fuzz(func(t *testing.T, v uint64) {
		buf := AppendUnsigned(nil, v)

		got, n, err := ReadUnsignedFromBuffer(buf)
		if err != nil {
			t.Fatalf("ReadUnsignedFromBuffer: %v", err)
		}

		if got != v || n != len(buf) {
			t.Fatalf("roundtrip mismatch for %d", v)
		}
	})
}

func FuzzSignedRoundtrip(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-300))
	f.Add(int64(9223372036854775807))

	f.Fuzz(func(t *testing.T, v int64) {
		buf := AppendSigned(nil, v)

		got, n, err := ReadSignedFromBuffer(buf)
		if err != nil {
			t.Fatalf("ReadSignedFromBuffer: %v", err)
		}

		if got != v || n != len(buf) {
			t.Fatalf("roundtrip mismatch for %d", v)
		}
	})
}
