package arraycodec

import (
	"bytes"
	"testing"

	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/primitive"
)

func TestSignedElementsRoundtripBothModes(t *testing.T) {
	values := []int32{0, 1, -1, 300, -300, 1 << 20}

	for _, mode := range []primitive.Mode{primitive.Speed, primitive.Size} {
		w := iosink.NewBufferedWriter(16)
		if err := WriteSignedElements(w, values, 4, mode); err != nil {
			t.Fatalf("Write: %v", err)
		}

		r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

		got, err := ReadSignedElements[int32](r, 4, mode)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}

		if len(got) != len(values) {
			t.Fatalf("len got %d, want %d", len(got), len(values))
		}

		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("mode %v idx %d: got %d, want %d", mode, i, got[i], values[i])
			}
		}
	}
}

func TestUnsignedElementsRoundtripBothModes(t *testing.T) {
	values := []uint16{0, 1, 127, 128, 65535}

	for _, mode := range []primitive.Mode{primitive.Speed, primitive.Size} {
		w := iosink.NewBufferedWriter(16)
		if err := WriteUnsignedElements(w, values, 2, mode); err != nil {
			t.Fatalf("Write: %v", err)
		}

		r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

		got, err := ReadUnsignedElements[uint16](r, 2, mode)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}

		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("mode %v idx %d: got %d, want %d", mode, i, got[i], values[i])
			}
		}
	}
}

func TestByteElementsRoundtrip(t *testing.T) {
	values := []byte{1, 2, 3, 4, 255}

	w := iosink.NewBufferedWriter(8)
	if err := WriteByteElements(w, values); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

	got, err := ReadByteElements(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !bytes.Equal(got, values) {
		t.Fatalf("got %v, want %v", got, values)
	}
}

func TestFloat64ElementsRoundtrip(t *testing.T) {
	values := []float64{0, 1.5, -2.25, 3.14159265358979}

	w := iosink.NewBufferedWriter(32)
	if err := WriteFloat64Elements(w, values); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

	got, err := ReadFloat64Elements(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("idx %d: got %v, want %v", i, got[i], values[i])
		}
	}
}

func TestBoolElementsRoundtripBothModes(t *testing.T) {
	values := []bool{true, false, false, true, true, true, false, true, false}

	for _, mode := range []primitive.Mode{primitive.Speed, primitive.Size} {
		w := iosink.NewBufferedWriter(8)
		if err := WriteBoolElements(w, values, mode); err != nil {
			t.Fatalf("Write: %v", err)
		}

		r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

		got, err := ReadBoolElements(r, mode)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}

		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("mode %v idx %d: got %v, want %v", mode, i, got[i], values[i])
			}
		}
	}
}

// TestGoldenMultiDimShape reproduces the shape portion of spec scenario
// S6: a 2x3 zero-based matrix has dims [{0,2},{0,3}] and 6 total elements.
func TestGoldenMultiDimShape(t *testing.T) {
	dims := []Dim{{Lower: 0, Length: 2}, {Lower: 0, Length: 3}}
	if TotalElements(dims) != 6 {
		t.Fatalf("got %d, want 6", TotalElements(dims))
	}

	values := []int32{1, 2, 3, 4, 5, 6}

	w := iosink.NewBufferedWriter(32)
	if err := WriteSignedElements(w, values, 4, primitive.Speed); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := iosink.NewStreamReader(bytes.NewReader(w.Bytes()))

	got, err := ReadSignedElements[int32](r, 4, primitive.Speed)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("idx %d: got %d, want %d", i, got[i], values[i])
		}
	}
}
