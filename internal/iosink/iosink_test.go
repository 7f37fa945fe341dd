package iosink

import (
	"bytes"
	"testing"
)

func TestBufferedWriterSpanAdvance(t *testing.T) {
	w := NewBufferedWriter(4)

	span := w.Span(3)
	span[0], span[1], span[2] = 1, 2, 3
	w.Advance(3)

	if err := w.WriteByte(4); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}

	if _, err := w.Write([]byte{5, 6}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := []byte{1, 2, 3, 4, 5, 6}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got %v, want %v", w.Bytes(), want)
	}
}

func TestBufferedWriterReset(t *testing.T) {
	w := NewBufferedWriter(4)
	_ = w.WriteByte(9)
	w.Reset()

	if len(w.Bytes()) != 0 {
		t.Fatalf("expected empty buffer after Reset, got %v", w.Bytes())
	}
}

// bytes.Reader implements io.Seeker, so Skip takes the seek path here while
// the bytes after the first one are still held in the bufio buffer.
func TestStreamReaderSkipWithSeeker(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := NewStreamReader(bytes.NewReader(data))

	b, err := r.ReadByte()
	if err != nil || b != 1 {
		t.Fatalf("ReadByte = %d, %v", b, err)
	}

	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	rest := make([]byte, 2)
	if _, err := r.Read(rest); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !bytes.Equal(rest, []byte{4, 5}) {
		t.Fatalf("got %v, want [4 5]", rest)
	}
}
