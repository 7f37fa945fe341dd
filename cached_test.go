package binarchive

import (
	"bytes"
	"testing"
)

// TestSerializeCachedHitsAndMisses exercises SerializeCached's two paths:
// a first call misses and populates the cache, a second call under the
// same key hits without re-walking the object graph.
func TestSerializeCachedHitsAndMisses(t *testing.T) {
	reg := newTestRegistry()
	ser := NewSerializer(reg)
	cache := NewSnapshotCache(1 << 20)

	src := &widget{Name: "gear", Count: 3, Prices: []int32{10, 20, 30}}

	var miss bytes.Buffer
	if err := ser.SerializeCached(&miss, cache, "widget-1", src); err != nil {
		t.Fatalf("SerializeCached (miss): %v", err)
	}

	var hit bytes.Buffer
	if err := ser.SerializeCached(&hit, cache, "widget-1", src); err != nil {
		t.Fatalf("SerializeCached (hit): %v", err)
	}

	if !bytes.Equal(miss.Bytes(), hit.Bytes()) {
		t.Fatalf("cached snapshot diverged from freshly encoded one")
	}

	de := NewDeserializer(reg)

	got, err := de.Deserialize(bytes.NewReader(hit.Bytes()))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	w, ok := got.(*widget)
	if !ok || w.Name != src.Name || w.Count != src.Count {
		t.Fatalf("got %#v, want %#v", got, src)
	}
}

// TestDeserializeCachedRoundtrip exercises DeserializeCached's
// cache-population-on-miss and cache-reuse-on-hit paths.
func TestDeserializeCachedRoundtrip(t *testing.T) {
	reg := newTestRegistry()
	ser := NewSerializer(reg)
	de := NewDeserializer(reg)
	cache := NewSnapshotCache(1 << 20)

	src := &widget{Name: "axle", Count: 7, Prices: []int32{1, 2}}

	var buf bytes.Buffer
	if err := ser.Serialize(&buf, src); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	payload := buf.Bytes()

	got, err := de.DeserializeCached(bytes.NewReader(payload), cache, "widget-2")
	if err != nil {
		t.Fatalf("DeserializeCached (miss): %v", err)
	}

	if w := got.(*widget); w.Name != src.Name || w.Count != src.Count {
		t.Fatalf("got %#v, want %#v", w, src)
	}

	// A second call reads from an already-exhausted reader, proving the
	// object came back from the cache rather than r.
	got2, err := de.DeserializeCached(bytes.NewReader(nil), cache, "widget-2")
	if err != nil {
		t.Fatalf("DeserializeCached (hit): %v", err)
	}

	if w := got2.(*widget); w.Name != src.Name || w.Count != src.Count {
		t.Fatalf("got %#v, want %#v", w, src)
	}
}
