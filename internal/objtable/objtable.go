// Package objtable implements object-reference interning: identity-based
// back-reference tracking for reference-typed values encountered during
// one encode or decode pass.
//
// Identity for pointer/slice/map-kinded values is runtime reference
// identity (the address of the pointed-to/underlying data); strings are
// the one value-typed exception the core spec calls out — they are
// interned by value, so two equal strings anywhere in the graph collapse
// to the same object id.
//
// Reference: grounded on this module's ancestor store's cache key/handle
// shape (internal/cache's Cache.Insert/Lookup-by-key), simplified here to
// an unbounded, eviction-free map scoped to a single pass — a cache entry
// must never be evicted mid-pass, since a later back-reference must
// always resolve.
package objtable

// EncodeTable assigns monotonically increasing object ids to distinct
// reference-typed values encountered while encoding one object graph.
type EncodeTable struct {
	byIdentity map[uintptr]uint32
	byString   map[string]uint32
	nextID     uint32
}

// NewEncodeTable creates an empty per-pass object encode table.
func NewEncodeTable() *EncodeTable {
	return &EncodeTable{
		byIdentity: make(map[uintptr]uint32),
		byString:   make(map[string]uint32),
	}
}

// Reset clears the table for reuse across passes.
func (t *EncodeTable) Reset() {
	clear(t.byIdentity)
	clear(t.byString)

	t.nextID = 0
}

// LookupIdentity returns the id previously assigned to the value whose
// underlying data lives at addr, if any.
func (t *EncodeTable) LookupIdentity(addr uintptr) (uint32, bool) {
	id, ok := t.byIdentity[addr]
	return id, ok
}

// AssignIdentity assigns the next id to addr.
func (t *EncodeTable) AssignIdentity(addr uintptr) uint32 {
	id := t.nextID
	t.byIdentity[addr] = id
	t.nextID++

	return id
}

// LookupString returns the id previously assigned to this exact string
// value, if any.
func (t *EncodeTable) LookupString(s string) (uint32, bool) {
	id, ok := t.byString[s]
	return id, ok
}

// AssignString assigns the next id to string value s.
func (t *EncodeTable) AssignString(s string) uint32 {
	id := t.nextID
	t.byString[s] = id
	t.nextID++

	return id
}

// NextID previews the id the next Assign* call will hand out, needed by
// callers that must register a container's own id before recursing into
// its elements (arrays, archives).
func (t *EncodeTable) NextID() uint32 {
	return t.nextID
}

// DecodeTable is the decoder's symmetric id -> value mapping for one pass.
//
// Contract: a decoder that may contain self- or mutually-referential
// values must call Assign with a pre-allocated, not-yet-populated shell
// (e.g. a pointer to a zero-valued struct, or a slice pre-sized to its
// final length) before decoding that value's contents, exactly mirroring
// the encode-side requirement that a container's id is assigned before
// its elements are encoded.
type DecodeTable struct {
	idToObj map[uint32]any
	nextID  uint32
}

// NewDecodeTable creates an empty per-pass object decode table.
func NewDecodeTable() *DecodeTable {
	return &DecodeTable{idToObj: make(map[uint32]any)}
}

// Reset clears the table for reuse across passes.
func (t *DecodeTable) Reset() {
	clear(t.idToObj)
	t.nextID = 0
}

// Lookup resolves a previously assigned object id.
func (t *DecodeTable) Lookup(id uint32) (any, bool) {
	obj, ok := t.idToObj[id]
	return obj, ok
}

// Assign registers obj at the next id and returns it.
func (t *DecodeTable) Assign(obj any) uint32 {
	id := t.nextID
	t.idToObj[id] = obj
	t.nextID++

	return id
}
