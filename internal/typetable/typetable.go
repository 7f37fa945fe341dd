// Package typetable implements the type-reference interning tables: the
// per-pass encoder (type handle -> small id) and decoder (id -> type
// handle) tables, plus the process-wide name-to-type resolver cache and
// pre-encoded type-name snippet cache.
//
// Reference: the per-pass tables are plain maps reset every pass, per the
// resource model in the core spec. The two process-wide caches use the
// copy-on-write publication pattern this module's ambient stack uses for
// hot read-mostly state (internal/logging's atomic.Pointer-guarded
// FatalHandler), generalized here to atomic.Pointer-guarded maps guarded
// on the write side by a sync.Mutex.
package typetable

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Composite definition tokens used in place of a resolvable type name for
// Go's built-in generic-like composite kinds. User-defined generic types
// are not decomposed this way: Go's reflect package exposes no runtime
// link back to an uninstantiated generic definition, so a true port of
// the source's "generic definition + arguments" decomposition would
// require compile-time code generation (see DESIGN.md).
const (
	DefSlice = "$slice"
	DefPtr   = "$ptr"
	DefMap   = "$map"
)

// Decomposed describes a type as a definition token (or fully-qualified
// name for a non-composite type) plus an ordered list of component types
// to recurse into.
type Decomposed struct {
	Definition string
	ArrayLen   int // only meaningful for array component decomposition
	Args       []reflect.Type
}

// Decompose splits typ into a definition and its component argument
// types, recursing into Go's slice/pointer/map kinds the way the wire
// format recurses into a generic type's closed arguments.
func Decompose(typ reflect.Type) Decomposed {
	switch typ.Kind() {
	case reflect.Slice:
		return Decomposed{Definition: DefSlice, Args: []reflect.Type{typ.Elem()}}
	case reflect.Ptr:
		return Decomposed{Definition: DefPtr, Args: []reflect.Type{typ.Elem()}}
	case reflect.Map:
		return Decomposed{Definition: DefMap, Args: []reflect.Type{typ.Key(), typ.Elem()}}
	default:
		return Decomposed{Definition: FullName(typ)}
	}
}

// FullName returns the assembly-qualified (package-path-qualified) name
// used to identify typ on the wire.
func FullName(typ reflect.Type) string {
	if typ.PkgPath() == "" {
		return typ.String()
	}

	return typ.PkgPath() + "." + typ.Name()
}

// EncodeTable assigns monotonically increasing ids to distinct types
// encountered during one encode pass. A composite type's definition
// token ($slice/$ptr/$map) is interned independently of the type itself,
// sharing the same id sequence, so that e.g. two distinct slice types
// both reuse one id for "$slice" and only pay for their differing
// element types.
type EncodeTable struct {
	typeToID map[reflect.Type]uint32
	defToID  map[string]uint32
	nextID   uint32
}

// NewEncodeTable creates an empty per-pass encode table.
func NewEncodeTable() *EncodeTable {
	return &EncodeTable{
		typeToID: make(map[reflect.Type]uint32),
		defToID:  make(map[string]uint32),
	}
}

// Reset clears the table for reuse across passes (pooling contract).
func (t *EncodeTable) Reset() {
	clear(t.typeToID)
	clear(t.defToID)

	t.nextID = 0
}

// Lookup returns the id previously assigned to typ, if any.
func (t *EncodeTable) Lookup(typ reflect.Type) (uint32, bool) {
	id, ok := t.typeToID[typ]
	return id, ok
}

// Assign assigns the next id to typ and returns it. Callers must check
// Lookup first; Assign does not check for an existing entry.
func (t *EncodeTable) Assign(typ reflect.Type) uint32 {
	id := t.nextID
	t.typeToID[typ] = id
	t.nextID++

	return id
}

// LookupDef returns the id previously assigned to a composite
// definition token, if any.
func (t *EncodeTable) LookupDef(token string) (uint32, bool) {
	id, ok := t.defToID[token]
	return id, ok
}

// AssignDef assigns the next id to a composite definition token and
// returns it, drawing from the same id sequence as Assign. Callers must
// check LookupDef first.
func (t *EncodeTable) AssignDef(token string) uint32 {
	id := t.nextID
	t.defToID[token] = id
	t.nextID++

	return id
}

// DecodeTable is the decoder's symmetric id -> type mapping for one
// pass, with a parallel id -> definition-token mapping for ids that were
// assigned to a composite type's definition rather than to a resolved
// type.
type DecodeTable struct {
	idToType map[uint32]reflect.Type
	idToDef  map[uint32]string
	nextID   uint32
}

// NewDecodeTable creates an empty per-pass decode table.
func NewDecodeTable() *DecodeTable {
	return &DecodeTable{
		idToType: make(map[uint32]reflect.Type),
		idToDef:  make(map[uint32]string),
	}
}

// Reset clears the table for reuse across passes.
func (t *DecodeTable) Reset() {
	clear(t.idToType)
	clear(t.idToDef)
	t.nextID = 0
}

// Lookup returns the type previously assigned id, if any.
func (t *DecodeTable) Lookup(id uint32) (reflect.Type, bool) {
	typ, ok := t.idToType[id]
	return typ, ok
}

// Assign assigns the next id to typ and returns it.
func (t *DecodeTable) Assign(typ reflect.Type) uint32 {
	id := t.nextID
	t.idToType[t.nextID] = typ
	t.nextID++

	return id
}

// LookupDef returns the definition token previously assigned id, if any.
func (t *DecodeTable) LookupDef(id uint32) (string, bool) {
	def, ok := t.idToDef[id]
	return def, ok
}

// AssignDef assigns the next id to a composite definition token and
// returns it.
func (t *DecodeTable) AssignDef(token string) uint32 {
	id := t.nextID
	t.idToDef[t.nextID] = token
	t.nextID++

	return id
}

// ArgCount reports how many component type references recursively
// follow a composite definition token on the wire: 1 for $slice/$ptr,
// 2 for $map (key then element).
func ArgCount(definition string) int {
	switch definition {
	case DefMap:
		return 2
	case DefSlice, DefPtr:
		return 1
	default:
		return 0
	}
}

// Compose reconstructs the closed reflect.Type a definition token and
// its resolved argument types describe, inverting Decompose.
func Compose(definition string, args []reflect.Type) (reflect.Type, bool) {
	switch definition {
	case DefSlice:
		if len(args) != 1 {
			return nil, false
		}

		return reflect.SliceOf(args[0]), true

	case DefPtr:
		if len(args) != 1 {
			return nil, false
		}

		return reflect.PointerTo(args[0]), true

	case DefMap:
		if len(args) != 2 {
			return nil, false
		}

		return reflect.MapOf(args[0], args[1]), true

	default:
		return nil, false
	}
}

// --- process-wide, copy-on-write caches -----------------------------------

var (
	nameCache   atomic.Pointer[map[string]reflect.Type]
	nameCacheMu sync.Mutex

	snippetCache   atomic.Pointer[map[reflect.Type][]byte]
	snippetCacheMu sync.Mutex
)

func init() {
	empty := make(map[string]reflect.Type)
	nameCache.Store(&empty)

	emptySnippets := make(map[reflect.Type][]byte)
	snippetCache.Store(&emptySnippets)
}

// LookupName returns the cached type for name, if the process has already
// resolved it once.
func LookupName(name string) (reflect.Type, bool) {
	m := *nameCache.Load()
	typ, ok := m[name]

	return typ, ok
}

// RegisterName publishes a new name -> type mapping via copy-on-write: a
// full copy of the current map is built with the new entry, then
// atomically swapped in. Readers never observe a partially built map.
func RegisterName(name string, typ reflect.Type) {
	nameCacheMu.Lock()
	defer nameCacheMu.Unlock()

	current := *nameCache.Load()
	if _, exists := current[name]; exists {
		return
	}

	next := make(map[string]reflect.Type, len(current)+1)
	for k, v := range current {
		next[k] = v
	}

	next[name] = typ

	nameCache.Store(&next)
}

// PreEncodedSnippet returns the cached, already-serialized type-metadata
// byte snippet for typ, if one has been cached.
func PreEncodedSnippet(typ reflect.Type) ([]byte, bool) {
	m := *snippetCache.Load()
	snippet, ok := m[typ]

	return snippet, ok
}

// CachePreEncodedSnippet publishes a pre-encoded snippet for typ via the
// same copy-on-write discipline as RegisterName.
func CachePreEncodedSnippet(typ reflect.Type, snippet []byte) {
	snippetCacheMu.Lock()
	defer snippetCacheMu.Unlock()

	current := *snippetCache.Load()
	if _, exists := current[typ]; exists {
		return
	}

	next := make(map[reflect.Type][]byte, len(current)+1)
	for k, v := range current {
		next[k] = v
	}

	next[typ] = snippet

	snippetCache.Store(&next)
}

// Resolver resolves a fully-qualified type name to a reflect.Type. The
// archive core supplies one backed by a registry of types the host
// application has registered for deserialization.
type Resolver interface {
	Resolve(name string) (reflect.Type, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (reflect.Type, bool)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(name string) (reflect.Type, bool) {
	return f(name)
}

// VersionTolerantResolve attempts, in order: (1) the process-wide name
// cache, (2) the supplied exact resolver, (3) if tolerant is true,
// dropping everything before the last '.' qualifier and retrying the
// resolver with the simple name, (4) the fallback resolver if supplied.
// In strict mode (tolerant == false) only steps (1) and (2) run.
func VersionTolerantResolve(name string, exact Resolver, tolerant bool, fallback Resolver) (reflect.Type, error) {
	if typ, ok := LookupName(name); ok {
		return typ, nil
	}

	if exact != nil {
		if typ, ok := exact.Resolve(name); ok {
			RegisterName(name, typ)
			return typ, nil
		}
	}

	if tolerant {
		if simple := simpleName(name); simple != name && exact != nil {
			if typ, ok := exact.Resolve(simple); ok {
				RegisterName(name, typ)
				return typ, nil
			}
		}

		if fallback != nil {
			if typ, ok := fallback.Resolve(name); ok {
				RegisterName(name, typ)
				return typ, nil
			}
		}
	}

	return nil, fmt.Errorf("typetable: unresolved type %q", name)
}

// simpleName drops everything up to and including the last '.', mirroring
// the "drop assembly-version qualifier, match by simple name" fallback
// step of version-tolerant resolution.
func simpleName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}

	return name
}
