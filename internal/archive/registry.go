// Package archive implements the dispatch core: the top-level
// Writer/Reader state machines that decide, for each value, whether it is
// null, a back-reference, or a fresh object; write or read its type
// metadata through typetable; and hand control to the value's own
// Serialize/Deserialize method, including nested base-class archives.
//
// Reference: grounded on this module's ancestor store's top-level DB
// dispatch shape (db_apis.go's single entry points fanning out to
// per-component handlers) and internal/logging's namespaced-component
// logging convention, generalized to the serializer's per-type dispatch.
package archive

import (
	"reflect"
	"sync"

	"github.com/aalhour/binarchive/internal/typetable"
)

// Serializable is implemented by every type that can be written to and
// read from an Archive. MaxSupportedVersion is consulted by the encoder
// to stamp the archive with the writer's own version, and by the decoder
// to reject an archive stamped with a version newer than it understands.
type Serializable interface {
	MaxSupportedVersion() uint32
	SerializeArchive(w *Writer, version uint32) error
	DeserializeArchive(r *Reader, version uint32) error
}

// Factory constructs a zero-valued, addressable instance of a registered
// type, ready to have DeserializeArchive called on it.
type Factory func() Serializable

// Registry maps type names to factories and caches each type's declared
// MaxSupportedVersion. A Registry is safe for concurrent use: Register is
// expected to run during package init; Lookup runs on the hot path of
// every decode.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	externals map[string]ExternalSerializer
	versions  map[string]uint32
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		versions:  make(map[string]uint32),
	}
}

// Register associates name with factory. The factory is invoked once, at
// registration time, solely to read MaxSupportedVersion(); the instance
// produced by that call is discarded.
func (r *Registry) Register(name string, factory Factory) {
	sample := factory()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
	r.versions[name] = sample.MaxSupportedVersion()
}

// Lookup returns the factory registered for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]

	return f, ok
}

// MaxVersionFor returns the max version a registered type declared, or
// (0, false) if name was never registered.
func (r *Registry) MaxVersionFor(name string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.versions[name]

	return v, ok
}

// Resolve implements typetable.Resolver by looking up a registered
// factory's underlying type via reflection on a constructed sample. The
// writer sends a pointer type as $ptr followed by its element type's name,
// so a name that is not registered itself also matches the element type of
// a registered pointer type.
func (r *Registry) Resolve(name string) (reflect.Type, bool) {
	if f, ok := r.Lookup(name); ok {
		return reflect.TypeOf(f()), true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.factories {
		if typ := reflect.TypeOf(f()); typ.Kind() == reflect.Ptr && typetable.FullName(typ.Elem()) == name {
			return typ.Elem(), true
		}
	}

	return nil, false
}

// ExternalSerializer is the protocol a plug-in serializer must satisfy for
// a type that cannot implement Serializable itself — typically because it
// is a generic container or a type this module does not own (the spec's
// examples are a generic list and a UUID type). Unlike Serializable, the
// value being serialized is passed in rather than owning the method, so a
// single ExternalSerializer instance can be registered once per concrete
// type it handles.
//
// The core does not ship any built-in external serializers; registering
// one is entirely a host concern (see Registry.RegisterExternal).
type ExternalSerializer interface {
	MaxSupportedVersion() uint32
	SerializeExternal(w *Writer, version uint32, obj any) error
	DeserializeExternal(r *Reader) (any, error)
}

// RegisterExternal associates name with an ExternalSerializer plug-in,
// for types the process cannot or does not want to make Serializable
// directly. Consulted by WriteExternal/ReadExternal.
func (r *Registry) RegisterExternal(name string, ext ExternalSerializer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.externals == nil {
		r.externals = make(map[string]ExternalSerializer)
	}

	r.externals[name] = ext
	r.versions[name] = ext.MaxSupportedVersion()
}

// LookupExternal returns the ExternalSerializer registered for name, if any.
func (r *Registry) LookupExternal(name string) (ExternalSerializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.externals[name]

	return ext, ok
}

// VersionOverrides lets a host application pin an older wire version for
// a type even though the in-process type has moved on to a newer
// MaxSupportedVersion, so archives produced by this process can still be
// read by an older deployed reader during a rolling upgrade.
type VersionOverrides struct {
	mu        sync.RWMutex
	byTypeName map[string]uint32
}

// NewVersionOverrides creates an empty override table.
func NewVersionOverrides() *VersionOverrides {
	return &VersionOverrides{byTypeName: make(map[string]uint32)}
}

// Set pins version as the wire version written for typeName, overriding
// whatever MaxSupportedVersion() the registered type reports.
func (v *VersionOverrides) Set(typeName string, version uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.byTypeName[typeName] = version
}

// Get returns the pinned version for typeName, if any. A nil receiver
// (no overrides configured) always misses.
func (v *VersionOverrides) Get(typeName string) (uint32, bool) {
	if v == nil {
		return 0, false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	ver, ok := v.byTypeName[typeName]

	return ver, ok
}
