// Package binarchive implements a binary object-graph serializer: a
// LEB128-varint, payload-tag wire format with type-reference and
// object-reference interning, so that shared strings and cyclic or
// diamond-shaped object graphs round-trip without duplicating payloads
// or recursing forever.
//
// # Usage
//
// A value is serializable if it implements Serializable. Register every
// concrete type the process will decode with a Registry before
// deserializing archives that reference it:
//
//	reg := binarchive.NewRegistry()
//	reg.Register("myapp.Widget", func() binarchive.Serializable { return &Widget{} })
//
//	ser := binarchive.NewSerializer(reg)
//	if err := ser.Serialize(w, widget); err != nil { ... }
//
//	de := binarchive.NewDeserializer(reg)
//	obj, err := de.Deserialize(r)
//
// # Concurrency
//
// A Serializer or Deserializer is not safe for concurrent use by
// multiple goroutines; each pass over an archive needs its own instance,
// since the per-pass type/object tables are reset between uses, not
// locked. A Registry, once built, is safe for concurrent reads by many
// Serializers/Deserializers.
//
// Reference: grounded on this module's ancestor key/value store's top-level
// package doc (single entry points, concurrency contract stated up front,
// compatibility note at the bottom).
package binarchive

import (
	"io"

	"github.com/aalhour/binarchive/internal/archive"
	"github.com/aalhour/binarchive/internal/iosink"
)

// Serializable is implemented by every type binarchive can write to and
// read from an archive. MaxSupportedVersion is consulted by the encoder
// to stamp the archive with the writer's own version, and by the decoder
// to reject an archive stamped with a version newer than it understands.
type Serializable = archive.Serializable

// Registry maps registered type names to factories, for version-tolerant
// type resolution during decode. Build one at process startup and share
// it across every Serializer/Deserializer.
type Registry = archive.Registry

// Factory constructs a zero-valued, addressable Serializable, ready to
// have DeserializeArchive called on it.
type Factory = archive.Factory

// VersionOverrides lets a host pin an older wire version for a
// registered type, for rolling-upgrade compatibility. See
// WithVersionOverrides.
type VersionOverrides = archive.VersionOverrides

// Writer is the archive handle passed to Serializable.SerializeArchive; it
// exposes one write method per scalar/array kind plus WriteObject for
// nested values and WriteBaseArchive for base-class fields.
type Writer = archive.Writer

// Reader is the archive handle passed to Serializable.DeserializeArchive,
// symmetric to Writer.
type Reader = archive.Reader

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return archive.NewRegistry()
}

// NewVersionOverrides creates an empty version-override table.
func NewVersionOverrides() *VersionOverrides {
	return archive.NewVersionOverrides()
}

// Serializer writes object graphs to an archive. Construct one with
// NewSerializer; it is not safe for concurrent use.
type Serializer struct {
	cfg *Config
	reg *Registry
}

// NewSerializer creates a Serializer bound to reg, using cfg's
// settings, or NewConfig()'s defaults if cfg is nil.
func NewSerializer(reg *Registry, cfg ...*Config) *Serializer {
	return &Serializer{cfg: resolveConfig(cfg), reg: reg}
}

// Serialize writes obj's full object graph to w as one archive. An
// optional ctx value is made available to every nested Serializable via
// Writer.Context; at most one is accepted, mirroring the variadic
// default-option idiom the rest of this package's constructors use.
func (s *Serializer) Serialize(w io.Writer, obj Serializable, ctx ...any) error {
	out := iosink.NewBufferedWriter(256)

	opts := []archive.WriterOption{
		archive.WithWriteMode(s.cfg.mode),
		archive.WithVersionOverrides(s.cfg.versionOverrides),
		archive.WithWriterLogger(s.cfg.logger),
	}

	if len(ctx) > 0 {
		opts = append(opts, archive.WithWriterContext(ctx[0]))
	}

	writer := archive.NewWriter(out, s.reg, opts...)

	if err := writer.WriteObject(obj); err != nil {
		return err
	}

	_, err := w.Write(out.Bytes())

	return err
}

// Deserializer reads object graphs back from an archive. Construct one
// with NewDeserializer; it is not safe for concurrent use.
type Deserializer struct {
	cfg *Config
	reg *Registry
}

// NewDeserializer creates a Deserializer bound to reg, using cfg's
// settings, or NewConfig()'s defaults if cfg is nil.
func NewDeserializer(reg *Registry, cfg ...*Config) *Deserializer {
	return &Deserializer{cfg: resolveConfig(cfg), reg: reg}
}

// Deserialize reads one archive's object graph from r. An optional ctx
// value is made available to every nested Serializable via Reader.Context;
// at most one is accepted.
func (d *Deserializer) Deserialize(r io.Reader, ctx ...any) (Serializable, error) {
	opts := []archive.ReaderOption{
		archive.WithReadMode(d.cfg.mode),
		archive.WithTolerantResolution(d.cfg.tolerant),
		archive.WithFallbackResolver(d.cfg.fallbackResolver),
		archive.WithReaderLogger(d.cfg.logger),
	}

	if len(ctx) > 0 {
		opts = append(opts, archive.WithReaderContext(ctx[0]))
	}

	reader := archive.NewReader(iosink.NewStreamReader(r), d.reg, opts...)

	return reader.ReadObject()
}

func resolveConfig(cfg []*Config) *Config {
	if len(cfg) > 0 && cfg[0] != nil {
		return cfg[0]
	}

	return NewConfig()
}
