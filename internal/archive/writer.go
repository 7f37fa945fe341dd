package archive

import (
	"io"
	"reflect"

	"github.com/aalhour/binarchive/internal/arraycodec"
	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/leb128"
	"github.com/aalhour/binarchive/internal/logging"
	"github.com/aalhour/binarchive/internal/objtable"
	"github.com/aalhour/binarchive/internal/primitive"
	"github.com/aalhour/binarchive/internal/typetable"
	"github.com/aalhour/binarchive/internal/wireerr"
	"github.com/aalhour/binarchive/internal/wiretag"
)

// WriterOption configures a Writer at construction time.
type WriterOption func(*Writer)

// WithWriteMode selects the Speed/Size optimization mode used for every
// scalar and array value this Writer encodes.
func WithWriteMode(mode primitive.Mode) WriterOption {
	return func(w *Writer) { w.mode = mode }
}

// WithVersionOverrides pins wire versions per type name, overriding the
// type's own MaxSupportedVersion().
func WithVersionOverrides(overrides *VersionOverrides) WriterOption {
	return func(w *Writer) { w.overrides = overrides }
}

// WithWriterLogger attaches a component logger; it defaults to
// logging.Discard.
func WithWriterLogger(l logging.Logger) WriterOption {
	return func(w *Writer) { w.logger = logging.OrDefault(l) }
}

// WithWriterContext attaches an opaque, caller-supplied value that every
// nested Serializable's SerializeArchive can recover via Writer.Context,
// without threading an extra parameter through every SerializeArchive
// signature in the object graph.
func WithWriterContext(ctx any) WriterOption {
	return func(w *Writer) { w.ctx = ctx }
}

// Writer is the encode-side dispatch core: one Writer handles exactly one
// top-level object graph and its per-pass type/object interning tables.
// It is not safe for concurrent use; callers needing concurrent encodes
// should use one Writer per goroutine (see the package-level pooling
// guidance in internal/archive's Pool).
type Writer struct {
	out        iosink.Writer
	rawOut     iosink.Writer
	registry   *Registry
	types      *typetable.EncodeTable
	objs       *objtable.EncodeTable
	overrides  *VersionOverrides
	mode       primitive.Mode
	logger     logging.Logger
	ctx        any
	openStream *writeStreamView
}

// Context returns the opaque value passed via WithWriterContext, or nil
// if none was set. A custom serializer that needs pass-scoped state
// (a pending-writes accumulator, a symbol table, a caller identity) reads
// it here instead of threading an extra parameter through every
// SerializeArchive call in the graph.
func (w *Writer) Context() any { return w.ctx }

// NewWriter creates a Writer that appends encoded bytes to out, dispatching
// unregistered-type lookups against registry.
func NewWriter(out iosink.Writer, registry *Registry, opts ...WriterOption) *Writer {
	w := &Writer{
		rawOut:   out,
		registry: registry,
		types:    typetable.NewEncodeTable(),
		objs:     objtable.NewEncodeTable(),
		logger:   logging.Discard,
	}
	w.out = &writeStreamGuard{inner: out, owner: w}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Reset clears the per-pass type and object tables so the Writer can be
// reused for another independent object graph (the pooling contract).
func (w *Writer) Reset() {
	w.types.Reset()
	w.objs.Reset()
	w.openStream = nil
}

func (w *Writer) versionFor(typeName string, v Serializable) uint32 {
	if ver, ok := w.overrides.Get(typeName); ok {
		return ver
	}

	if ver, ok := w.registry.MaxVersionFor(typeName); ok {
		return ver
	}

	return v.MaxSupportedVersion()
}

func (w *Writer) writeTag(t wiretag.Tag) error {
	return w.out.WriteByte(byte(t))
}

// WriteObject is the top-level (and field-level, for nested object
// references) entry point: it resolves v to NullReference,
// AlreadySerialized, or a fresh Type/TypeID-prefixed ArchiveStart...
// ArchiveEnd block, then hands control to v.SerializeArchive.
func (w *Writer) WriteObject(v Serializable) error {
	rv := reflect.ValueOf(v)

	if v == nil || (rv.Kind() == reflect.Ptr && rv.IsNil()) {
		return w.writeTag(wiretag.NullReference)
	}

	isRef := rv.Kind() == reflect.Ptr

	if isRef {
		if id, ok := w.objs.LookupIdentity(rv.Pointer()); ok {
			if err := w.writeTag(wiretag.AlreadySerialized); err != nil {
				return err
			}

			_, err := leb128.WriteUnsigned(w.out, uint64(id))

			return err
		}

		w.objs.AssignIdentity(rv.Pointer())
	}

	typ := rv.Type()
	typeName := typetable.FullName(typ)

	if err := w.writeTypeRef(typ); err != nil {
		return err
	}

	version := w.versionFor(typeName, v)

	if _, err := leb128.WriteUnsigned(w.out, uint64(version)); err != nil {
		return err
	}

	if err := w.writeTag(wiretag.ArchiveStart); err != nil {
		return err
	}

	if err := v.SerializeArchive(w, version); err != nil {
		return err
	}

	return w.writeTag(wiretag.ArchiveEnd)
}

// WriteExternal writes obj through the ExternalSerializer registered under
// typeName, for a value that cannot implement Serializable itself. The
// wire shape is identical to WriteObject's: type metadata, then
// ArchiveStart plus version, then the plug-in's payload, then ArchiveEnd.
// obj's object id (if it is reference-typed) must already have been
// assigned by the caller, exactly as WriteObject assigns one before
// recursing into a container's elements.
func (w *Writer) WriteExternal(typeName string, typ reflect.Type, obj any) error {
	ext, ok := w.registry.LookupExternal(typeName)
	if !ok {
		return wireerr.NotSerializable(typeName)
	}

	if err := w.writeTypeRef(typ); err != nil {
		return err
	}

	version := ext.MaxSupportedVersion()
	if ver, ok := w.overrides.Get(typeName); ok {
		version = ver
	}

	if _, err := leb128.WriteUnsigned(w.out, uint64(version)); err != nil {
		return err
	}

	if err := w.writeTag(wiretag.ArchiveStart); err != nil {
		return err
	}

	if err := ext.SerializeExternal(w, version, obj); err != nil {
		return err
	}

	return w.writeTag(wiretag.ArchiveEnd)
}

// WriteBaseArchive nests base's fields into the archive currently being
// written for the derived object. Unlike WriteObject, it assigns no new
// object id (the base class shares the derived instance's identity) and
// writes no matching ArchiveEnd: the outer object's own ArchiveEnd closes
// both scopes, per BaseArchiveStart's wire contract.
func (w *Writer) WriteBaseArchive(base Serializable) error {
	if err := w.writeTag(wiretag.BaseArchiveStart); err != nil {
		return err
	}

	typ := reflect.TypeOf(base)
	typeName := typetable.FullName(typ)

	if err := w.writeTypeRef(typ); err != nil {
		return err
	}

	version := w.versionFor(typeName, base)

	if _, err := leb128.WriteUnsigned(w.out, uint64(version)); err != nil {
		return err
	}

	return base.SerializeArchive(w, version)
}

// writeTypeRef writes typ's type metadata, decomposing Go's built-in
// generic-like composite kinds (slice/pointer/map) into a definition
// token plus their component argument types, each emitted recursively
// through this same dance. A non-composite (atomic) type is the
// degenerate case: its own name is both its definition and its sole
// handle, looked up/assigned directly in the per-pass type table.
func (w *Writer) writeTypeRef(typ reflect.Type) error {
	d := typetable.Decompose(typ)

	if len(d.Args) == 0 {
		return w.writeTypeHandle(typ, d.Definition)
	}

	if err := w.writeDefinition(d.Definition); err != nil {
		return err
	}

	for _, arg := range d.Args {
		if err := w.writeTypeRef(arg); err != nil {
			return err
		}
	}

	return nil
}

// writeTypeHandle writes an atomic (non-composite) type as a TypeID
// back-reference if this pass has already introduced it, else as a
// fresh Type tag plus its pre-encoded name snippet, recording it for
// subsequent TypeID references.
func (w *Writer) writeTypeHandle(typ reflect.Type, name string) error {
	if id, ok := w.types.Lookup(typ); ok {
		if err := w.writeTag(wiretag.TypeID); err != nil {
			return err
		}

		_, err := leb128.WriteUnsigned(w.out, uint64(id))

		return err
	}

	if err := w.writeTag(wiretag.Type); err != nil {
		return err
	}

	if _, err := w.out.Write(typeNameSnippet(typ, name)); err != nil {
		return err
	}

	w.types.Assign(typ)

	return nil
}

// writeDefinition writes a composite type's definition token ($slice,
// $ptr, $map) as a TypeID back-reference if this pass has already
// introduced it, else as a fresh Type tag plus the token text, sharing
// its id sequence with writeTypeHandle's per-type ids so a later
// back-reference unambiguously resolves to one or the other.
func (w *Writer) writeDefinition(token string) error {
	if id, ok := w.types.LookupDef(token); ok {
		if err := w.writeTag(wiretag.TypeID); err != nil {
			return err
		}

		_, err := leb128.WriteUnsigned(w.out, uint64(id))

		return err
	}

	if err := w.writeTag(wiretag.Type); err != nil {
		return err
	}

	if err := primitive.WriteString(w.out, token); err != nil {
		return err
	}

	w.types.AssignDef(token)

	return nil
}

// typeNameSnippet returns the pre-encoded Type-tag-less payload (String
// tag, ULEB128 length, UTF-8 bytes) for typ's name, building and caching
// it process-wide on first use so repeated passes over the same type
// across the process's lifetime never re-walk reflect.Type.String().
func typeNameSnippet(typ reflect.Type, name string) []byte {
	if snippet, ok := typetable.PreEncodedSnippet(typ); ok {
		return snippet
	}

	snippet := leb128.AppendUnsigned([]byte{byte(wiretag.String)}, uint64(len(name)))
	snippet = append(snippet, name...)

	typetable.CachePreEncodedSnippet(typ, snippet)

	return snippet
}

// --- scalar field writers --------------------------------------------------

func (w *Writer) WriteInt8(v int8) error   { return primitive.WriteInt8(w.out, v) }
func (w *Writer) WriteUInt8(v uint8) error { return primitive.WriteUInt8(w.out, v) }

func (w *Writer) WriteInt16(v int16) error   { return primitive.WriteInt16(w.out, v, w.mode) }
func (w *Writer) WriteUInt16(v uint16) error { return primitive.WriteUInt16(w.out, v, w.mode) }
func (w *Writer) WriteChar(v uint16) error   { return primitive.WriteChar(w.out, v, w.mode) }

func (w *Writer) WriteInt32(v int32) error   { return primitive.WriteInt32(w.out, v, w.mode) }
func (w *Writer) WriteUInt32(v uint32) error { return primitive.WriteUInt32(w.out, v, w.mode) }

func (w *Writer) WriteInt64(v int64) error   { return primitive.WriteInt64(w.out, v, w.mode) }
func (w *Writer) WriteUInt64(v uint64) error { return primitive.WriteUInt64(w.out, v, w.mode) }

func (w *Writer) WriteFloat32(v float32) error { return primitive.WriteFloat32(w.out, v) }
func (w *Writer) WriteFloat64(v float64) error { return primitive.WriteFloat64(w.out, v) }

func (w *Writer) WriteBool(v bool) error { return primitive.WriteBool(w.out, v, w.mode) }

func (w *Writer) WriteDecimal(v primitive.Decimal) error { return primitive.WriteDecimal(w.out, v) }
func (w *Writer) WriteDateTime(v primitive.DateTime) error {
	return primitive.WriteDateTime(w.out, v)
}

// WriteString value-interns v: a string equal to one already written in
// this pass is emitted as an AlreadySerialized back-reference instead of
// being repeated on the wire.
func (w *Writer) WriteString(v string) error {
	if id, ok := w.objs.LookupString(v); ok {
		if err := w.writeTag(wiretag.AlreadySerialized); err != nil {
			return err
		}

		_, err := leb128.WriteUnsigned(w.out, uint64(id))

		return err
	}

	w.objs.AssignString(v)

	return primitive.WriteString(w.out, v)
}

// WriteBuffer writes an opaque, non-interned byte span.
func (w *Writer) WriteBuffer(v []byte) error {
	if err := w.writeTag(wiretag.Buffer); err != nil {
		return err
	}

	if _, err := leb128.WriteUnsigned(w.out, uint64(len(v))); err != nil {
		return err
	}

	_, err := w.out.Write(v)

	return err
}

// WriteStream opens an n-byte stream view sharing WriteBuffer's wire
// shape (a Buffer tag and ULEB128 length), but letting the caller supply
// the payload incrementally across any number of io.Writer.Write calls
// instead of assembling one contiguous []byte up front. At most one
// stream view may be open on a Writer at a time; any other Write* call
// on the Writer implicitly closes a still-open view by zero-padding
// whatever bytes it never received, so the length already committed to
// the wire stays accurate.
func (w *Writer) WriteStream(n int) (io.Writer, error) {
	if err := w.closeWriteStream(); err != nil {
		return nil, err
	}

	if err := w.writeTag(wiretag.Buffer); err != nil {
		return nil, err
	}

	if _, err := leb128.WriteUnsigned(w.out, uint64(n)); err != nil {
		return nil, err
	}

	s := &writeStreamView{w: w, remaining: n}
	w.openStream = s

	return s, nil
}

func (w *Writer) closeWriteStream() error {
	s := w.openStream
	if s == nil {
		return nil
	}

	w.openStream = nil

	if s.remaining <= 0 {
		return nil
	}

	_, err := w.rawOut.Write(make([]byte, s.remaining))
	s.remaining = 0

	return err
}

// writeStreamView is the bounded io.Writer WriteStream returns; it
// writes directly to the Writer's underlying sink, bypassing the
// auto-close guard that every other Write* call goes through.
type writeStreamView struct {
	w         *Writer
	remaining int
}

func (s *writeStreamView) Write(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.ErrShortWrite
	}

	if len(p) > s.remaining {
		p = p[:s.remaining]
	}

	n, err := s.w.rawOut.Write(p)
	s.remaining -= n

	if s.remaining == 0 {
		s.w.openStream = nil
	}

	return n, err
}

// writeStreamGuard wraps the Writer's raw sink: any write reaching it
// implicitly closes a still-open stream view first, per WriteStream's
// contract. The open stream view itself writes straight to rawOut,
// never through this guard.
type writeStreamGuard struct {
	inner iosink.Writer
	owner *Writer
}

func (g *writeStreamGuard) Write(p []byte) (int, error) {
	if err := g.owner.closeWriteStream(); err != nil {
		return 0, err
	}

	return g.inner.Write(p)
}

func (g *writeStreamGuard) WriteByte(c byte) error {
	if err := g.owner.closeWriteStream(); err != nil {
		return err
	}

	return g.inner.WriteByte(c)
}

func (g *writeStreamGuard) Span(minSize int) []byte {
	_ = g.owner.closeWriteStream()

	return g.inner.Span(minSize)
}

func (g *writeStreamGuard) Advance(n int) { g.inner.Advance(n) }

func (g *writeStreamGuard) Bytes() []byte { return g.inner.Bytes() }

// WriteEnum writes an enumeration value: the underlying type's metadata
// (via the same Type/TypeID dedup as WriteObject), then the Enum tag and
// its SLEB128-encoded underlying value.
func (w *Writer) WriteEnum(sample any, underlying int64) error {
	typ := reflect.TypeOf(sample)

	if err := w.writeTypeRef(typ); err != nil {
		return err
	}

	if err := w.writeTag(wiretag.Enum); err != nil {
		return err
	}

	_, err := leb128.WriteSigned(w.out, underlying)

	return err
}

// WriteType writes typ as a first-class value: a TypeObject tag followed
// by its type metadata through the same Type/TypeID dedup writeTypeRef
// uses for every other type reference a field or array carries, so the
// same type written twice in one pass costs only a TypeID back-reference
// the second time.
func (w *Writer) WriteType(typ reflect.Type) error {
	if err := w.writeTag(wiretag.TypeObject); err != nil {
		return err
	}

	return w.writeTypeRef(typ)
}

// --- array field writers ---------------------------------------------------

func (w *Writer) WriteInt32Array(values []int32) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.Int32); err != nil {
		return err
	}

	return arraycodec.WriteSignedElements(w.out, values, 4, w.mode)
}

func (w *Writer) WriteInt64Array(values []int64) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.Int64); err != nil {
		return err
	}

	return arraycodec.WriteSignedElements(w.out, values, 8, w.mode)
}

func (w *Writer) WriteUInt32Array(values []uint32) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.UInt32); err != nil {
		return err
	}

	return arraycodec.WriteUnsignedElements(w.out, values, 4, w.mode)
}

func (w *Writer) WriteUInt64Array(values []uint64) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.UInt64); err != nil {
		return err
	}

	return arraycodec.WriteUnsignedElements(w.out, values, 8, w.mode)
}

func (w *Writer) WriteFloat64Array(values []float64) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.Float64); err != nil {
		return err
	}

	return arraycodec.WriteFloat64Elements(w.out, values)
}

func (w *Writer) WriteBoolArray(values []bool) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.BoolNative); err != nil {
		return err
	}

	return arraycodec.WriteBoolElements(w.out, values, w.mode)
}

func (w *Writer) WriteByteArray(values []byte) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.UInt8); err != nil {
		return err
	}

	return arraycodec.WriteByteElements(w.out, values)
}

// WriteStringArray writes a length followed by each element through
// WriteString, so repeated strings across the array (and the rest of the
// pass) are still back-reference interned.
func (w *Writer) WriteStringArray(values []string) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.String); err != nil {
		return err
	}

	if _, err := leb128.WriteUnsigned(w.out, uint64(len(values))); err != nil {
		return err
	}

	for _, v := range values {
		if err := w.WriteString(v); err != nil {
			return err
		}
	}

	return nil
}

// WriteObjectArray writes a length followed by each element through
// WriteObject, so nulls, back-references, and nested graphs inside the
// array behave exactly as they would for a scalar object field.
func (w *Writer) WriteObjectArray(values []Serializable) error {
	if err := w.arrayHeader(wiretag.ArraySZ, wiretag.TypeObject); err != nil {
		return err
	}

	if _, err := leb128.WriteUnsigned(w.out, uint64(len(values))); err != nil {
		return err
	}

	for _, v := range values {
		if err := w.WriteObject(v); err != nil {
			return err
		}
	}

	return nil
}

// WriteInt32ArrayMD writes a non-zero-based/multidimensional int32 array:
// shape first (dimension count, then each dimension's lower bound and
// length), then the flattened row-major elements via the same codec
// SZARRAY uses. The caller is responsible for values being in row-major
// order and len(values) == arraycodec.TotalElements(dims).
func (w *Writer) WriteInt32ArrayMD(dims []arraycodec.Dim, values []int32) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.Int32); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteSignedElements(w.out, values, 4, w.mode)
}

// WriteInt64ArrayMD is WriteInt32ArrayMD's int64 counterpart.
func (w *Writer) WriteInt64ArrayMD(dims []arraycodec.Dim, values []int64) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.Int64); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteSignedElements(w.out, values, 8, w.mode)
}

// WriteUInt32ArrayMD is WriteInt32ArrayMD's uint32 counterpart.
func (w *Writer) WriteUInt32ArrayMD(dims []arraycodec.Dim, values []uint32) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.UInt32); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteUnsignedElements(w.out, values, 4, w.mode)
}

// WriteUInt64ArrayMD is WriteInt32ArrayMD's uint64 counterpart.
func (w *Writer) WriteUInt64ArrayMD(dims []arraycodec.Dim, values []uint64) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.UInt64); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteUnsignedElements(w.out, values, 8, w.mode)
}

// WriteFloat64ArrayMD is WriteInt32ArrayMD's float64 counterpart.
func (w *Writer) WriteFloat64ArrayMD(dims []arraycodec.Dim, values []float64) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.Float64); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteFloat64Elements(w.out, values)
}

// WriteBoolArrayMD is WriteInt32ArrayMD's bool counterpart.
func (w *Writer) WriteBoolArrayMD(dims []arraycodec.Dim, values []bool) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.BoolNative); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteBoolElements(w.out, values, w.mode)
}

// WriteByteArrayMD is WriteInt32ArrayMD's byte counterpart.
func (w *Writer) WriteByteArrayMD(dims []arraycodec.Dim, values []byte) error {
	if err := w.arrayHeader(wiretag.ArrayMD, wiretag.UInt8); err != nil {
		return err
	}

	if err := w.writeDims(dims); err != nil {
		return err
	}

	return arraycodec.WriteByteElements(w.out, values)
}

func (w *Writer) arrayHeader(shape, elementKind wiretag.Tag) error {
	if err := w.writeTag(shape); err != nil {
		return err
	}

	return w.writeTag(elementKind)
}

func (w *Writer) writeDims(dims []arraycodec.Dim) error {
	if _, err := leb128.WriteUnsigned(w.out, uint64(len(dims))); err != nil {
		return err
	}

	for _, d := range dims {
		if _, err := leb128.WriteSigned(w.out, d.Lower); err != nil {
			return err
		}

		if _, err := leb128.WriteUnsigned(w.out, uint64(d.Length)); err != nil {
			return err
		}
	}

	return nil
}
