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

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*Reader)

// WithReadMode sets the Speed/Size mode used to decode native-vs-LEB128
// array element choices. It must match the mode the writer used.
func WithReadMode(mode primitive.Mode) ReaderOption {
	return func(r *Reader) { r.mode = mode }
}

// WithTolerantResolution enables version-tolerant type-name resolution:
// a name that doesn't resolve exactly is retried by its simple (unqualified)
// form, then against an optional fallback resolver.
func WithTolerantResolution(tolerant bool) ReaderOption {
	return func(r *Reader) { r.tolerant = tolerant }
}

// WithFallbackResolver supplies a last-resort type resolver consulted
// only when WithTolerantResolution is enabled and every other step missed.
func WithFallbackResolver(fallback typetable.Resolver) ReaderOption {
	return func(r *Reader) { r.fallback = fallback }
}

// WithReaderLogger attaches a component logger; it defaults to
// logging.Discard.
func WithReaderLogger(l logging.Logger) ReaderOption {
	return func(r *Reader) { r.logger = logging.OrDefault(l) }
}

// WithReaderContext attaches an opaque, caller-supplied value that every
// nested Serializable's DeserializeArchive can recover via Reader.Context.
func WithReaderContext(ctx any) ReaderOption {
	return func(r *Reader) { r.ctx = ctx }
}

// Reader is the decode-side dispatch core, symmetric to Writer.
type Reader struct {
	in         iosink.Reader
	rawIn      iosink.Reader
	registry   *Registry
	types      *typetable.DecodeTable
	objs       *objtable.DecodeTable
	mode       primitive.Mode
	tolerant   bool
	fallback   typetable.Resolver
	logger     logging.Logger
	ctx        any
	openStream *readStreamView
}

// Context returns the opaque value passed via WithReaderContext, or nil
// if none was set. Symmetric to Writer.Context.
func (r *Reader) Context() any { return r.ctx }

// NewReader creates a Reader that decodes from in, resolving unregistered
// types and factories against registry.
func NewReader(in iosink.Reader, registry *Registry, opts ...ReaderOption) *Reader {
	r := &Reader{
		rawIn:    in,
		registry: registry,
		types:    typetable.NewDecodeTable(),
		objs:     objtable.NewDecodeTable(),
		logger:   logging.Discard,
	}
	r.in = &readStreamGuard{inner: in, owner: r}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reset clears the per-pass type and object tables for reuse.
func (r *Reader) Reset() {
	r.types.Reset()
	r.objs.Reset()
	r.openStream = nil
}

func readTag(in iosink.Reader) (wiretag.Tag, error) {
	b, err := in.ReadByte()
	if err != nil {
		return 0, wireerr.ErrUnexpectedEOF
	}

	return wiretag.Tag(b), nil
}

func expectTag(in iosink.Reader, want wiretag.Tag) error {
	got, err := readTag(in)
	if err != nil {
		return err
	}

	if got != want {
		return wireerr.UnexpectedTag(want, got)
	}

	return nil
}

func mapLEBErr(err error) error {
	switch err {
	case leb128.ErrIncomplete:
		return wireerr.ErrUnexpectedEOF
	case leb128.ErrOverlong:
		return wireerr.ErrOverlongLEB128
	default:
		return err
	}
}

// readTypeRef consumes the payload of a Type or TypeID tag (the tag byte
// itself has already been read by the caller) and returns the resolved
// reflect.Type plus the canonical (FullName) type name used as the
// Registry lookup key — recomputed from the resolved type, not the raw
// wire string, so a version-tolerant simple-name match still resolves to
// the right registry entry. A composite type (slice/pointer/map) is
// reconstructed by recursively reading its decomposed argument types,
// mirroring Writer.writeTypeRef.
func (r *Reader) readTypeRef(tag wiretag.Tag) (reflect.Type, string, error) {
	if tag == wiretag.TypeID {
		id, err := leb128.ReadUnsigned64(r.in)
		if err != nil {
			return nil, "", mapLEBErr(err)
		}

		if typ, ok := r.types.Lookup(uint32(id)); ok {
			return typ, typetable.FullName(typ), nil
		}

		if def, ok := r.types.LookupDef(uint32(id)); ok {
			typ, err := r.readComposite(def)
			if err != nil {
				return nil, "", err
			}

			return typ, typetable.FullName(typ), nil
		}

		return nil, "", wireerr.DanglingBackReference(uint32(id))
	}

	if err := expectTag(r.in, wiretag.String); err != nil {
		return nil, "", err
	}

	name, err := primitive.ReadString(r.in)
	if err != nil {
		return nil, "", err
	}

	switch name {
	case typetable.DefSlice, typetable.DefPtr, typetable.DefMap:
		r.types.AssignDef(name)

		typ, err := r.readComposite(name)
		if err != nil {
			return nil, "", err
		}

		return typ, typetable.FullName(typ), nil

	default:
		typ, err := typetable.VersionTolerantResolve(name, r.registry, r.tolerant, r.fallback)
		if err != nil {
			return nil, "", wireerr.UnknownType(name)
		}

		canonical := typetable.FullName(typ)
		if canonical != name {
			r.logger.Warnf(logging.NSTypeTable+"resolved %q to %q via version-tolerant fallback", name, canonical)
		}

		r.types.Assign(typ)

		return typ, canonical, nil
	}
}

// readComposite reads the component type references a composite
// definition token requires (one for $slice/$ptr, two for $map) and
// reconstructs the closed reflect.Type they describe.
func (r *Reader) readComposite(definition string) (reflect.Type, error) {
	args := make([]reflect.Type, typetable.ArgCount(definition))

	for i := range args {
		tag, err := readTag(r.in)
		if err != nil {
			return nil, err
		}

		arg, _, err := r.readTypeRef(tag)
		if err != nil {
			return nil, err
		}

		args[i] = arg
	}

	typ, ok := typetable.Compose(definition, args)
	if !ok {
		return nil, wireerr.UnknownType(definition)
	}

	return typ, nil
}

// ReadType reads a value written by Writer.WriteType.
func (r *Reader) ReadType() (reflect.Type, error) {
	if err := expectTag(r.in, wiretag.TypeObject); err != nil {
		return nil, err
	}

	tag, err := readTag(r.in)
	if err != nil {
		return nil, err
	}

	typ, _, err := r.readTypeRef(tag)

	return typ, err
}

// ReadObject is the top-level (and field-level) entry point, symmetric to
// Writer.WriteObject.
func (r *Reader) ReadObject() (Serializable, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return nil, err
	}

	switch tag {
	case wiretag.NullReference:
		return nil, nil

	case wiretag.AlreadySerialized:
		id, err := leb128.ReadUnsigned64(r.in)
		if err != nil {
			return nil, mapLEBErr(err)
		}

		obj, ok := r.objs.Lookup(uint32(id))
		if !ok {
			r.logger.Errorf(logging.NSObjTable+"dangling back-reference to object id %d", id)
			return nil, wireerr.DanglingBackReference(uint32(id))
		}

		s, ok := obj.(Serializable)
		if !ok {
			return nil, wireerr.TypeMismatch("Serializable", "object")
		}

		return s, nil

	case wiretag.Type, wiretag.TypeID:
		_, typeName, err := r.readTypeRef(tag)
		if err != nil {
			return nil, err
		}

		factory, ok := r.registry.Lookup(typeName)
		if !ok {
			r.logger.Errorf(logging.NSArchive+"no factory registered for %s", typeName)
			return nil, wireerr.UnknownType(typeName)
		}

		obj := factory()
		r.objs.Assign(obj)

		version64, err := leb128.ReadUnsigned64(r.in)
		if err != nil {
			return nil, mapLEBErr(err)
		}

		version := uint32(version64)

		if maxVer, ok := r.registry.MaxVersionFor(typeName); ok && version > maxVer {
			r.logger.Warnf(logging.NSArchive+"%s: archive version %d exceeds supported %d", typeName, version, maxVer)
			return nil, wireerr.VersionTooNew(typeName, version, maxVer)
		}

		r.logger.Debugf(logging.NSArchive+"decoding %s version %d", typeName, version)

		if err := expectTag(r.in, wiretag.ArchiveStart); err != nil {
			return nil, err
		}

		if err := obj.DeserializeArchive(r, version); err != nil {
			return nil, err
		}

		if err := expectTag(r.in, wiretag.ArchiveEnd); err != nil {
			return nil, err
		}

		return obj, nil

	default:
		return nil, wireerr.UnexpectedTag(wiretag.Type, tag)
	}
}

// ReadExternal reads what WriteExternal wrote: type metadata (already
// consumed by the caller via readTypeRef, since the caller must inspect
// typeName before knowing whether to route to ReadExternal or the normal
// factory-based path) followed by ArchiveStart, version, the plug-in's
// payload, and ArchiveEnd.
func (r *Reader) ReadExternal(typeName string) (any, error) {
	ext, ok := r.registry.LookupExternal(typeName)
	if !ok {
		return nil, wireerr.NotSerializable(typeName)
	}

	version64, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	version := uint32(version64)
	if version > ext.MaxSupportedVersion() {
		return nil, wireerr.VersionTooNew(typeName, version, ext.MaxSupportedVersion())
	}

	if err := expectTag(r.in, wiretag.ArchiveStart); err != nil {
		return nil, err
	}

	obj, err := ext.DeserializeExternal(r)
	if err != nil {
		return nil, err
	}

	if err := expectTag(r.in, wiretag.ArchiveEnd); err != nil {
		return nil, err
	}

	return obj, nil
}

// ReadBaseArchive reads the nested base-class block written by
// Writer.WriteBaseArchive: no object id, no matching ArchiveEnd of its
// own (the derived object's ArchiveEnd closes it).
func (r *Reader) ReadBaseArchive(base Serializable) error {
	if err := expectTag(r.in, wiretag.BaseArchiveStart); err != nil {
		return err
	}

	// The caller's base argument fixes the type this block must hold, so
	// its element type's name resolves even when only the derived type is
	// registered.
	wantType := reflect.TypeOf(base)
	if wantType.Kind() == reflect.Ptr {
		typetable.RegisterName(typetable.FullName(wantType.Elem()), wantType.Elem())
	}

	tag, err := readTag(r.in)
	if err != nil {
		return err
	}

	baseType, typeName, err := r.readTypeRef(tag)
	if err != nil {
		return err
	}

	if baseType != wantType {
		return wireerr.TypeMismatch(typetable.FullName(wantType), typeName)
	}

	version64, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return mapLEBErr(err)
	}

	version := uint32(version64)

	if maxVer, ok := r.registry.MaxVersionFor(typeName); ok && version > maxVer {
		return wireerr.VersionTooNew(typeName, version, maxVer)
	}

	return base.DeserializeArchive(r, version)
}

// --- scalar field readers ---------------------------------------------------

func (r *Reader) ReadInt8() (int8, error) {
	if err := expectTag(r.in, wiretag.Int8); err != nil {
		return 0, err
	}

	return primitive.ReadInt8(r.in)
}

func (r *Reader) ReadUInt8() (uint8, error) {
	if err := expectTag(r.in, wiretag.UInt8); err != nil {
		return 0, err
	}

	return primitive.ReadUInt8(r.in)
}

func (r *Reader) ReadInt16() (int16, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadInt16(r.in, tag)
}

func (r *Reader) ReadUInt16() (uint16, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadUInt16(r.in, tag)
}

func (r *Reader) ReadChar() (uint16, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadChar(r.in, tag)
}

func (r *Reader) ReadInt32() (int32, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadInt32(r.in, tag)
}

func (r *Reader) ReadUInt32() (uint32, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadUInt32(r.in, tag)
}

func (r *Reader) ReadInt64() (int64, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadInt64(r.in, tag)
}

func (r *Reader) ReadUInt64() (uint64, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return 0, err
	}

	return primitive.ReadUInt64(r.in, tag)
}

func (r *Reader) ReadFloat32() (float32, error) {
	if err := expectTag(r.in, wiretag.Float32); err != nil {
		return 0, err
	}

	return primitive.ReadFloat32(r.in)
}

func (r *Reader) ReadFloat64() (float64, error) {
	if err := expectTag(r.in, wiretag.Float64); err != nil {
		return 0, err
	}

	return primitive.ReadFloat64(r.in)
}

func (r *Reader) ReadBool() (bool, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return false, err
	}

	return primitive.ReadBool(r.in, tag)
}

func (r *Reader) ReadDecimal() (primitive.Decimal, error) {
	if err := expectTag(r.in, wiretag.Decimal); err != nil {
		return primitive.Decimal{}, err
	}

	return primitive.ReadDecimal(r.in)
}

func (r *Reader) ReadDateTime() (primitive.DateTime, error) {
	if err := expectTag(r.in, wiretag.DateTime); err != nil {
		return primitive.DateTime{}, err
	}

	return primitive.ReadDateTime(r.in)
}

// ReadString reads a value written by Writer.WriteString, resolving
// AlreadySerialized back-references against the value-interned string
// table.
func (r *Reader) ReadString() (string, error) {
	tag, err := readTag(r.in)
	if err != nil {
		return "", err
	}

	if tag == wiretag.AlreadySerialized {
		id, err := leb128.ReadUnsigned64(r.in)
		if err != nil {
			return "", mapLEBErr(err)
		}

		obj, ok := r.objs.Lookup(uint32(id))
		if !ok {
			return "", wireerr.DanglingBackReference(uint32(id))
		}

		s, ok := obj.(string)
		if !ok {
			return "", wireerr.TypeMismatch("string", "object")
		}

		return s, nil
	}

	if tag != wiretag.String {
		return "", wireerr.UnexpectedTag(wiretag.String, tag)
	}

	s, err := primitive.ReadString(r.in)
	if err != nil {
		return "", err
	}

	r.objs.Assign(s)

	return s, nil
}

func (r *Reader) ReadBuffer() ([]byte, error) {
	if err := expectTag(r.in, wiretag.Buffer); err != nil {
		return nil, err
	}

	n, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	buf := make([]byte, n)
	if _, err := readFullInto(r.in, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// ReadStream reads the header Writer.WriteStream wrote (the same Buffer
// tag and ULEB128 length as ReadBuffer) and returns an io.Reader bounded
// to the declared length, so the caller can consume it incrementally
// instead of requiring the whole span to be read into one []byte up
// front. The caller need not read the view to completion: at most one
// stream view is open on a Reader at a time, and any other Read* call
// implicitly closes a still-open view by skipping whatever bytes were
// never read, so the next value starts at the correct offset.
func (r *Reader) ReadStream() (io.Reader, error) {
	if err := r.closeReadStream(); err != nil {
		return nil, err
	}

	if err := expectTag(r.in, wiretag.Buffer); err != nil {
		return nil, err
	}

	n, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	s := &readStreamView{r: r, remaining: int(n)}
	r.openStream = s

	return s, nil
}

func (r *Reader) closeReadStream() error {
	s := r.openStream
	if s == nil {
		return nil
	}

	r.openStream = nil

	if s.remaining <= 0 {
		return nil
	}

	err := r.rawIn.Skip(int64(s.remaining))
	s.remaining = 0

	return err
}

// readStreamView is the bounded io.Reader ReadStream returns; it reads
// directly from the Reader's underlying source, bypassing the
// auto-close guard every other Read* call goes through.
type readStreamView struct {
	r         *Reader
	remaining int
}

func (s *readStreamView) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}

	if len(p) > s.remaining {
		p = p[:s.remaining]
	}

	n, err := s.r.rawIn.Read(p)
	s.remaining -= n

	if s.remaining == 0 {
		s.r.openStream = nil
	}

	return n, err
}

// readStreamGuard wraps the Reader's raw source: any read reaching it
// implicitly closes a still-open stream view first, per ReadStream's
// contract. The open stream view itself reads straight from rawIn,
// never through this guard.
type readStreamGuard struct {
	inner iosink.Reader
	owner *Reader
}

func (g *readStreamGuard) Read(p []byte) (int, error) {
	if err := g.owner.closeReadStream(); err != nil {
		return 0, err
	}

	return g.inner.Read(p)
}

func (g *readStreamGuard) ReadByte() (byte, error) {
	if err := g.owner.closeReadStream(); err != nil {
		return 0, err
	}

	return g.inner.ReadByte()
}

func (g *readStreamGuard) Skip(n int64) error {
	if err := g.owner.closeReadStream(); err != nil {
		return err
	}

	return g.inner.Skip(n)
}

// ReadEnum reads the type metadata and underlying SLEB128 value written
// by Writer.WriteEnum. It returns the resolved type name alongside the
// value so the caller can validate it matches the expected enum type.
func (r *Reader) ReadEnum() (typeName string, underlying int64, err error) {
	tag, err := readTag(r.in)
	if err != nil {
		return "", 0, err
	}

	_, typeName, err = r.readTypeRef(tag)
	if err != nil {
		return "", 0, err
	}

	if err := expectTag(r.in, wiretag.Enum); err != nil {
		return "", 0, err
	}

	underlying, err = leb128.ReadSigned64(r.in)
	if err != nil {
		return "", 0, mapLEBErr(err)
	}

	return typeName, underlying, nil
}

// --- array field readers -----------------------------------------------------

func (r *Reader) ReadInt32Array() ([]int32, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.Int32); err != nil {
		return nil, err
	}

	return arraycodec.ReadSignedElements[int32](r.in, 4, r.mode)
}

func (r *Reader) ReadInt64Array() ([]int64, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.Int64); err != nil {
		return nil, err
	}

	return arraycodec.ReadSignedElements[int64](r.in, 8, r.mode)
}

func (r *Reader) ReadUInt32Array() ([]uint32, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.UInt32); err != nil {
		return nil, err
	}

	return arraycodec.ReadUnsignedElements[uint32](r.in, 4, r.mode)
}

func (r *Reader) ReadUInt64Array() ([]uint64, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.UInt64); err != nil {
		return nil, err
	}

	return arraycodec.ReadUnsignedElements[uint64](r.in, 8, r.mode)
}

func (r *Reader) ReadFloat64Array() ([]float64, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.Float64); err != nil {
		return nil, err
	}

	return arraycodec.ReadFloat64Elements(r.in)
}

func (r *Reader) ReadBoolArray() ([]bool, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.BoolNative); err != nil {
		return nil, err
	}

	return arraycodec.ReadBoolElements(r.in, r.mode)
}

func (r *Reader) ReadByteArray() ([]byte, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.UInt8); err != nil {
		return nil, err
	}

	return arraycodec.ReadByteElements(r.in)
}

func (r *Reader) ReadStringArray() ([]string, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.String); err != nil {
		return nil, err
	}

	n, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	values := make([]string, n)

	for i := range values {
		v, err := r.ReadString()
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}

func (r *Reader) ReadObjectArray() ([]Serializable, error) {
	if err := r.expectArrayHeader(wiretag.ArraySZ, wiretag.TypeObject); err != nil {
		return nil, err
	}

	n, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	values := make([]Serializable, n)

	for i := range values {
		v, err := r.ReadObject()
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}

// ReadInt32ArrayMD reads what Writer.WriteInt32ArrayMD wrote, returning
// the dimension shape alongside the flattened row-major elements.
func (r *Reader) ReadInt32ArrayMD() ([]arraycodec.Dim, []int32, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.Int32); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadSignedElements[int32](r.in, 4, r.mode)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadInt64ArrayMD reads what Writer.WriteInt64ArrayMD wrote.
func (r *Reader) ReadInt64ArrayMD() ([]arraycodec.Dim, []int64, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.Int64); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadSignedElements[int64](r.in, 8, r.mode)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadUInt32ArrayMD reads what Writer.WriteUInt32ArrayMD wrote.
func (r *Reader) ReadUInt32ArrayMD() ([]arraycodec.Dim, []uint32, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.UInt32); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadUnsignedElements[uint32](r.in, 4, r.mode)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadUInt64ArrayMD reads what Writer.WriteUInt64ArrayMD wrote.
func (r *Reader) ReadUInt64ArrayMD() ([]arraycodec.Dim, []uint64, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.UInt64); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadUnsignedElements[uint64](r.in, 8, r.mode)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadFloat64ArrayMD reads what Writer.WriteFloat64ArrayMD wrote.
func (r *Reader) ReadFloat64ArrayMD() ([]arraycodec.Dim, []float64, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.Float64); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadFloat64Elements(r.in)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadBoolArrayMD reads what Writer.WriteBoolArrayMD wrote.
func (r *Reader) ReadBoolArrayMD() ([]arraycodec.Dim, []bool, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.BoolNative); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadBoolElements(r.in, r.mode)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

// ReadByteArrayMD reads what Writer.WriteByteArrayMD wrote.
func (r *Reader) ReadByteArrayMD() ([]arraycodec.Dim, []byte, error) {
	if err := r.expectArrayHeader(wiretag.ArrayMD, wiretag.UInt8); err != nil {
		return nil, nil, err
	}

	dims, err := r.readDims()
	if err != nil {
		return nil, nil, err
	}

	values, err := arraycodec.ReadByteElements(r.in)
	if err != nil {
		return nil, nil, err
	}

	return dims, values, nil
}

func (r *Reader) expectArrayHeader(shape, elementKind wiretag.Tag) error {
	if err := expectTag(r.in, shape); err != nil {
		return err
	}

	return expectTag(r.in, elementKind)
}

func (r *Reader) readDims() ([]arraycodec.Dim, error) {
	n, err := leb128.ReadUnsigned64(r.in)
	if err != nil {
		return nil, mapLEBErr(err)
	}

	dims := make([]arraycodec.Dim, n)

	for i := range dims {
		lower, err := leb128.ReadSigned64(r.in)
		if err != nil {
			return nil, mapLEBErr(err)
		}

		length, err := leb128.ReadUnsigned64(r.in)
		if err != nil {
			return nil, mapLEBErr(err)
		}

		dims[i] = arraycodec.Dim{Lower: lower, Length: int64(length)}
	}

	return dims, nil
}

func readFullInto(r iosink.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m

		if err != nil || m == 0 {
			if n < len(buf) {
				return n, wireerr.ErrUnexpectedEOF
			}

			return n, nil
		}
	}

	return n, nil
}
