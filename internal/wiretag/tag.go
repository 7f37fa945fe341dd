// Package wiretag defines the closed set of one-byte payload-tag
// discriminators written before every encoded value.
//
// Reference: modeled on this module's ancestor store's closed byte-enum
// pattern for on-disk discriminators (compression.Type, checksum.Type),
// generalized to the serializer's larger payload tag set.
package wiretag

// Tag is a one-byte discriminator prefixing every encoded value.
type Tag uint8

const (
	// NullReference marks a null reference value.
	NullReference Tag = iota

	// AlreadySerialized marks a back-reference to a previously serialized
	// object, followed by its ULEB128 object id.
	AlreadySerialized

	// Primitive kinds.
	Int8
	Int8LEB128
	UInt8
	UInt8LEB128
	Int16
	Int16LEB128
	UInt16
	UInt16LEB128
	Int32
	Int32LEB128
	UInt32
	UInt32LEB128
	Int64
	Int64LEB128
	UInt64
	UInt64LEB128
	Float32
	Float64
	BoolNative
	BoolFalse
	BoolTrue
	Char
	CharLEB128
	Decimal
	DateTime

	// String is UTF-8, ULEB128-length-prefixed.
	String

	// TypeObject introduces a reified type as a first-class value (see
	// Writer.WriteType/Reader.ReadType). The same tag value also serves,
	// in the distinct grammar position of an array header's element-kind
	// byte, to mark an array's elements as Serializable objects.
	TypeObject

	// Type introduces a type by name (first occurrence in this pass).
	Type

	// TypeID refers to a previously introduced type by its assigned id.
	TypeID

	// ArchiveStart/ArchiveEnd bound a custom-serializer invocation.
	ArchiveStart
	ArchiveEnd

	// BaseArchiveStart introduces a nested archive for a base class; it has
	// no matching ArchiveEnd of its own (see archive.BaseArchive).
	BaseArchiveStart

	// Enum marks an enumeration value: type metadata, then this tag, then
	// an SLEB128-encoded underlying integer.
	Enum

	// Buffer marks an opaque length-prefixed byte span.
	Buffer

	// Array tags. Each primitive/string/object kind has a single-dimension
	// (SZARRAY) and a multi-dimension/non-zero-based (MDARRAY) variant; the
	// element encoding is shared with the scalar tags above via the
	// arraycodec package, so only shape-level tags are enumerated here.
	ArraySZ
	ArrayMD
)

// String returns a human-readable name for the tag, mirroring the
// compression.Type / checksum.Type String() convention this is modeled on.
func (t Tag) String() string {
	switch t {
	case NullReference:
		return "NullReference"
	case AlreadySerialized:
		return "AlreadySerialized"
	case Int8:
		return "Int8"
	case Int8LEB128:
		return "Int8LEB128"
	case UInt8:
		return "UInt8"
	case UInt8LEB128:
		return "UInt8LEB128"
	case Int16:
		return "Int16"
	case Int16LEB128:
		return "Int16LEB128"
	case UInt16:
		return "UInt16"
	case UInt16LEB128:
		return "UInt16LEB128"
	case Int32:
		return "Int32"
	case Int32LEB128:
		return "Int32LEB128"
	case UInt32:
		return "UInt32"
	case UInt32LEB128:
		return "UInt32LEB128"
	case Int64:
		return "Int64"
	case Int64LEB128:
		return "Int64LEB128"
	case UInt64:
		return "UInt64"
	case UInt64LEB128:
		return "UInt64LEB128"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case BoolNative:
		return "BoolNative"
	case BoolFalse:
		return "BoolFalse"
	case BoolTrue:
		return "BoolTrue"
	case Char:
		return "Char"
	case CharLEB128:
		return "CharLEB128"
	case Decimal:
		return "Decimal"
	case DateTime:
		return "DateTime"
	case String:
		return "String"
	case TypeObject:
		return "TypeObject"
	case Type:
		return "Type"
	case TypeID:
		return "TypeID"
	case ArchiveStart:
		return "ArchiveStart"
	case ArchiveEnd:
		return "ArchiveEnd"
	case BaseArchiveStart:
		return "BaseArchiveStart"
	case Enum:
		return "Enum"
	case Buffer:
		return "Buffer"
	case ArraySZ:
		return "ArraySZ"
	case ArrayMD:
		return "ArrayMD"
	default:
		return "Unknown"
	}
}

// IsArray reports whether t is one of the two array shape tags. The
// element kind that follows is resolved separately (see arraycodec).
func (t Tag) IsArray() bool {
	return t == ArraySZ || t == ArrayMD
}
