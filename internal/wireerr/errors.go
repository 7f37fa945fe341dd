// Package wireerr defines the shared error taxonomy used across the
// codec, interning, and archive packages, so a caller can match a single
// sentinel regardless of which layer detected the problem.
//
// Reference: grounded on this module's ancestor store's sentinel-error
// style (errors.New + fmt.Errorf("%w: ...") wrapping, internal/encoding's
// ErrBufferTooSmall/ErrVarintOverflow/ErrVarintTermination and
// internal/logging's errors.Is(err, ErrFatal) convention).
package wireerr

import (
	"errors"
	"fmt"

	"github.com/aalhour/binarchive/internal/wiretag"
)

var (
	// ErrUnexpectedEOF means a read ran past the end of the byte source.
	ErrUnexpectedEOF = errors.New("binarchive: unexpected end of stream")

	// ErrUnexpectedTag means the next payload tag did not match what the
	// caller expected.
	ErrUnexpectedTag = errors.New("binarchive: unexpected payload tag")

	// ErrOverlongLEB128 means a LEB128 integer exceeded its width limit.
	ErrOverlongLEB128 = errors.New("binarchive: overlong LEB128 value")

	// ErrUnknownType means type-name resolution failed and version-tolerant
	// mode could not substitute a match.
	ErrUnknownType = errors.New("binarchive: unknown type")

	// ErrVersionTooNew means an archive declared a serializer version
	// beyond what the decoder supports.
	ErrVersionTooNew = errors.New("binarchive: archive version too new")

	// ErrNotSerializable means the encoder found no built-in, external, or
	// internal serializer for a type.
	ErrNotSerializable = errors.New("binarchive: type is not serializable")

	// ErrDanglingBackReference means a back-reference id (object or type)
	// was never introduced in this pass.
	ErrDanglingBackReference = errors.New("binarchive: dangling back-reference")

	// ErrTypeMismatch means a typed read (ReadString, ReadType, ReadEnum,
	// ...) encountered a value of a different type.
	ErrTypeMismatch = errors.New("binarchive: type mismatch")
)

// UnexpectedTag wraps ErrUnexpectedTag with the expected and actual tags.
func UnexpectedTag(expected, got wiretag.Tag) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedTag, expected, got)
}

// UnknownType wraps ErrUnknownType with the unresolved type name.
func UnknownType(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// VersionTooNew wraps ErrVersionTooNew with the offending type name and
// version bounds.
func VersionTooNew(typeName string, got, max uint32) error {
	return fmt.Errorf("%w: %s declared version %d, decoder supports up to %d", ErrVersionTooNew, typeName, got, max)
}

// NotSerializable wraps ErrNotSerializable with the offending type name.
func NotSerializable(typeName string) error {
	return fmt.Errorf("%w: %s", ErrNotSerializable, typeName)
}

// DanglingBackReference wraps ErrDanglingBackReference with the offending id.
func DanglingBackReference(id uint32) error {
	return fmt.Errorf("%w: id %d", ErrDanglingBackReference, id)
}

// TypeMismatch wraps ErrTypeMismatch with what was expected vs. found.
func TypeMismatch(expected, got string) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, expected, got)
}
