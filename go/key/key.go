// Package key implements the store's typed key model: an ordered list of
// named, typed elements encoded as a single canonical semicolon-delimited
// string. Two keys are equal exactly when their canonical strings are
// equal, so a Key is safe to use as a Go map key or a document's lookup
// field once encoded.
package key

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
)

// Element is one atomic value of a Key. Exactly one of the typed fields
// is meaningful, selected by Kind; a zero Element with Kind == KindUnset
// represents an explicit nil/unset element, which Encode rejects.
type Element struct {
	Kind  ElementKind
	Str   string
	Bool  bool
	Int32 int32
	Int64 int64
	// LocalDate, LocalTime, LocalMinute are stored as their int encodings
	// (yyyymmdd, hhmmssfff, hhmm respectively); LocalDateTime as int64
	// yyyymmddhhmmssfff; Instant as Int64 unix-nanos.
	Enum   string
	Nested string // canonical string of a nested key, already encoded
}

// ElementKind identifies which field of an Element is populated.
type ElementKind int

const (
	KindUnset ElementKind = iota
	KindString
	KindBool
	KindInt32
	KindInt64
	KindLocalDate
	KindLocalTime
	KindLocalMinute
	KindLocalDateTime
	KindInstant
	KindEnum
	KindNested
)

// Key is an ordered list of typed elements.
type Key struct {
	Elements []Element
}

// String builds an Element carrying a string value. An empty string is a
// legal element value; only KindUnset is rejected by Encode.
func String(s string) Element { return Element{Kind: KindString, Str: s} }

// Bool builds a boolean Element.
func Bool(b bool) Element { return Element{Kind: KindBool, Bool: b} }

// Int32 builds an int32 Element.
func Int32(v int32) Element { return Element{Kind: KindInt32, Int32: v} }

// Int64 builds an int64 Element.
func Int64(v int64) Element { return Element{Kind: KindInt64, Int64: v} }

// LocalDate builds an Element from a yyyymmdd-form int, e.g. 20030501 for
// 2003-05-01.
func LocalDate(yyyymmdd int32) Element { return Element{Kind: KindLocalDate, Int32: yyyymmdd} }

// LocalTime builds an Element from an hhmmssfff-form int, e.g. 101530005
// for 10:15:30.005.
func LocalTime(hhmmssfff int32) Element { return Element{Kind: KindLocalTime, Int32: hhmmssfff} }

// LocalMinute builds an Element from an hhmm-form int.
func LocalMinute(hhmm int32) Element { return Element{Kind: KindLocalMinute, Int32: hhmm} }

// LocalDateTime builds an Element from a yyyymmddhhmmssfff-form int64.
func LocalDateTime(v int64) Element { return Element{Kind: KindLocalDateTime, Int64: v} }

// Instant builds an Element from a unix-nanosecond int64 timestamp.
func Instant(unixNanos int64) Element { return Element{Kind: KindInstant, Int64: unixNanos} }

// Enum builds an Element storing an enum's symbolic name.
func Enum(name string) Element { return Element{Kind: KindEnum, Enum: name} }

// Nested builds an Element from another key's already-canonical string
// form, for composite keys whose element is itself a key.
func Nested(canonical string) Element { return Element{Kind: KindNested, Nested: canonical} }

// Encode joins k's elements with ";" into the canonical string form.
// Double-typed elements have no representation in this package and so
// cannot be constructed; an explicit KindUnset element fails with
// InvalidKeyElement.
func Encode(k Key) (string, error) {
	parts := make([]string, len(k.Elements))
	for i, el := range k.Elements {
		s, err := encodeElement(el)
		if err != nil {
			return "", skerr.Wrapf(err, "InvalidKeyElement: element %d of key", i)
		}
		parts[i] = s
	}
	return strings.Join(parts, ";"), nil
}

// MustEncode is like Encode but panics on error; useful for key literals
// in tests and fixtures known to be well-formed.
func MustEncode(k Key) string {
	s, err := Encode(k)
	if err != nil {
		panic(err)
	}
	return s
}

func encodeElement(el Element) (string, error) {
	switch el.Kind {
	case KindString:
		return el.Str, nil
	case KindBool:
		return strconv.FormatBool(el.Bool), nil
	case KindInt32:
		return strconv.FormatInt(int64(el.Int32), 10), nil
	case KindInt64, KindInstant:
		return strconv.FormatInt(el.Int64, 10), nil
	case KindLocalDate, KindLocalTime, KindLocalMinute:
		return strconv.FormatInt(int64(el.Int32), 10), nil
	case KindLocalDateTime:
		return strconv.FormatInt(el.Int64, 10), nil
	case KindEnum:
		return el.Enum, nil
	case KindNested:
		return el.Nested, nil
	case KindUnset:
		return "", skerr.Fmt("nil/unset key element is not permitted")
	default:
		return "", skerr.Fmt("unknown key element kind %d", el.Kind)
	}
}

// Schema describes the element kinds a key class declares, in order, so
// Parse can validate arity and convert each part to the right type.
type Schema struct {
	ClassName string
	Elements  []ElementKind
}

// Parse splits s on ";" and type-converts each part according to schema,
// failing with BadFormat on arity mismatch or a malformed numeric part.
func Parse(schema Schema, s string) (Key, error) {
	parts := strings.Split(s, ";")
	if len(parts) != len(schema.Elements) {
		return Key{}, skerr.Fmt("BadFormat: key class %q expects %d elements, got %d in %q",
			schema.ClassName, len(schema.Elements), len(parts), s)
	}
	elements := make([]Element, len(parts))
	for i, kind := range schema.Elements {
		el, err := parseElement(kind, parts[i])
		if err != nil {
			return Key{}, skerr.Wrapf(err, "BadFormat: element %d of key class %q", i, schema.ClassName)
		}
		elements[i] = el
	}
	return Key{Elements: elements}, nil
}

func parseElement(kind ElementKind, part string) (Element, error) {
	switch kind {
	case KindString:
		return String(part), nil
	case KindBool:
		b, err := strconv.ParseBool(part)
		if err != nil {
			return Element{}, skerr.Wrapf(err, "not a bool: %q", part)
		}
		return Bool(b), nil
	case KindInt32, KindLocalDate, KindLocalTime, KindLocalMinute:
		v, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return Element{}, skerr.Wrapf(err, "not an int32: %q", part)
		}
		return Element{Kind: kind, Int32: int32(v)}, nil
	case KindInt64, KindInstant, KindLocalDateTime:
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return Element{}, skerr.Wrapf(err, "not an int64: %q", part)
		}
		return Element{Kind: kind, Int64: v}, nil
	case KindEnum:
		return Enum(part), nil
	case KindNested:
		return Nested(part), nil
	default:
		return Element{}, skerr.Fmt("unknown key element kind %d", kind)
	}
}

// Equal reports whether a and b have the same canonical encoding. Both
// must encode without error; a key that fails to encode is never equal
// to anything, including itself.
func Equal(a, b Key) bool {
	as, aerr := Encode(a)
	bs, berr := Encode(b)
	return aerr == nil && berr == nil && as == bs
}

// String implements fmt.Stringer by returning k's canonical encoding, or
// a placeholder if k contains an invalid element.
func (k Key) String() string {
	s, err := Encode(k)
	if err != nil {
		return fmt.Sprintf("<invalid key: %v>", err)
	}
	return s
}
