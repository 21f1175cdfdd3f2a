package models

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON value. The set of implementations is closed:
// Null, Bool, Number, String, Object and Array.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept as its literal text, so integers and
// floats survive a round trip unchanged.
type Number string

// String is a JSON string.
type String string

// Object is a JSON object. Key order is not preserved.
type Object map[string]Value

// Array is a JSON array.
type Array []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Object) Kind() Kind { return KindObject }
func (Array) Kind() Kind  { return KindArray }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Object) isValue() {}
func (Array) isValue()  {}

// MarshalJSON writes the null literal.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON writes the number literal verbatim.
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// Int64 parses the literal as a base-10 integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the literal as a float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Document is one parsed input file.
type Document struct {
	// Path is the file path relative to the source directory, slash separated.
	Path string
	Root Value
}

// FromInterface converts the output of a generic JSON decode (maps, slices,
// json.Number, string, bool, nil) into a Value tree.
func FromInterface(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(v)
	case json.Number:
		return Number(v)
	case float64:
		return Number(strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		return String(v)
	case map[string]interface{}:
		obj := make(Object, len(v))
		for key, value := range v {
			obj[key] = FromInterface(value)
		}
		return obj
	case []interface{}:
		arr := make(Array, len(v))
		for i, value := range v {
			arr[i] = FromInterface(value)
		}
		return arr
	case Value:
		return v
	default:
		return Null{}
	}
}
