package rete

import (
	"reflect"
	"time"
)

// Kind identifies the dynamic type carried by a Value (spec.md §3: "value
// is dynamically typed: number, string, boolean, symbol, timestamp, or
// arbitrary opaque").
type Kind int

const (
	KindNil Kind = iota
	KindNumber
	KindString
	KindBool
	KindSymbol
	KindTimestamp
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindSymbol:
		return "symbol"
	case KindTimestamp:
		return "timestamp"
	case KindOpaque:
		return "opaque"
	default:
		return "nil"
	}
}

// Value is a tagged union over a fact attribute's dynamic value. Cross-type
// comparisons always yield unequal (no implicit coercion between numbers
// and strings, per spec.md §4.4).
type Value struct {
	kind  Kind
	num   float64
	str   string
	b     bool
	ts    time.Time
	sym   string
	raw   interface{}
}

// Nil is the absent-value sentinel a Variable constraint binds to when the
// attribute is missing from a fact (spec.md §3).
var Nil = Value{kind: KindNil}

func Number(v float64) Value     { return Value{kind: KindNumber, num: v} }
func String(v string) Value      { return Value{kind: KindString, str: v} }
func Bool(v bool) Value          { return Value{kind: KindBool, b: v} }
func Symbol(v string) Value      { return Value{kind: KindSymbol, sym: v} }
func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, ts: v} }
func Opaque(v interface{}) Value { return Value{kind: KindOpaque, raw: v} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNil() bool   { return v.kind == KindNil }
func (v Value) Number() float64 { return v.num }
func (v Value) String() string {
	if v.kind == KindSymbol {
		return v.sym
	}
	return v.str
}
func (v Value) Bool() bool          { return v.b }
func (v Value) Time() time.Time     { return v.ts }
func (v Value) Raw() interface{}    { return v.raw }

// Equal implements the equality test used by JoinTest evaluation (spec.md
// §4.4): "absent == absent" but absent compares unequal to anything present,
// and values of different Kind never compare equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindSymbol:
		return v.sym == other.sym
	case KindTimestamp:
		return v.ts.Equal(other.ts)
	case KindOpaque:
		// raw may hold a slice or map (AssertJSON wraps JSON arrays/objects
		// this way via valueFromGJSON), and Go's == panics comparing those;
		// reflect.DeepEqual handles every dynamic type without panicking.
		return reflect.DeepEqual(v.raw, other.raw)
	default:
		return false
	}
}

// AsInterface returns the value unwrapped to a plain interface{}, used when
// hashing literal constraints into pattern keys and by callers that want
// the plain Go value.
func (v Value) AsInterface() interface{} {
	switch v.kind {
	case KindNil:
		return nil
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindSymbol:
		return v.sym
	case KindTimestamp:
		return v.ts
	case KindOpaque:
		return v.raw
	default:
		return nil
	}
}

// FromInterface lifts a plain Go value into a Value, for callers and test
// fixtures holding plain Go values. Numbers always land as float64,
// matching JSON's single numeric type.
func FromInterface(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Nil
	case Value:
		return x
	case float64:
		return Number(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case time.Time:
		return Timestamp(x)
	default:
		return Opaque(v)
	}
}
