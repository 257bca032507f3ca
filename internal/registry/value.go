package registry

import (
	"fmt"
	"strconv"
)

// Kind is the semantic type of a tool parameter.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "invalid"
	}
}

// Value is a validated argument value. The zero Value is invalid.
type Value struct {
	kind Kind
	str  string
	num  float64
	flag bool
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsValid() bool { return v.kind != 0 }

// Str returns the string payload. It is empty unless Kind is KindString.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload. It is zero unless Kind is KindNumber.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean payload. It is false unless Kind is KindBoolean.
func (v Value) Bool() bool { return v.flag }

// Any returns the plain Go value, suitable for encoding/json.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBoolean:
		return v.flag
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	default:
		return fmt.Sprintf("Value(%d)", v.kind)
	}
}
