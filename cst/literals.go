package cst

import (
	"math"
	"strconv"
)

// Integer is a 32-bit int literal.
type Integer struct{ value int32 }

// Float is a 32-bit float literal, stored as raw bits so that NaN payloads
// and signed zeros compare and encode exactly.
type Float struct{ bits uint32 }

// Long is a 64-bit long literal.
type Long struct{ value int64 }

// Double is a 64-bit double literal, stored as raw bits.
type Double struct{ bits uint64 }

func IntegerOf(v int32) Integer         { return Integer{value: v} }
func FloatOf(v float32) Float           { return Float{bits: math.Float32bits(v)} }
func FloatFromBits(bits uint32) Float   { return Float{bits: bits} }
func LongOf(v int64) Long               { return Long{value: v} }
func DoubleOf(v float64) Double         { return Double{bits: math.Float64bits(v)} }
func DoubleFromBits(bits uint64) Double { return Double{bits: bits} }

func (i Integer) Value() int32   { return i.value }
func (i Integer) IntBits() uint32 { return uint32(i.value) }
func (i Integer) Kind() Kind      { return KindInteger }
func (i Integer) Human() string   { return strconv.FormatInt(int64(i.value), 10) }
func (i Integer) String() string  { return "int{0x" + strconv.FormatUint(uint64(uint32(i.value)), 16) + " / " + i.Human() + "}" }
func (Integer) argument()         {}

func (i Integer) writeKey(kb *keyBuilder) {
	kb.kind(KindInteger)
	kb.num(int64(i.value))
}

func (f Float) Value() float32  { return math.Float32frombits(f.bits) }
func (f Float) IntBits() uint32 { return f.bits }
func (f Float) Kind() Kind      { return KindFloat }
func (f Float) Human() string   { return strconv.FormatFloat(float64(f.Value()), 'g', -1, 32) }
func (f Float) String() string  { return "float{0x" + strconv.FormatUint(uint64(f.bits), 16) + " / " + f.Human() + "}" }
func (Float) argument()         {}

func (f Float) writeKey(kb *keyBuilder) {
	kb.kind(KindFloat)
	kb.unum(uint64(f.bits))
}

func (l Long) Value() int64     { return l.value }
func (l Long) LongBits() uint64 { return uint64(l.value) }
func (l Long) Kind() Kind       { return KindLong }
func (l Long) Human() string    { return strconv.FormatInt(l.value, 10) }
func (l Long) String() string   { return "long{0x" + strconv.FormatUint(uint64(l.value), 16) + " / " + l.Human() + "}" }
func (Long) argument()          {}

func (l Long) writeKey(kb *keyBuilder) {
	kb.kind(KindLong)
	kb.num(l.value)
}

func (d Double) Value() float64   { return math.Float64frombits(d.bits) }
func (d Double) LongBits() uint64 { return d.bits }
func (d Double) Kind() Kind       { return KindDouble }
func (d Double) Human() string    { return strconv.FormatFloat(d.Value(), 'g', -1, 64) }
func (d Double) String() string   { return "double{0x" + strconv.FormatUint(d.bits, 16) + " / " + d.Human() + "}" }
func (Double) argument()          {}

func (d Double) writeKey(kb *keyBuilder) {
	kb.kind(KindDouble)
	kb.unum(d.bits)
}
