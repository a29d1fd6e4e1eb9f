// Package cst holds the immutable constant values that the dex sections intern.
//
// Every constant belongs to a closed set of variants. Constants are compared
// structurally with Compare, which defines a total order: kind first, then the
// payload fields of each variant in declared sequence. Section layout depends
// on this order, so it must never change between runs.
package cst

import (
	"cmp"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNullValue    = errors.New("null value")
	ErrIllegalValue = errors.New("illegal value")
	ErrFrozen       = errors.New("frozen value mutated")
)

type Kind uint8

const (
	KindString Kind = iota + 1
	KindType
	KindNameAndType
	KindMemberRef
	KindMethodType
	KindMethodHandle
	KindInteger
	KindFloat
	KindLong
	KindDouble
	KindCallSite
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindType:
		return "type"
	case KindNameAndType:
		return "nat"
	case KindMemberRef:
		return "member"
	case KindMethodType:
		return "methodtype"
	case KindMethodHandle:
		return "methodhandle"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindCallSite:
		return "indy"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Constant is implemented only by the types in this package.
type Constant interface {
	Kind() Kind
	// Human returns the unadorned readable form used in annotations and
	// error messages.
	Human() string
	String() string

	writeKey(kb *keyBuilder)
	valid() error
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Constant) bool {
	return Compare(a, b) == 0
}

// Compare orders constants by kind and then by payload.
func Compare(a, b Constant) int {
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}

	switch x := a.(type) {
	case String:
		return x.compare(b.(String))
	case Type:
		return x.compare(b.(Type))
	case NameAndType:
		return x.compare(b.(NameAndType))
	case MemberRef:
		return x.compare(b.(MemberRef))
	case MethodType:
		return x.compare(b.(MethodType))
	case MethodHandle:
		return x.compare(b.(MethodHandle))
	case Integer:
		return cmp.Compare(x.value, b.(Integer).value)
	case Float:
		return cmp.Compare(x.bits, b.(Float).bits)
	case Long:
		return cmp.Compare(x.value, b.(Long).value)
	case Double:
		return cmp.Compare(x.bits, b.(Double).bits)
	case CallSite:
		return x.compare(b.(CallSite))
	}
	panic("cst: unknown constant " + a.String())
}

// Key returns a canonical encoding of c. Two constants have the same key
// exactly when they are Equal.
func Key(c Constant) string {
	var kb keyBuilder
	c.writeKey(&kb)
	return kb.sb.String()
}

type keyBuilder struct {
	sb strings.Builder
}

func (kb *keyBuilder) kind(k Kind) {
	kb.sb.WriteByte(byte(k))
}

func (kb *keyBuilder) str(s string) {
	kb.sb.WriteString(strconv.Itoa(len(s)))
	kb.sb.WriteByte(':')
	kb.sb.WriteString(s)
}

func (kb *keyBuilder) num(n int64) {
	kb.sb.WriteString(strconv.FormatInt(n, 16))
	kb.sb.WriteByte(';')
}

func (kb *keyBuilder) unum(n uint64) {
	kb.sb.WriteString(strconv.FormatUint(n, 16))
	kb.sb.WriteByte(';')
}
