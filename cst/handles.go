package cst

import (
	"cmp"
	"fmt"
	"strconv"
)

// MethodType is a method type constant; its payload is a method descriptor.
type MethodType struct {
	descriptor String
}

func NewMethodType(descriptor String) (MethodType, error) {
	if descriptor.value == "" {
		return MethodType{}, fmt.Errorf("method type descriptor: %w", ErrNullValue)
	}
	if !validMethodDescriptor(descriptor.value) {
		return MethodType{}, fmt.Errorf("method type descriptor %q: %w", descriptor.value, ErrIllegalValue)
	}
	return MethodType{descriptor: descriptor}, nil
}

func (m MethodType) Descriptor() String { return m.descriptor }
func (m MethodType) Kind() Kind         { return KindMethodType }
func (m MethodType) Human() string      { return m.descriptor.value }
func (m MethodType) String() string     { return "MT{" + m.Human() + "}" }

func (m MethodType) compare(o MethodType) int { return m.descriptor.compare(o.descriptor) }

func (m MethodType) writeKey(kb *keyBuilder) {
	kb.kind(KindMethodType)
	kb.str(m.descriptor.value)
}

func (MethodType) argument() {}

// HandleKind is one of the nine JVM method handle reference kinds.
type HandleKind uint8

const (
	HandleGetField HandleKind = iota + 1
	HandleGetStatic
	HandlePutField
	HandlePutStatic
	HandleInvokeVirtual
	HandleInvokeStatic
	HandleInvokeSpecial
	HandleNewInvokeSpecial
	HandleInvokeInterface
)

var handleKindNames = [...]string{
	HandleGetField:         "getField",
	HandleGetStatic:        "getStatic",
	HandlePutField:         "putField",
	HandlePutStatic:        "putStatic",
	HandleInvokeVirtual:    "invokeVirtual",
	HandleInvokeStatic:     "invokeStatic",
	HandleInvokeSpecial:    "invokeSpecial",
	HandleNewInvokeSpecial: "newInvokeSpecial",
	HandleInvokeInterface:  "invokeInterface",
}

func (k HandleKind) Valid() bool { return k >= HandleGetField && k <= HandleInvokeInterface }

// IsFieldAccess reports whether k reads or writes a field.
func (k HandleKind) IsFieldAccess() bool { return k >= HandleGetField && k <= HandlePutStatic }

func (k HandleKind) String() string {
	if !k.Valid() {
		return "handleKind(" + strconv.Itoa(int(k)) + ")"
	}
	return handleKindNames[k]
}

// MethodHandle is a method handle constant.
type MethodHandle struct {
	kind   HandleKind
	member MemberRef
}

// NewMethodHandle fails with ErrIllegalValue for kinds outside 1..9 and for
// a member whose kind does not match the handle kind.
func NewMethodHandle(kind HandleKind, member MemberRef) (MethodHandle, error) {
	if !kind.Valid() {
		return MethodHandle{}, fmt.Errorf("method handle kind %d: %w", kind, ErrIllegalValue)
	}
	if member.kind == 0 {
		return MethodHandle{}, fmt.Errorf("%s handle member: %w", kind, ErrNullValue)
	}
	if kind.IsFieldAccess() != (member.kind == MemberField) {
		return MethodHandle{}, fmt.Errorf("%s handle on %s: %w", kind, member, ErrIllegalValue)
	}
	return MethodHandle{kind: kind, member: member}, nil
}

func (m MethodHandle) HandleKind() HandleKind { return m.kind }
func (m MethodHandle) Member() MemberRef      { return m.member }
func (m MethodHandle) Kind() Kind             { return KindMethodHandle }
func (m MethodHandle) Human() string          { return m.kind.String() + ":" + m.member.Human() }
func (m MethodHandle) String() string         { return "MH{" + m.Human() + "}" }

func (m MethodHandle) compare(o MethodHandle) int {
	if c := cmp.Compare(m.kind, o.kind); c != 0 {
		return c
	}
	return m.member.compare(o.member)
}

func (m MethodHandle) writeKey(kb *keyBuilder) {
	kb.kind(KindMethodHandle)
	kb.unum(uint64(m.kind))
	m.member.writeKey(kb)
}

func (MethodHandle) argument() {}
