package cst

import (
	"cmp"
	"fmt"
	"strconv"
)

// String is a string constant.
type String struct {
	value string
}

func NewString(s string) String { return String{value: s} }

func (s String) Value() string { return s.value }
func (s String) Kind() Kind    { return KindString }
func (s String) Human() string { return strconv.Quote(s.value) }
func (s String) String() string {
	return "string{" + s.Human() + "}"
}

func (s String) compare(o String) int { return cmp.Compare(s.value, o.value) }

func (s String) writeKey(kb *keyBuilder) {
	kb.kind(KindString)
	kb.str(s.value)
}

func (String) argument() {}

// Type is a class, array or primitive type named by its field descriptor.
type Type struct {
	descriptor string
}

// ObjectType is java.lang.Object, the declaring type of every call site.
var ObjectType = Type{descriptor: "Ljava/lang/Object;"}

// NewType validates descriptor as a JVM field descriptor (or V).
func NewType(descriptor string) (Type, error) {
	if descriptor == "" {
		return Type{}, fmt.Errorf("type descriptor: %w", ErrNullValue)
	}
	if parseFieldDescriptor(descriptor) == nil {
		return Type{}, fmt.Errorf("type descriptor %q: %w", descriptor, ErrIllegalValue)
	}
	return Type{descriptor: descriptor}, nil
}

// TypeForClass returns the type for an internal class name such as
// java/lang/String.
func TypeForClass(internalName string) (Type, error) {
	if internalName == "" {
		return Type{}, fmt.Errorf("class name: %w", ErrNullValue)
	}
	if internalName[0] == '[' {
		return NewType(internalName)
	}
	return NewType("L" + internalName + ";")
}

func (t Type) Descriptor() string { return t.descriptor }

// DescriptorString is the string constant the type table points at.
func (t Type) DescriptorString() String { return NewString(t.descriptor) }

func (t Type) IsZero() bool { return t.descriptor == "" }
func (t Type) Kind() Kind   { return KindType }

func (t Type) Human() string {
	if ft := parseFieldDescriptor(t.descriptor); ft != nil {
		return ft.human()
	}
	return t.descriptor
}

func (t Type) String() string { return "type{" + t.Human() + "}" }

func (t Type) compare(o Type) int { return cmp.Compare(t.descriptor, o.descriptor) }

func (t Type) writeKey(kb *keyBuilder) {
	kb.kind(KindType)
	kb.str(t.descriptor)
}

func (Type) argument() {}

// NameAndType pairs a member name with its descriptor.
type NameAndType struct {
	name       String
	descriptor String
}

func NewNameAndType(name, descriptor string) (NameAndType, error) {
	if name == "" {
		return NameAndType{}, fmt.Errorf("member name: %w", ErrNullValue)
	}
	if descriptor == "" {
		return NameAndType{}, fmt.Errorf("descriptor of %s: %w", name, ErrNullValue)
	}
	if !validMethodDescriptor(descriptor) && parseFieldDescriptor(descriptor) == nil {
		return NameAndType{}, fmt.Errorf("descriptor %q of %s: %w", descriptor, name, ErrIllegalValue)
	}
	return NameAndType{name: NewString(name), descriptor: NewString(descriptor)}, nil
}

func (n NameAndType) Name() String       { return n.name }
func (n NameAndType) Descriptor() String { return n.descriptor }
func (n NameAndType) IsMethod() bool     { return validMethodDescriptor(n.descriptor.value) }
func (n NameAndType) Kind() Kind         { return KindNameAndType }
func (n NameAndType) Human() string      { return n.name.value + ":" + n.descriptor.value }
func (n NameAndType) String() string     { return "nat{" + n.Human() + "}" }

func (n NameAndType) compare(o NameAndType) int {
	if c := n.name.compare(o.name); c != 0 {
		return c
	}
	return n.descriptor.compare(o.descriptor)
}

func (n NameAndType) writeKey(kb *keyBuilder) {
	kb.kind(KindNameAndType)
	kb.str(n.name.value)
	kb.str(n.descriptor.value)
}

type MemberKind uint8

const (
	MemberField MemberKind = iota + 1
	MemberMethod
	MemberInterfaceMethod
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberMethod:
		return "method"
	case MemberInterfaceMethod:
		return "ifaceMethod"
	}
	return "member(" + strconv.Itoa(int(k)) + ")"
}

// MemberRef is a field, method or interface method reference.
type MemberRef struct {
	kind    MemberKind
	definer Type
	nat     NameAndType
}

func NewFieldRef(definer Type, nat NameAndType) (MemberRef, error) {
	return newMemberRef(MemberField, definer, nat)
}

func NewMethodRef(definer Type, nat NameAndType) (MemberRef, error) {
	return newMemberRef(MemberMethod, definer, nat)
}

func NewInterfaceMethodRef(definer Type, nat NameAndType) (MemberRef, error) {
	return newMemberRef(MemberInterfaceMethod, definer, nat)
}

func newMemberRef(kind MemberKind, definer Type, nat NameAndType) (MemberRef, error) {
	if definer.IsZero() {
		return MemberRef{}, fmt.Errorf("defining class of %s ref: %w", kind, ErrNullValue)
	}
	if nat.name.value == "" {
		return MemberRef{}, fmt.Errorf("name of %s ref: %w", kind, ErrNullValue)
	}
	if (kind == MemberField) == nat.IsMethod() {
		return MemberRef{}, fmt.Errorf("%s ref with descriptor %s: %w", kind, nat.descriptor.value, ErrIllegalValue)
	}
	return MemberRef{kind: kind, definer: definer, nat: nat}, nil
}

func (m MemberRef) MemberKind() MemberKind { return m.kind }
func (m MemberRef) DefiningClass() Type    { return m.definer }
func (m MemberRef) NameAndType() NameAndType {
	return m.nat
}
func (m MemberRef) Kind() Kind     { return KindMemberRef }
func (m MemberRef) Human() string  { return m.definer.Human() + "." + m.nat.Human() }
func (m MemberRef) String() string { return m.kind.String() + "{" + m.Human() + "}" }

func (m MemberRef) compare(o MemberRef) int {
	if c := cmp.Compare(m.kind, o.kind); c != 0 {
		return c
	}
	if c := m.definer.compare(o.definer); c != 0 {
		return c
	}
	return m.nat.compare(o.nat)
}

func (m MemberRef) writeKey(kb *keyBuilder) {
	kb.kind(KindMemberRef)
	kb.unum(uint64(m.kind))
	kb.str(m.definer.descriptor)
	kb.str(m.nat.name.value)
	kb.str(m.nat.descriptor.value)
}
