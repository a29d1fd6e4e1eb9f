package classfile

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadIndex reports a constant pool index that is zero, out of range
	// or points at the unusable second slot of a long or double.
	ErrBadIndex = errors.New("bad constant pool index")
	// ErrWrongTag reports a constant pool entry of an unexpected kind.
	ErrWrongTag = errors.New("unexpected constant pool entry")
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

// ConstantFloatInfo keeps the raw bits so NaN payloads survive.
type ConstantFloatInfo struct {
	Bits uint32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (c *ConstantFloatInfo) Value() float32   { return math.Float32frombits(c.Bits) }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Bits uint64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (c *ConstantDoubleInfo) Value() float64   { return math.Float64frombits(c.Bits) }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

// ConstantMemberrefInfo is a Fieldref, Methodref or InterfaceMethodref.
type ConstantMemberrefInfo struct {
	Kind             ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMemberrefInfo) Tag() ConstantTag { return c.Kind }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

// ConstantDynamicInfo is a Dynamic or InvokeDynamic entry.
type ConstantDynamicInfo struct {
	Kind                     ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return c.Kind }

// ConstantNamedInfo is a Module or Package entry.
type ConstantNamedInfo struct {
	Kind      ConstantTag
	NameIndex uint16
}

func (c *ConstantNamedInfo) Tag() ConstantTag { return c.Kind }

// ConstantPool holds entries 1..count-1 at positions 0..count-2. The slot
// after a long or double is nil.
type ConstantPool []ConstantPoolEntry

// Entry returns the entry at a 1-based pool index.
func (cp ConstantPool) Entry(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) > len(cp) || cp[index-1] == nil {
		return nil, fmt.Errorf("#%d: %w", index, ErrBadIndex)
	}
	return cp[index-1], nil
}

func entryAs[T ConstantPoolEntry](cp ConstantPool, index uint16, want ConstantTag) (T, error) {
	var zero T
	e, err := cp.Entry(index)
	if err != nil {
		return zero, err
	}
	typed, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("#%d is %s, want %s: %w", index, e.Tag(), want, ErrWrongTag)
	}
	return typed, nil
}

func (cp ConstantPool) Utf8(index uint16) (string, error) {
	e, err := entryAs[*ConstantUtf8Info](cp, index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

// ClassName returns the internal name of a Class entry.
func (cp ConstantPool) ClassName(index uint16) (string, error) {
	e, err := entryAs[*ConstantClassInfo](cp, index, ConstantClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.NameIndex)
}

// StringValue returns the text of a String entry.
func (cp ConstantPool) StringValue(index uint16) (string, error) {
	e, err := entryAs[*ConstantStringInfo](cp, index, ConstantString)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.StringIndex)
}

func (cp ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	e, err := entryAs[*ConstantNameAndTypeInfo](cp, index, ConstantNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.Utf8(e.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = cp.Utf8(e.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	Kind       ConstantTag
	ClassName  string
	Name       string
	Descriptor string
}

func (cp ConstantPool) MemberRef(index uint16) (MemberRef, error) {
	e, err := entryAs[*ConstantMemberrefInfo](cp, index, ConstantMethodref)
	if err != nil {
		return MemberRef{}, err
	}
	class, err := cp.ClassName(e.ClassIndex)
	if err != nil {
		return MemberRef{}, err
	}
	name, desc, err := cp.NameAndType(e.NameAndTypeIndex)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Kind: e.Kind, ClassName: class, Name: name, Descriptor: desc}, nil
}

func (cp ConstantPool) MethodHandle(index uint16) (*ConstantMethodHandleInfo, error) {
	return entryAs[*ConstantMethodHandleInfo](cp, index, ConstantMethodHandle)
}

// MethodType returns the descriptor of a MethodType entry.
func (cp ConstantPool) MethodType(index uint16) (string, error) {
	e, err := entryAs[*ConstantMethodTypeInfo](cp, index, ConstantMethodType)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.DescriptorIndex)
}

// GetUtf8 is Utf8 without the error, for display.
func (cp ConstantPool) GetUtf8(index uint16) string {
	s, _ := cp.Utf8(index)
	return s
}

func (cp ConstantPool) GetClassName(index uint16) string {
	s, _ := cp.ClassName(index)
	return s
}
