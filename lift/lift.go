// Package lift turns the constant pool of a parsed class file into constants
// that can be interned into a dex file.
package lift

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/dexlink/classfile"
	"github.com/dhamidi/dexlink/cst"
	"github.com/dhamidi/dexlink/dex"
)

// ErrUnsupported reports a pool entry that has no constant counterpart,
// such as a dynamic constant used as a bootstrap argument.
var ErrUnsupported = errors.New("unsupported constant")

// Constants are the method handles, method types and call sites of one
// class, in constant pool order.
type Constants struct {
	Class         string
	MethodHandles []cst.MethodHandle
	MethodTypes   []cst.MethodType
	CallSites     []cst.CallSite
}

// Len is the number of constants.
func (c *Constants) Len() int {
	return len(c.MethodHandles) + len(c.MethodTypes) + len(c.CallSites)
}

// InternInto interns every constant into f.
func (c *Constants) InternInto(f *dex.File) error {
	for _, mh := range c.MethodHandles {
		if _, err := f.InternMethodHandle(mh); err != nil {
			return fmt.Errorf("%s: %w", c.Class, err)
		}
	}
	for _, mt := range c.MethodTypes {
		if _, err := f.InternMethodType(mt); err != nil {
			return fmt.Errorf("%s: %w", c.Class, err)
		}
	}
	for _, cs := range c.CallSites {
		if _, err := f.InternCallSite(cs); err != nil {
			return fmt.Errorf("%s: %w", c.Class, err)
		}
	}
	return nil
}

// ClassFile resolves every MethodHandle, MethodType and InvokeDynamic entry
// of cf.
func ClassFile(cf *classfile.ClassFile) (*Constants, error) {
	l := &lifter{
		cp:      cf.ConstantPool,
		bsms:    cf.BootstrapMethods(),
		handles: make(map[uint16]cst.MethodHandle),
	}
	out := &Constants{Class: cf.ClassName()}

	for i, entry := range cf.ConstantPool {
		if entry == nil {
			continue
		}
		index := uint16(i + 1)

		switch entry.Tag() {
		case classfile.ConstantMethodHandle:
			mh, err := l.methodHandle(index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", out.Class, err)
			}
			out.MethodHandles = append(out.MethodHandles, mh)
		case classfile.ConstantMethodType:
			mt, err := l.methodType(index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", out.Class, err)
			}
			out.MethodTypes = append(out.MethodTypes, mt)
		case classfile.ConstantInvokeDynamic:
			cs, err := l.callSite(entry.(*classfile.ConstantDynamicInfo), index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", out.Class, err)
			}
			out.CallSites = append(out.CallSites, cs)
		}
	}

	commonlog.GetLogger("dexlink.lift").Debugf("lifted %s: %d method handles, %d method types, %d call sites",
		out.Class, len(out.MethodHandles), len(out.MethodTypes), len(out.CallSites))
	return out, nil
}

type lifter struct {
	cp      classfile.ConstantPool
	bsms    []classfile.BootstrapMethod
	handles map[uint16]cst.MethodHandle
}

func (l *lifter) methodHandle(index uint16) (cst.MethodHandle, error) {
	if mh, ok := l.handles[index]; ok {
		return mh, nil
	}

	info, err := l.cp.MethodHandle(index)
	if err != nil {
		return cst.MethodHandle{}, err
	}
	ref, err := l.cp.MemberRef(info.ReferenceIndex)
	if err != nil {
		return cst.MethodHandle{}, fmt.Errorf("method handle #%d: %w", index, err)
	}
	member, err := memberRef(ref)
	if err != nil {
		return cst.MethodHandle{}, fmt.Errorf("method handle #%d: %w", index, err)
	}
	mh, err := cst.NewMethodHandle(cst.HandleKind(info.ReferenceKind), member)
	if err != nil {
		return cst.MethodHandle{}, fmt.Errorf("method handle #%d: %w", index, err)
	}
	l.handles[index] = mh
	return mh, nil
}

func memberRef(ref classfile.MemberRef) (cst.MemberRef, error) {
	definer, err := cst.TypeForClass(ref.ClassName)
	if err != nil {
		return cst.MemberRef{}, err
	}
	nat, err := cst.NewNameAndType(ref.Name, ref.Descriptor)
	if err != nil {
		return cst.MemberRef{}, err
	}

	switch ref.Kind {
	case classfile.ConstantFieldref:
		return cst.NewFieldRef(definer, nat)
	case classfile.ConstantMethodref:
		return cst.NewMethodRef(definer, nat)
	case classfile.ConstantInterfaceMethodref:
		return cst.NewInterfaceMethodRef(definer, nat)
	}
	return cst.MemberRef{}, fmt.Errorf("member reference %s: %w", ref.Kind, classfile.ErrWrongTag)
}

func (l *lifter) methodType(index uint16) (cst.MethodType, error) {
	desc, err := l.cp.MethodType(index)
	if err != nil {
		return cst.MethodType{}, err
	}
	mt, err := cst.NewMethodType(cst.NewString(desc))
	if err != nil {
		return cst.MethodType{}, fmt.Errorf("method type #%d: %w", index, err)
	}
	return mt, nil
}

// callSite resolves an InvokeDynamic entry. The bootstrap attribute index
// becomes the raw argument offset of the call site.
func (l *lifter) callSite(info *classfile.ConstantDynamicInfo, index uint16) (cst.CallSite, error) {
	bsmIndex := int(info.BootstrapMethodAttrIndex)
	if bsmIndex >= len(l.bsms) {
		return cst.CallSite{}, fmt.Errorf("call site #%d: bootstrap method %d of %d: %w",
			index, bsmIndex, len(l.bsms), classfile.ErrBadIndex)
	}
	bsm := l.bsms[bsmIndex]

	handle, err := l.methodHandle(bsm.BootstrapMethodRef)
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}

	b := cst.NewArgumentsBuilder(len(bsm.BootstrapArguments))
	for i, argIndex := range bsm.BootstrapArguments {
		arg, err := l.argument(argIndex)
		if err != nil {
			return cst.CallSite{}, fmt.Errorf("call site #%d: bootstrap argument %d: %w", index, i, err)
		}
		if err := b.Set(i, arg); err != nil {
			return cst.CallSite{}, err
		}
	}
	args, err := b.Freeze()
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}

	method, err := cst.NewBootstrapMethod(handle, args)
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}

	name, desc, err := l.cp.NameAndType(info.NameAndTypeIndex)
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}
	nat, err := cst.NewNameAndType(name, desc)
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}

	cs, err := cst.NewCallSite(int64(bsmIndex), nat, method)
	if err != nil {
		return cst.CallSite{}, fmt.Errorf("call site #%d: %w", index, err)
	}
	return cs, nil
}

// argument converts a loadable pool entry into a bootstrap argument.
func (l *lifter) argument(index uint16) (cst.Argument, error) {
	entry, err := l.cp.Entry(index)
	if err != nil {
		return nil, err
	}

	switch e := entry.(type) {
	case *classfile.ConstantClassInfo:
		name, err := l.cp.Utf8(e.NameIndex)
		if err != nil {
			return nil, err
		}
		return cst.TypeForClass(name)
	case *classfile.ConstantStringInfo:
		s, err := l.cp.Utf8(e.StringIndex)
		if err != nil {
			return nil, err
		}
		return cst.NewString(s), nil
	case *classfile.ConstantMethodTypeInfo:
		return l.methodType(index)
	case *classfile.ConstantMethodHandleInfo:
		return l.methodHandle(index)
	case *classfile.ConstantIntegerInfo:
		return cst.IntegerOf(e.Value), nil
	case *classfile.ConstantFloatInfo:
		return cst.FloatFromBits(e.Bits), nil
	case *classfile.ConstantLongInfo:
		return cst.LongOf(e.Value), nil
	case *classfile.ConstantDoubleInfo:
		return cst.DoubleFromBits(e.Bits), nil
	}
	return nil, fmt.Errorf("#%d %s: %w", index, entry.Tag(), ErrUnsupported)
}
