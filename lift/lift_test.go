package lift

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/dexlink/classfile"
	"github.com/dhamidi/dexlink/cst"
	"github.com/dhamidi/dexlink/dex"
)

const bsmDesc = "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;"

// pool is a 1-based constant pool under construction.
type pool struct {
	entries classfile.ConstantPool
}

func (p *pool) add(e classfile.ConstantPoolEntry) uint16 {
	p.entries = append(p.entries, e)
	idx := uint16(len(p.entries))
	if e.Tag() == classfile.ConstantLong || e.Tag() == classfile.ConstantDouble {
		p.entries = append(p.entries, nil)
	}
	return idx
}

func (p *pool) utf8(s string) uint16 {
	return p.add(&classfile.ConstantUtf8Info{Value: s})
}

func (p *pool) class(name string) uint16 {
	return p.add(&classfile.ConstantClassInfo{NameIndex: p.utf8(name)})
}

func (p *pool) nat(name, desc string) uint16 {
	return p.add(&classfile.ConstantNameAndTypeInfo{NameIndex: p.utf8(name), DescriptorIndex: p.utf8(desc)})
}

func (p *pool) member(kind classfile.ConstantTag, class, name, desc string) uint16 {
	return p.add(&classfile.ConstantMemberrefInfo{Kind: kind, ClassIndex: p.class(class), NameAndTypeIndex: p.nat(name, desc)})
}

func (p *pool) handle(kind classfile.MethodHandleKind, ref uint16) uint16 {
	return p.add(&classfile.ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: ref})
}

func (p *pool) indy(bsm uint16, name, desc string) uint16 {
	return p.add(&classfile.ConstantDynamicInfo{Kind: classfile.ConstantInvokeDynamic, BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: p.nat(name, desc)})
}

func (p *pool) classFile(bsms ...classfile.BootstrapMethod) *classfile.ClassFile {
	this := p.class("demo/Main")
	attrName := p.utf8("BootstrapMethods")
	return &classfile.ClassFile{
		ConstantPool: p.entries,
		ThisClass:    this,
		Attributes: []classfile.AttributeInfo{{
			NameIndex: attrName,
			Parsed:    &classfile.BootstrapMethodsAttribute{BootstrapMethods: bsms},
		}},
	}
}

func TestClassFile_LiftsCallSites(t *testing.T) {
	var p pool
	bsmRef := p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc)
	bsm := p.handle(classfile.RefInvokeStatic, bsmRef)
	hello := p.add(&classfile.ConstantStringInfo{StringIndex: p.utf8("hello")})
	answer := p.add(&classfile.ConstantIntegerInfo{Value: 42})
	big := p.add(&classfile.ConstantLongInfo{Value: 1 << 40})
	half := p.add(&classfile.ConstantDoubleInfo{Bits: 0x3FE0000000000000})
	str := p.class("java/lang/String")
	mt := p.add(&classfile.ConstantMethodTypeInfo{DescriptorIndex: p.utf8("(I)J")})
	p.indy(0, "run", "()Ljava/lang/Runnable;")
	p.indy(1, "apply", "(I)J")

	cf := p.classFile(
		classfile.BootstrapMethod{BootstrapMethodRef: bsm, BootstrapArguments: []uint16{hello, answer}},
		classfile.BootstrapMethod{BootstrapMethodRef: bsm, BootstrapArguments: []uint16{big, half, str, mt, bsm}},
	)

	consts, err := ClassFile(cf)
	require.NoError(t, err)
	require.Equal(t, "demo/Main", consts.Class)
	require.Len(t, consts.MethodHandles, 1)
	require.Len(t, consts.MethodTypes, 1)
	require.Len(t, consts.CallSites, 2)
	require.Equal(t, 4, consts.Len())

	mh := consts.MethodHandles[0]
	require.Equal(t, cst.HandleInvokeStatic, mh.HandleKind())
	require.Equal(t, "Foo.bsm:"+bsmDesc, mh.Member().Human())

	run := consts.CallSites[0]
	require.Equal(t, int64(0), run.RawArgsOffset())
	require.Equal(t, "run", run.NameAndType().Name().Value())
	args := run.Bootstrap().Arguments()
	require.Equal(t, 2, args.Len())
	require.Equal(t, cst.NewString("hello"), args.At(0))
	require.Equal(t, cst.IntegerOf(42), args.At(1))

	apply := consts.CallSites[1]
	require.Equal(t, int64(1), apply.RawArgsOffset())
	args = apply.Bootstrap().Arguments()
	require.Equal(t, 5, args.Len())
	require.Equal(t, 7, args.SlotCount())
	require.Equal(t, cst.LongOf(1<<40), args.At(0))
	require.Equal(t, cst.DoubleOf(0.5), args.At(1))
	require.Equal(t, "java.lang.String", args.At(2).Human())
	require.Equal(t, cst.KindMethodType, args.At(3).Kind())
	require.True(t, cst.Equal(mh, args.At(4)))
}

func TestClassFile_InternInto(t *testing.T) {
	var p pool
	bsm := p.handle(classfile.RefInvokeStatic, p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc))
	hello := p.add(&classfile.ConstantStringInfo{StringIndex: p.utf8("hello")})
	answer := p.add(&classfile.ConstantIntegerInfo{Value: 42})
	p.indy(0, "run", "()V")

	consts, err := ClassFile(p.classFile(classfile.BootstrapMethod{
		BootstrapMethodRef: bsm,
		BootstrapArguments: []uint16{hello, answer},
	}))
	require.NoError(t, err)

	f := dex.NewFile()
	require.NoError(t, consts.InternInto(f))
	require.NoError(t, consts.InternInto(f))

	_, err = f.Bytes()
	require.NoError(t, err)
	require.Equal(t, 1, f.CallSiteIDs().Len())
	require.Equal(t, 1, f.MethodHandleIDs().Len())
	require.Equal(t, 1, f.BsmArgs().Len())
	require.Equal(t, 14, f.BsmArgs().WriteSize())
}

func TestClassFile_Errors(t *testing.T) {
	t.Run("dynamic constant argument", func(t *testing.T) {
		var p pool
		bsm := p.handle(classfile.RefInvokeStatic, p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc))
		condy := p.add(&classfile.ConstantDynamicInfo{Kind: classfile.ConstantDynamic, NameAndTypeIndex: p.nat("x", "I")})
		p.indy(0, "run", "()V")

		_, err := ClassFile(p.classFile(classfile.BootstrapMethod{BootstrapMethodRef: bsm, BootstrapArguments: []uint16{condy}}))
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("missing bootstrap method", func(t *testing.T) {
		var p pool
		p.indy(3, "run", "()V")
		_, err := ClassFile(p.classFile())
		require.ErrorIs(t, err, classfile.ErrBadIndex)
	})

	t.Run("bad handle kind", func(t *testing.T) {
		var p pool
		p.handle(12, p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc))
		_, err := ClassFile(p.classFile())
		require.ErrorIs(t, err, cst.ErrIllegalValue)
	})

	t.Run("field handle on method", func(t *testing.T) {
		var p pool
		p.handle(classfile.RefGetField, p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc))
		_, err := ClassFile(p.classFile())
		require.ErrorIs(t, err, cst.ErrIllegalValue)
	})

	t.Run("bad argument index", func(t *testing.T) {
		var p pool
		bsm := p.handle(classfile.RefInvokeStatic, p.member(classfile.ConstantMethodref, "Foo", "bsm", bsmDesc))
		p.indy(0, "run", "()V")
		_, err := ClassFile(p.classFile(classfile.BootstrapMethod{BootstrapMethodRef: bsm, BootstrapArguments: []uint16{999}}))
		require.ErrorIs(t, err, classfile.ErrBadIndex)
	})
}
