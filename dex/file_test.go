package dex

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/dexlink/cst"
)

const bsmDescriptor = "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;[Ljava/lang/Object;)Ljava/lang/invoke/CallSite;"

func mustCallSite(t *testing.T, name, desc string, bsm cst.MethodHandle, args ...cst.Argument) cst.CallSite {
	t.Helper()
	frozen, err := cst.ArgumentsOf(args...)
	require.NoError(t, err)
	bm, err := cst.NewBootstrapMethod(bsm, frozen)
	require.NoError(t, err)
	nat, err := cst.NewNameAndType(name, desc)
	require.NoError(t, err)
	cs, err := cst.NewCallSite(0, nat, bm)
	require.NoError(t, err)
	return cs
}

func fooBsm(t *testing.T) cst.MethodHandle {
	return mustHandle(t, cst.HandleInvokeStatic, "LFoo;", "bsm", bsmDescriptor)
}

func TestFile_EndToEndCallSite(t *testing.T) {
	f := NewFile()
	cs := mustCallSite(t, "run", "()V", fooBsm(t), cst.NewString("hello"), cst.IntegerOf(42))

	csItem, err := f.InternCallSite(cs)
	require.NoError(t, err)
	require.NoError(t, f.Prepare())

	require.Equal(t, 1, f.MethodHandleIDs().Len())
	require.Equal(t, 1, f.BsmArgs().Len())

	args := csItem.Arguments()
	require.NotNil(t, args)
	require.Equal(t, 14, args.WriteSize())

	data, err := f.Bytes()
	require.NoError(t, err)
	require.Len(t, data, f.FileSize())
	require.Equal(t, Magic[:], data[:8])

	mhOff := f.MethodHandleIDs().FileOffset()
	require.Equal(t, byte(cst.HandleInvokeStatic), data[mhOff])

	argsOff, err := f.BsmArgs().AbsoluteOffsetOf(args)
	require.NoError(t, err)
	require.NotZero(t, argsOff)

	csOff := f.CallSiteIDs().FileOffset()
	written := binary.LittleEndian.Uint64(data[csOff+8 : csOff+16])
	require.Equal(t, uint64(argsOff), written)

	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[argsOff:]))
	require.Equal(t, TagString, data[argsOff+4])
	require.Equal(t, TagInteger, data[argsOff+9])
	require.Equal(t, uint32(42), binary.LittleEndian.Uint32(data[argsOff+10:]))

	for _, s := range f.Sections() {
		require.Equal(t, PhaseWritten, s.Phase(), s.Name())
	}
}

func TestFile_ReferenceClosure(t *testing.T) {
	f := NewFile()
	arg := mustHandle(t, cst.HandleGetStatic, "LBar;", "INSTANCE", "LBar;")
	cs := mustCallSite(t, "apply", "(I)I", fooBsm(t),
		mustType(t, "Ljava/lang/Runnable;"),
		mustMethodType(t, "(J)Z"),
		arg,
		cst.NewString("tag"),
	)
	_, err := f.InternCallSite(cs)
	require.NoError(t, err)
	require.NoError(t, f.Prepare())

	for _, desc := range []string{"Ljava/lang/Object;", "LFoo;", "LBar;", "Ljava/lang/Runnable;"} {
		_, ok := f.TypeIDs().Get(mustType(t, desc))
		require.True(t, ok, "type %s", desc)
	}
	_, ok := f.MethodTypeIDs().Get(mustMethodType(t, "(J)Z"))
	require.True(t, ok)
	_, ok = f.MethodHandleIDs().Get(arg)
	require.True(t, ok)

	strs := []string{"apply", "bsm", "INSTANCE", "tag", "(J)Z", "Ljava/lang/Object;", "LFoo;", "LBar;", "Ljava/lang/Runnable;"}
	for _, s := range strs {
		_, ok := f.StringIDs().Get(cst.NewString(s))
		require.True(t, ok, "string %q", s)
		_, ok = f.StringData().Get(s)
		require.True(t, ok, "string data %q", s)
	}

	_, err = f.Bytes()
	require.NoError(t, err)
}

func TestFile_Deterministic(t *testing.T) {
	bsm := fooBsm(t)
	constants := []func(f *File) error{
		func(f *File) error {
			_, err := f.InternCallSite(mustCallSite(t, "a", "()V", bsm, cst.NewString("x"), cst.LongOf(7)))
			return err
		},
		func(f *File) error {
			_, err := f.InternCallSite(mustCallSite(t, "b", "(I)V", bsm, cst.DoubleOf(1.5), mustType(t, "[I")))
			return err
		},
		func(f *File) error {
			_, err := f.InternMethodType(mustMethodType(t, "(Ljava/lang/String;)V"))
			return err
		},
		func(f *File) error {
			_, err := f.InternString(cst.NewString("zzz"))
			return err
		},
		func(f *File) error {
			_, err := f.InternMethodHandle(mustHandle(t, cst.HandlePutField, "LBaz;", "v", "J"))
			return err
		},
	}

	build := func(order []int) []byte {
		f := NewFile()
		for _, i := range order {
			require.NoError(t, constants[i](f))
		}
		data, err := f.Bytes()
		require.NoError(t, err)
		return data
	}

	forward := build([]int{0, 1, 2, 3, 4})
	backward := build([]int{4, 3, 2, 1, 0})
	shuffled := build([]int{2, 0, 4, 1, 3})
	require.Equal(t, forward, backward)
	require.Equal(t, forward, shuffled)
}

func TestArgumentListItem_SizeMatchesWrite(t *testing.T) {
	tests := []struct {
		name string
		args []cst.Argument
		size int
	}{
		{name: "empty", size: 4},
		{name: "class", args: []cst.Argument{mustType(t, "LFoo;")}, size: 4 + 3},
		{name: "string", args: []cst.Argument{cst.NewString("s")}, size: 4 + 5},
		{name: "method type", args: []cst.Argument{mustMethodType(t, "()V")}, size: 4 + 3},
		{name: "method handle", args: []cst.Argument{fooBsm(t)}, size: 4 + 3},
		{name: "int", args: []cst.Argument{cst.IntegerOf(-1)}, size: 4 + 5},
		{name: "float", args: []cst.Argument{cst.FloatOf(0.5)}, size: 4 + 5},
		{name: "long", args: []cst.Argument{cst.LongOf(1 << 40)}, size: 4 + 9},
		{name: "double", args: []cst.Argument{cst.DoubleOf(2.25)}, size: 4 + 9},
		{
			name: "mixed",
			args: []cst.Argument{
				cst.NewString("hello"),
				cst.IntegerOf(42),
				cst.LongOf(7),
				mustType(t, "Ljava/lang/String;"),
				mustMethodType(t, "()V"),
				fooBsm(t),
			},
			size: 4 + 5 + 5 + 9 + 3 + 3 + 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frozen, err := cst.ArgumentsOf(tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.size, NewArgumentListItem(frozen).WriteSize())

			if len(tt.args) == 0 {
				out := NewOutput(false, 0)
				require.NoError(t, NewArgumentListItem(frozen).WriteTo(nil, out))
				require.Len(t, out.Bytes(), tt.size)
				return
			}

			f := NewFile()
			item, err := f.InternCallSite(mustCallSite(t, "go", "()V", fooBsm(t), tt.args...))
			require.NoError(t, err)
			_, err = f.Bytes()
			require.NoError(t, err)
			require.Equal(t, tt.size, f.BsmArgs().WriteSize())
			require.Equal(t, tt.size, item.Arguments().WriteSize())
		})
	}
}

func TestFile_SharedArgumentLists(t *testing.T) {
	f := NewFile()
	bsm := fooBsm(t)
	a, err := f.InternCallSite(mustCallSite(t, "a", "()V", bsm, cst.IntegerOf(1)))
	require.NoError(t, err)
	b, err := f.InternCallSite(mustCallSite(t, "b", "()V", bsm, cst.IntegerOf(1)))
	require.NoError(t, err)
	c, err := f.InternCallSite(mustCallSite(t, "c", "()V", bsm))
	require.NoError(t, err)

	_, err = f.Bytes()
	require.NoError(t, err)

	require.Equal(t, 1, f.BsmArgs().Len())
	require.Same(t, a.Arguments(), b.Arguments())
	require.Nil(t, c.Arguments())

	data, _ := f.Bytes()
	off := f.CallSiteIDs().FileOffset() + 2*16
	require.Zero(t, binary.LittleEndian.Uint64(data[off+8:off+16]))
}

func TestFile_PrepareOnce(t *testing.T) {
	f := NewFile()
	_, err := f.InternString(cst.NewString("x"))
	require.NoError(t, err)
	require.NoError(t, f.Prepare())
	require.ErrorIs(t, f.Prepare(), ErrUsagePhase)

	_, err = f.InternString(cst.NewString("y"))
	require.ErrorIs(t, err, ErrUsagePhase)
}

func TestFile_EmptyFile(t *testing.T) {
	data, err := NewFile().Bytes()
	require.NoError(t, err)
	require.Len(t, data, headerFixedSize)
	require.Equal(t, uint32(headerFixedSize), binary.LittleEndian.Uint32(data[8:]))
	require.Zero(t, binary.LittleEndian.Uint32(data[12:]))
}

// upwardItem interns a call site from the bsm_args sweep, which runs after
// call sites have been swept.
type upwardItem struct {
	offsettedItem
	cs cst.CallSite
}

func (u *upwardItem) ItemType() ItemType { return TypeBsmArgsListItem }
func (u *upwardItem) WriteSize() int     { return 0 }
func (u *upwardItem) Key() string        { return "upward" }
func (u *upwardItem) Human() string      { return "upward" }

func (u *upwardItem) AddContents(f *File) error {
	_, err := f.InternCallSite(u.cs)
	return err
}

func (u *upwardItem) WriteTo(*File, *Output) error { return nil }

func TestFile_CycleIsFatal(t *testing.T) {
	f := NewFile()
	_, err := f.BsmArgs().Intern(&upwardItem{cs: mustCallSite(t, "late", "()V", fooBsm(t))})
	require.NoError(t, err)

	err = f.Prepare()
	require.ErrorIs(t, err, ErrCycle)
}

func TestFile_Annotations(t *testing.T) {
	f := NewFile(WithAnnotations(100))
	_, err := f.InternCallSite(mustCallSite(t, "run", "()V", fooBsm(t), cst.NewString("hello"), cst.IntegerOf(42)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteAnnotationsTo(&buf))

	listing := buf.String()
	for _, want := range []string{"magic", "call_site_ids:", "bsmArgs_off", "invokeStatic", "string: ", "int: 42"} {
		require.True(t, strings.Contains(listing, want), "listing lacks %q:\n%s", want, listing)
	}

	plain := NewFile()
	require.ErrorIs(t, plain.WriteAnnotationsTo(&buf), ErrUsagePhase)
}

func TestFile_Layout(t *testing.T) {
	f := NewFile()
	_, err := f.InternCallSite(mustCallSite(t, "run", "()V", fooBsm(t), cst.NewString("hello")))
	require.NoError(t, err)

	_, err = f.Layout()
	require.ErrorIs(t, err, ErrUsagePhase)

	require.NoError(t, f.Prepare())
	l, err := f.Layout()
	require.NoError(t, err)
	require.Equal(t, f.FileSize(), l.FileSize)
	require.Len(t, l.Sections, len(f.Sections()))

	var cs SectionLayout
	for _, s := range l.Sections {
		if s.Name == "call_site_ids" {
			cs = s
		}
	}
	require.Len(t, cs.Items, 1)
	require.Equal(t, 0, cs.Items[0].Index)
	require.Equal(t, f.CallSiteIDs().FileOffset(), cs.Items[0].Offset)

	encoded, err := MarshalLayout(l)
	require.NoError(t, err)
	again, err := MarshalLayout(l)
	require.NoError(t, err)
	require.Equal(t, encoded, again)

	decoded, err := UnmarshalLayout(encoded)
	require.NoError(t, err)
	require.Equal(t, l, decoded)
}
