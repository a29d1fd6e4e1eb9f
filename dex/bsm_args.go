package dex

import (
	"fmt"

	"github.com/dhamidi/dexlink/cst"
)

// Tags prefixing each record of a bootstrap argument list.
const (
	TagClass        byte = 'L'
	TagString       byte = 'S'
	TagMethodType   byte = 'T'
	TagMethodHandle byte = 'H'
	TagInteger      byte = 'I'
	TagFloat        byte = 'F'
	TagLong         byte = 'J'
	TagDouble       byte = 'D'
)

const bsmArgsHeaderSize = 4

// ArgumentListItem is a u4 count followed by one tag-prefixed record per
// bootstrap argument.
type ArgumentListItem struct {
	offsettedItem
	args cst.Arguments
	size int
}

// NewArgumentListItem sizes the list up front; only its position depends
// on addressing.
func NewArgumentListItem(args cst.Arguments) *ArgumentListItem {
	size := bsmArgsHeaderSize
	for i := 0; i < args.Len(); i++ {
		size += 1 + argumentPayloadWidth(args.At(i))
	}
	return &ArgumentListItem{
		offsettedItem: offsettedItem{alignment: 1},
		args:          args,
		size:          size,
	}
}

// argumentPayloadWidth is the byte width of the record after its tag.
//
// String records carry a u4 index where the other reference kinds carry a
// u2, so a string record is 5 bytes, not 3. writeItem rejects any item
// whose output disagrees with WriteSize.
func argumentPayloadWidth(a cst.Argument) int {
	switch a.(type) {
	case cst.Type:
		return 2
	case cst.String:
		return 4
	case cst.MethodType:
		return 2
	case cst.MethodHandle:
		return 2
	case cst.Integer:
		return 4
	case cst.Float:
		return 4
	case cst.Long:
		return 8
	case cst.Double:
		return 8
	}
	panic(fmt.Sprintf("dex: unsupported bootstrap argument %s", a))
}

func (a *ArgumentListItem) ItemType() ItemType       { return TypeBsmArgsListItem }
func (a *ArgumentListItem) WriteSize() int           { return a.size }
func (a *ArgumentListItem) Key() string              { return cst.ArgumentsKey(a.args) }
func (a *ArgumentListItem) Arguments() cst.Arguments { return a.args }

func (a *ArgumentListItem) Human() string {
	return "bsmArgs(" + a.args.Human() + ")"
}

func (a *ArgumentListItem) AddContents(f *File) error {
	for i := 0; i < a.args.Len(); i++ {
		var err error
		switch arg := a.args.At(i).(type) {
		case cst.Type:
			_, err = f.typeIDs.Intern(arg)
		case cst.String:
			_, err = f.stringIDs.Intern(arg)
		case cst.MethodType:
			_, err = f.methodTypeIDs.Intern(arg)
		case cst.MethodHandle:
			_, err = f.methodHandleIDs.Intern(arg)
		case cst.Integer, cst.Float, cst.Long, cst.Double:
		default:
			err = fmt.Errorf("bootstrap argument %d %s: %w", i, arg, cst.ErrIllegalValue)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *ArgumentListItem) WriteTo(f *File, out *Output) error {
	n := a.args.Len()
	if out.Annotates() {
		out.Annotate(0, fmt.Sprintf("[%x] bsmArgs_list", a.Offset()))
		out.Annotate(bsmArgsHeaderSize, "  size: "+hexU4(n))
	}
	out.WriteU4(uint32(n))

	for i := 0; i < n; i++ {
		if err := a.writeArgument(f, out, a.args.At(i)); err != nil {
			return fmt.Errorf("bootstrap argument %d: %w", i, err)
		}
	}
	return nil
}

func (a *ArgumentListItem) writeArgument(f *File, out *Output, arg cst.Argument) error {
	switch v := arg.(type) {
	case cst.Type:
		idx, err := f.typeIDs.IndexOf(v)
		if err != nil {
			return err
		}
		u2, err := u2Index(idx, "class")
		if err != nil {
			return err
		}
		annotateArgument(out, 3, "class: "+hexU2(idx)+" // "+v.Human())
		out.WriteU1(TagClass)
		out.WriteU2(u2)
	case cst.String:
		idx, err := f.stringIDs.IndexOf(v)
		if err != nil {
			return err
		}
		u4, err := u4Index(idx, "string")
		if err != nil {
			return err
		}
		annotateArgument(out, 5, "string: "+hexU4(idx)+" // "+v.Human())
		out.WriteU1(TagString)
		out.WriteU4(u4)
	case cst.MethodType:
		idx, err := f.methodTypeIDs.IndexOf(v)
		if err != nil {
			return err
		}
		u2, err := u2Index(idx, "method type")
		if err != nil {
			return err
		}
		annotateArgument(out, 3, "methodType: "+hexU2(idx)+" // "+v.Human())
		out.WriteU1(TagMethodType)
		out.WriteU2(u2)
	case cst.MethodHandle:
		idx, err := f.methodHandleIDs.IndexOf(v)
		if err != nil {
			return err
		}
		u2, err := u2Index(idx, "method handle")
		if err != nil {
			return err
		}
		annotateArgument(out, 3, "methodHandle: "+hexU2(idx)+" // "+v.Human())
		out.WriteU1(TagMethodHandle)
		out.WriteU2(u2)
	case cst.Integer:
		annotateArgument(out, 5, "int: "+v.Human())
		out.WriteU1(TagInteger)
		out.WriteU4(v.IntBits())
	case cst.Float:
		annotateArgument(out, 5, "float: "+v.Human())
		out.WriteU1(TagFloat)
		out.WriteU4(v.IntBits())
	case cst.Long:
		annotateArgument(out, 9, "long: "+v.Human())
		out.WriteU1(TagLong)
		out.WriteU8(v.LongBits())
	case cst.Double:
		annotateArgument(out, 9, "double: "+v.Human())
		out.WriteU1(TagDouble)
		out.WriteU8(v.LongBits())
	default:
		return fmt.Errorf("%s: %w", arg, cst.ErrIllegalValue)
	}
	return nil
}

func annotateArgument(out *Output, n int, text string) {
	if out.Annotates() {
		out.Annotate(n, "  "+text)
	}
}
