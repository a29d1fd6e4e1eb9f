package dex

import (
	"github.com/dhamidi/dexlink/cst"
)

// StringIDItem points at the string's data item.
type StringIDItem struct {
	indexedItem
	value cst.String
	data  *StringDataItem
}

func NewStringIDItem(value cst.String) *StringIDItem {
	return &StringIDItem{value: value, data: NewStringDataItem(value)}
}

func (s *StringIDItem) ItemType() ItemType { return TypeStringIDItem }
func (s *StringIDItem) WriteSize() int     { return 4 }
func (s *StringIDItem) Value() cst.String  { return s.value }
func (s *StringIDItem) Human() string      { return s.value.Human() }

func (s *StringIDItem) AddContents(f *File) error {
	canon, err := f.stringData.Intern(s.data)
	if err != nil {
		return err
	}
	s.data = canon.(*StringDataItem)
	return nil
}

func (s *StringIDItem) WriteTo(f *File, out *Output) error {
	off, err := f.stringData.AbsoluteOffsetOf(s.data)
	if err != nil {
		return err
	}
	if out.Annotates() {
		out.Annotate(0, s.indexString()+" "+s.value.Human())
		out.Annotate(4, "  string_data_off: "+hexU4(off))
	}
	out.WriteU4(uint32(off))
	return nil
}

// StringDataItem holds the encoded string: its UTF-16 length as ULEB128,
// the modified UTF-8 bytes, and a terminating NUL.
type StringDataItem struct {
	offsettedItem
	value   cst.String
	encoded []byte
	utf16   uint32
}

func NewStringDataItem(value cst.String) *StringDataItem {
	encoded, utf16Len := encodeModifiedUtf8(value.Value())
	return &StringDataItem{
		offsettedItem: offsettedItem{alignment: 1},
		value:         value,
		encoded:       encoded,
		utf16:         utf16Len,
	}
}

func (s *StringDataItem) ItemType() ItemType { return TypeStringDataItem }
func (s *StringDataItem) Key() string        { return s.value.Value() }
func (s *StringDataItem) Human() string      { return s.value.Human() }

func (s *StringDataItem) WriteSize() int {
	return uleb128Size(s.utf16) + len(s.encoded) + 1
}

func (s *StringDataItem) AddContents(*File) error { return nil }

func (s *StringDataItem) WriteTo(_ *File, out *Output) error {
	if out.Annotates() {
		out.Annotate(uleb128Size(s.utf16), "utf16_size: "+hexU4(int(s.utf16)))
		out.Annotate(len(s.encoded)+1, s.value.Human())
	}
	out.WriteUleb128(s.utf16)
	out.Write(s.encoded)
	out.WriteU1(0)
	return nil
}

// encodeModifiedUtf8 encodes s the way class and dex files store strings:
// NUL as two bytes and supplementary characters as surrogate pairs.
func encodeModifiedUtf8(s string) ([]byte, uint32) {
	out := make([]byte, 0, len(s))
	var units uint32
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			out = append(out, byte(r))
			units++
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
			units++
		case r < 0x10000:
			out = appendThreeByte(out, r)
			units++
		default:
			r -= 0x10000
			out = appendThreeByte(out, 0xD800+(r>>10))
			out = appendThreeByte(out, 0xDC00+(r&0x3FF))
			units += 2
		}
	}
	return out, units
}

func appendThreeByte(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

func uleb128Size(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
