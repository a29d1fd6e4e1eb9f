package dex

import "fmt"

// ItemType identifies the kind of items a section holds; the value is the
// type code written to the map in the file header.
type ItemType uint16

const (
	TypeStringIDItem     ItemType = 0x0001
	TypeTypeIDItem       ItemType = 0x0002
	TypeCallSiteIDItem   ItemType = 0x0007
	TypeMethodHandleItem ItemType = 0x0008
	TypeMethodTypeIDItem ItemType = 0x0009
	TypeStringDataItem   ItemType = 0x2002
	TypeBsmArgsListItem  ItemType = 0x2007
)

func (t ItemType) String() string {
	switch t {
	case TypeStringIDItem:
		return "string_id_item"
	case TypeTypeIDItem:
		return "type_id_item"
	case TypeCallSiteIDItem:
		return "call_site_id_item"
	case TypeMethodHandleItem:
		return "method_handle_item"
	case TypeMethodTypeIDItem:
		return "method_type_id_item"
	case TypeStringDataItem:
		return "string_data_item"
	case TypeBsmArgsListItem:
		return "bsm_args_list_item"
	}
	return fmt.Sprintf("item_type(%04x)", uint16(t))
}

// Item is the addressable, serializable unit a section holds.
type Item interface {
	ItemType() ItemType
	// WriteSize is the exact number of bytes WriteTo emits.
	WriteSize() int
	// AddContents interns every constant the item refers to into the
	// sections of f.
	AddContents(f *File) error
	// WriteTo emits the item. Indices and offsets of dependencies are
	// final when it is called.
	WriteTo(f *File, out *Output) error
	Human() string
}

// IndexedItem lives in a uniform section and is addressed by index.
type IndexedItem interface {
	Item
	Index() int
	setIndex(i int)
}

type indexedItem struct {
	index int
}

func (i *indexedItem) Index() int     { return i.index }
func (i *indexedItem) setIndex(n int) { i.index = n }

func (i *indexedItem) indexString() string {
	return fmt.Sprintf("[%x]", i.index)
}

// OffsettedItem lives in a mixed section and is addressed by byte offset.
// Key identifies equal items so the section can canonicalize them.
type OffsettedItem interface {
	Item
	Key() string
	Alignment() int
	Offset() int
	setOffset(off int)
}

type offsettedItem struct {
	alignment int
	offset    int
}

func (o *offsettedItem) Alignment() int    { return o.alignment }
func (o *offsettedItem) Offset() int       { return o.offset }
func (o *offsettedItem) setOffset(off int) { o.offset = off }

func u2Index(idx int, what string) (uint16, error) {
	if idx < 0 || idx > 0xffff {
		return 0, fmt.Errorf("%s index %d: %w", what, idx, ErrIndexOverflow)
	}
	return uint16(idx), nil
}

func u4Index(idx int, what string) (uint32, error) {
	if idx < 0 || int64(idx) > 0xffffffff {
		return 0, fmt.Errorf("%s index %d: %w", what, idx, ErrIndexOverflow)
	}
	return uint32(idx), nil
}

func alignUp(n, alignment int) int {
	if alignment <= 1 {
		return n
	}
	return (n + alignment - 1) / alignment * alignment
}
