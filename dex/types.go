package dex

import "github.com/dhamidi/dexlink/cst"

// TypeIDItem refers to the descriptor string of a type.
type TypeIDItem struct {
	indexedItem
	typ cst.Type
}

func NewTypeIDItem(typ cst.Type) *TypeIDItem { return &TypeIDItem{typ: typ} }

func (t *TypeIDItem) ItemType() ItemType { return TypeTypeIDItem }
func (t *TypeIDItem) WriteSize() int     { return 4 }
func (t *TypeIDItem) Type() cst.Type     { return t.typ }
func (t *TypeIDItem) Human() string      { return t.typ.Human() }

func (t *TypeIDItem) AddContents(f *File) error {
	_, err := f.stringIDs.Intern(t.typ.DescriptorString())
	return err
}

func (t *TypeIDItem) WriteTo(f *File, out *Output) error {
	idx, err := f.stringIDs.IndexOf(t.typ.DescriptorString())
	if err != nil {
		return err
	}
	descriptor, err := u4Index(idx, "type descriptor")
	if err != nil {
		return err
	}
	if out.Annotates() {
		out.Annotate(4, t.indexString()+" "+t.typ.Human())
	}
	out.WriteU4(descriptor)
	return nil
}
