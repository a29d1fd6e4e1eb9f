package dex

import "github.com/dhamidi/dexlink/cst"

type MethodTypeIDItem struct {
	indexedItem
	methodType cst.MethodType
}

func NewMethodTypeIDItem(mt cst.MethodType) *MethodTypeIDItem {
	return &MethodTypeIDItem{methodType: mt}
}

func (m *MethodTypeIDItem) ItemType() ItemType { return TypeMethodTypeIDItem }
func (m *MethodTypeIDItem) WriteSize() int     { return 2 }
func (m *MethodTypeIDItem) Human() string      { return m.methodType.Human() }

func (m *MethodTypeIDItem) MethodType() cst.MethodType { return m.methodType }

func (m *MethodTypeIDItem) AddContents(f *File) error {
	_, err := f.stringIDs.Intern(m.methodType.Descriptor())
	return err
}

func (m *MethodTypeIDItem) WriteTo(f *File, out *Output) error {
	descIdx, err := f.stringIDs.IndexOf(m.methodType.Descriptor())
	if err != nil {
		return err
	}
	desc, err := u2Index(descIdx, "descriptor")
	if err != nil {
		return err
	}
	if out.Annotates() {
		out.Annotate(0, m.indexString()+" "+m.methodType.Human())
		out.Annotate(2, "  descriptor_idx: "+hexU2(descIdx))
	}
	out.WriteU2(desc)
	return nil
}
