package dex

import "github.com/dhamidi/dexlink/cst"

// MethodHandleIDItem is written as u1 kind, u2 defining type index and u4
// member name index.
type MethodHandleIDItem struct {
	indexedItem
	handle cst.MethodHandle
}

func NewMethodHandleIDItem(handle cst.MethodHandle) *MethodHandleIDItem {
	return &MethodHandleIDItem{handle: handle}
}

func (m *MethodHandleIDItem) ItemType() ItemType       { return TypeMethodHandleItem }
func (m *MethodHandleIDItem) WriteSize() int           { return 7 }
func (m *MethodHandleIDItem) Handle() cst.MethodHandle { return m.handle }
func (m *MethodHandleIDItem) Human() string            { return m.handle.Human() }

func (m *MethodHandleIDItem) AddContents(f *File) error {
	member := m.handle.Member()
	if _, err := f.typeIDs.Intern(member.DefiningClass()); err != nil {
		return err
	}
	_, err := f.stringIDs.Intern(member.NameAndType().Name())
	return err
}

func (m *MethodHandleIDItem) WriteTo(f *File, out *Output) error {
	member := m.handle.Member()
	classIdx, err := f.typeIDs.IndexOf(member.DefiningClass())
	if err != nil {
		return err
	}
	nameIdx, err := f.stringIDs.IndexOf(member.NameAndType().Name())
	if err != nil {
		return err
	}
	class, err := u2Index(classIdx, "defining class")
	if err != nil {
		return err
	}
	name, err := u4Index(nameIdx, "member name")
	if err != nil {
		return err
	}
	kind := m.handle.HandleKind()

	if out.Annotates() {
		out.Annotate(0, m.indexString()+" "+m.handle.Human())
		out.Annotate(1, "  kind ("+hexU1(int(kind))+"): "+kind.String())
		out.Annotate(2, "  class_idx: "+hexU2(classIdx))
		out.Annotate(4, "  name_idx:  "+hexU4(nameIdx))
	}
	out.WriteU1(uint8(kind))
	out.WriteU2(class)
	out.WriteU4(name)
	return nil
}
