package dex

import "github.com/dhamidi/dexlink/cst"

// CallSiteIDItem is written as u4 declaring type index, u2 name index, u2
// bootstrap method handle index and u8 file offset of the bootstrap argument
// list (0 when the call site has no static arguments).
type CallSiteIDItem struct {
	indexedItem
	callSite cst.CallSite
	args     *ArgumentListItem
}

func NewCallSiteIDItem(cs cst.CallSite) *CallSiteIDItem {
	item := &CallSiteIDItem{callSite: cs}
	if args := cs.Bootstrap().Arguments(); !args.IsEmpty() {
		item.args = NewArgumentListItem(args)
	}
	return item
}

func (c *CallSiteIDItem) ItemType() ItemType     { return TypeCallSiteIDItem }
func (c *CallSiteIDItem) WriteSize() int         { return 16 }
func (c *CallSiteIDItem) CallSite() cst.CallSite { return c.callSite }
func (c *CallSiteIDItem) Human() string          { return c.callSite.Human() }

// Arguments is the canonical argument list item, or nil.
func (c *CallSiteIDItem) Arguments() *ArgumentListItem { return c.args }

func (c *CallSiteIDItem) AddContents(f *File) error {
	if _, err := f.typeIDs.Intern(c.callSite.DeclaringType()); err != nil {
		return err
	}
	if _, err := f.stringIDs.Intern(c.callSite.NameAndType().Name()); err != nil {
		return err
	}
	if _, err := f.methodHandleIDs.Intern(c.callSite.Bootstrap().Handle()); err != nil {
		return err
	}
	if c.args != nil {
		canon, err := f.bsmArgs.Intern(c.args)
		if err != nil {
			return err
		}
		c.args = canon.(*ArgumentListItem)
	}
	return nil
}

func (c *CallSiteIDItem) WriteTo(f *File, out *Output) error {
	bsm := c.callSite.Bootstrap()
	typeIdx, err := f.typeIDs.IndexOf(c.callSite.DeclaringType())
	if err != nil {
		return err
	}
	nameIdx, err := f.stringIDs.IndexOf(c.callSite.NameAndType().Name())
	if err != nil {
		return err
	}
	mhIdx, err := f.methodHandleIDs.IndexOf(bsm.Handle())
	if err != nil {
		return err
	}
	declaring, err := u4Index(typeIdx, "declaring type")
	if err != nil {
		return err
	}
	name, err := u2Index(nameIdx, "call site name")
	if err != nil {
		return err
	}
	mh, err := u2Index(mhIdx, "bootstrap method handle")
	if err != nil {
		return err
	}

	var argsOff int
	if c.args != nil {
		if argsOff, err = f.bsmArgs.AbsoluteOffsetOf(c.args); err != nil {
			return err
		}
	}

	if out.Annotates() {
		out.Annotate(0, c.indexString()+" "+bsm.Human())
		out.Annotate(4, "  type_idx:         "+hexU4(typeIdx)+" // "+c.callSite.DeclaringType().Human())
		out.Annotate(2, "  name_idx:         "+hexU2(nameIdx)+" // "+c.callSite.NameAndType().Human())
		out.Annotate(2, "  methodhandle_idx: "+hexU2(mhIdx)+" // "+bsm.Handle().Human())
		out.Annotate(8, "  bsmArgs_off:      "+hexU8(int64(argsOff)))
	}
	out.WriteU4(declaring)
	out.WriteU2(name)
	out.WriteU2(mh)
	out.WriteU8(uint64(argsOff))
	return nil
}
