package dex

import (
	"fmt"
	"sort"

	"github.com/dhamidi/dexlink/cst"
)

// Section is an ordered collection of same-kind items in the output file.
type Section interface {
	Name() string
	ItemType() ItemType
	Phase() Phase
	Len() int
	// Items lists the items in insertion order while the section is open
	// and in final order once it is addressed.
	Items() []Item
	Alignment() int
	// Address fixes the final order and assigns every item its index or
	// offset. Interning is refused from then on.
	Address() error
	// WriteSize is the byte size of the section, known once addressed.
	WriteSize() int
	// FileOffset is where the section starts in the file; 0 when empty.
	FileOffset() int

	setFileOffset(off int)
	sweepItems() []Item
	writeTo(f *File, out *Output) error
}

// UniformSection holds fixed-size items keyed by distinct constants.
// Addressing orders the items by cst.Compare of their keys.
type UniformSection[K cst.Constant, T IndexedItem] struct {
	lifecycle
	itemType   ItemType
	stride     int
	newItem    func(K) T
	entries    map[string]*uniformEntry[K, T]
	order      []*uniformEntry[K, T]
	fileOffset int
}

type uniformEntry[K cst.Constant, T IndexedItem] struct {
	key  K
	item T
}

func NewUniformSection[K cst.Constant, T IndexedItem](name string, itemType ItemType, stride int, newItem func(K) T) *UniformSection[K, T] {
	return &UniformSection[K, T]{
		lifecycle: lifecycle{name: name},
		itemType:  itemType,
		stride:    stride,
		newItem:   newItem,
		entries:   make(map[string]*uniformEntry[K, T]),
	}
}

func (s *UniformSection[K, T]) ItemType() ItemType    { return s.itemType }
func (s *UniformSection[K, T]) Len() int              { return len(s.order) }
func (s *UniformSection[K, T]) Alignment() int        { return 4 }
func (s *UniformSection[K, T]) WriteSize() int        { return len(s.order) * s.stride }
func (s *UniformSection[K, T]) FileOffset() int       { return s.fileOffset }
func (s *UniformSection[K, T]) setFileOffset(off int) { s.fileOffset = off }

// Intern returns the canonical item for key, creating it on first use.
func (s *UniformSection[K, T]) Intern(key K) (T, error) {
	if err := s.requireOpen("intern " + key.String()); err != nil {
		var zero T
		return zero, err
	}
	if err := cst.Validate(key); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: intern: %w", s.name, err)
	}

	k := cst.Key(key)
	if e, ok := s.entries[k]; ok {
		return e.item, nil
	}

	e := &uniformEntry[K, T]{key: key, item: s.newItem(key)}
	e.item.setIndex(-1)
	s.entries[k] = e
	s.order = append(s.order, e)
	return e.item, nil
}

// Get returns the item interned for key, in any phase.
func (s *UniformSection[K, T]) Get(key K) (T, bool) {
	e, ok := s.entries[cst.Key(key)]
	if !ok {
		var zero T
		return zero, false
	}
	return e.item, true
}

// IndexOf returns the final index of key.
func (s *UniformSection[K, T]) IndexOf(key K) (int, error) {
	if err := s.requireAddressed("index of " + key.String()); err != nil {
		return 0, err
	}
	e, ok := s.entries[cst.Key(key)]
	if !ok {
		return 0, fmt.Errorf("%s: %s: %w", s.name, key.Human(), ErrNotFound)
	}
	return e.item.Index(), nil
}

// Keys lists the interned constants in the same order as Items.
func (s *UniformSection[K, T]) Keys() []K {
	keys := make([]K, len(s.order))
	for i, e := range s.order {
		keys[i] = e.key
	}
	return keys
}

func (s *UniformSection[K, T]) Items() []Item {
	items := make([]Item, len(s.order))
	for i, e := range s.order {
		items[i] = e.item
	}
	return items
}

// sweepItems lists the items in key order. Mixed sections take their
// placement order from this sweep.
func (s *UniformSection[K, T]) sweepItems() []Item {
	sorted := make([]*uniformEntry[K, T], len(s.order))
	copy(sorted, s.order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cst.Compare(sorted[i].key, sorted[j].key) < 0
	})
	items := make([]Item, len(sorted))
	for i, e := range sorted {
		items[i] = e.item
	}
	return items
}

func (s *UniformSection[K, T]) Address() error {
	if err := s.advance(PhaseAddressed); err != nil {
		return err
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return cst.Compare(s.order[i].key, s.order[j].key) < 0
	})
	for i, e := range s.order {
		e.item.setIndex(i)
	}
	return nil
}

func (s *UniformSection[K, T]) writeTo(f *File, out *Output) error {
	if err := s.requireAddressed("write"); err != nil {
		return err
	}
	for _, e := range s.order {
		if err := writeItem(f, out, e.item); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return s.advance(PhaseWritten)
}

// MixedSection holds variable-size items placed at running offsets in the
// order they were first interned.
type MixedSection struct {
	lifecycle
	itemType   ItemType
	alignment  int
	entries    map[string]OffsettedItem
	order      []OffsettedItem
	size       int
	fileOffset int
}

func NewMixedSection(name string, itemType ItemType, alignment int) *MixedSection {
	return &MixedSection{
		lifecycle: lifecycle{name: name},
		itemType:  itemType,
		alignment: alignment,
		entries:   make(map[string]OffsettedItem),
	}
}

func (s *MixedSection) ItemType() ItemType    { return s.itemType }
func (s *MixedSection) Len() int              { return len(s.order) }
func (s *MixedSection) Alignment() int        { return s.alignment }
func (s *MixedSection) WriteSize() int        { return s.size }
func (s *MixedSection) FileOffset() int       { return s.fileOffset }
func (s *MixedSection) setFileOffset(off int) { s.fileOffset = off }

// Intern returns the canonical item equal to item, adding item itself if
// no equal item is present.
func (s *MixedSection) Intern(item OffsettedItem) (OffsettedItem, error) {
	if err := s.requireOpen("intern " + item.Human()); err != nil {
		return nil, err
	}
	k := item.Key()
	if existing, ok := s.entries[k]; ok {
		return existing, nil
	}
	item.setOffset(-1)
	s.entries[k] = item
	s.order = append(s.order, item)
	return item, nil
}

func (s *MixedSection) Get(key string) (OffsettedItem, bool) {
	item, ok := s.entries[key]
	return item, ok
}

// OffsetOf returns the offset of item from the start of the section.
func (s *MixedSection) OffsetOf(item OffsettedItem) (int, error) {
	if err := s.requireAddressed("offset of " + item.Human()); err != nil {
		return 0, err
	}
	canon, ok := s.entries[item.Key()]
	if !ok {
		return 0, fmt.Errorf("%s: %s: %w", s.name, item.Human(), ErrNotFound)
	}
	return canon.Offset(), nil
}

// AbsoluteOffsetOf returns the file offset of item.
func (s *MixedSection) AbsoluteOffsetOf(item OffsettedItem) (int, error) {
	off, err := s.OffsetOf(item)
	if err != nil {
		return 0, err
	}
	return s.fileOffset + off, nil
}

func (s *MixedSection) Items() []Item {
	items := make([]Item, len(s.order))
	for i, item := range s.order {
		items[i] = item
	}
	return items
}

func (s *MixedSection) sweepItems() []Item { return s.Items() }

func (s *MixedSection) Address() error {
	if err := s.advance(PhaseAddressed); err != nil {
		return err
	}
	off := 0
	for _, item := range s.order {
		off = alignUp(off, item.Alignment())
		item.setOffset(off)
		off += item.WriteSize()
	}
	s.size = off
	return nil
}

func (s *MixedSection) writeTo(f *File, out *Output) error {
	if err := s.requireAddressed("write"); err != nil {
		return err
	}
	for _, item := range s.order {
		if err := out.PadTo(s.fileOffset + item.Offset()); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if err := writeItem(f, out, item); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return s.advance(PhaseWritten)
}

// writeItem writes one item and checks the byte count against its declared
// size.
func writeItem(f *File, out *Output, item Item) error {
	start := out.Cursor()
	if err := item.WriteTo(f, out); err != nil {
		return fmt.Errorf("write %s: %w", item.Human(), err)
	}
	if got := out.Cursor() - start; got != item.WriteSize() {
		return fmt.Errorf("%s %s: wrote %d bytes, declared %d: %w",
			item.ItemType(), item.Human(), got, item.WriteSize(), ErrSizeMismatch)
	}
	return nil
}
