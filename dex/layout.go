package dex

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
)

// Layout describes where every section and item landed in the file.
type Layout struct {
	FileSize int             `cbor:"file_size"`
	Sections []SectionLayout `cbor:"sections"`
}

type SectionLayout struct {
	Name   string       `cbor:"name"`
	Type   string       `cbor:"type"`
	Offset int          `cbor:"offset"`
	Size   int          `cbor:"size"`
	Items  []ItemLayout `cbor:"items"`
}

// ItemLayout locates one item. Index is -1 for items of mixed sections.
type ItemLayout struct {
	Index  int    `cbor:"index"`
	Offset int    `cbor:"offset"`
	Size   int    `cbor:"size"`
	Value  string `cbor:"value"`
}

var layoutEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dex: failed to create CBOR enc mode: %v", err))
	}
	layoutEncMode = em
}

// Layout reports the final placement. The file must be prepared.
func (f *File) Layout() (*Layout, error) {
	if !f.prepared {
		return nil, fmt.Errorf("layout: file not prepared: %w", ErrUsagePhase)
	}

	l := &Layout{FileSize: f.fileSize}
	for _, s := range f.Sections() {
		sl := SectionLayout{
			Name:   s.Name(),
			Type:   s.ItemType().String(),
			Offset: s.FileOffset(),
			Size:   s.WriteSize(),
		}

		off := s.FileOffset()
		for _, item := range s.Items() {
			il := ItemLayout{Index: -1, Size: item.WriteSize(), Value: item.Human()}
			switch it := item.(type) {
			case IndexedItem:
				il.Index = it.Index()
				il.Offset = off
				off += it.WriteSize()
			case OffsettedItem:
				il.Offset = s.FileOffset() + it.Offset()
			}
			sl.Items = append(sl.Items, il)
		}
		l.Sections = append(l.Sections, sl)
	}
	return l, nil
}

// MarshalLayout encodes l as canonical CBOR, so equal layouts encode to
// identical bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return layoutEncMode.Marshal(l)
}

func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("dex: unmarshal layout: %w", err)
	}
	return &l, nil
}

// WriteText prints the layout as a table.
func (l *Layout) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file size\t%d\n", l.FileSize)
	for _, s := range l.Sections {
		fmt.Fprintf(tw, "\n%s\t%s\t0x%06x\t%d bytes\n", s.Name, s.Type, s.Offset, s.Size)
		for _, it := range s.Items {
			idx := ""
			if it.Index >= 0 {
				idx = fmt.Sprintf("[%d]", it.Index)
			}
			fmt.Fprintf(tw, "  %s\t0x%06x\t%d\t%s\n", idx, it.Offset, it.Size, it.Value)
		}
	}
	return tw.Flush()
}
