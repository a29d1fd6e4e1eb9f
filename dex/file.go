package dex

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/dexlink/cst"
)

// Magic opens every file.
var Magic = [8]byte{'d', 'e', 'x', '\n', '0', '3', '9', 0}

const (
	headerFixedSize = 16
	mapEntrySize    = 12
)

type Option func(*File)

func WithLogger(log commonlog.Logger) Option {
	return func(f *File) { f.log = log }
}

// WithAnnotations records annotations while writing, for listings of the
// given line width.
func WithAnnotations(width int) Option {
	return func(f *File) {
		f.annotate = true
		f.width = width
	}
}

// File owns every section and drives the build: producers intern constants,
// Prepare collects references and addresses all sections, WriteTo emits the
// bytes.
type File struct {
	log      commonlog.Logger
	annotate bool
	width    int

	stringIDs       *UniformSection[cst.String, *StringIDItem]
	typeIDs         *UniformSection[cst.Type, *TypeIDItem]
	methodTypeIDs   *UniformSection[cst.MethodType, *MethodTypeIDItem]
	methodHandleIDs *UniformSection[cst.MethodHandle, *MethodHandleIDItem]
	callSiteIDs     *UniformSection[cst.CallSite, *CallSiteIDItem]
	bsmArgs         *MixedSection
	stringData      *MixedSection

	prepared   bool
	headerSize int
	fileSize   int
	out        *Output
}

func NewFile(opts ...Option) *File {
	f := &File{
		log:             commonlog.GetLogger("dexlink.dex"),
		stringIDs:       NewUniformSection("string_ids", TypeStringIDItem, 4, NewStringIDItem),
		typeIDs:         NewUniformSection("type_ids", TypeTypeIDItem, 4, NewTypeIDItem),
		methodTypeIDs:   NewUniformSection("method_type_ids", TypeMethodTypeIDItem, 2, NewMethodTypeIDItem),
		methodHandleIDs: NewUniformSection("method_handle_ids", TypeMethodHandleItem, 7, NewMethodHandleIDItem),
		callSiteIDs:     NewUniformSection("call_site_ids", TypeCallSiteIDItem, 16, NewCallSiteIDItem),
		bsmArgs:         NewMixedSection("bsm_args", TypeBsmArgsListItem, 1),
		stringData:      NewMixedSection("string_data", TypeStringDataItem, 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) StringIDs() *UniformSection[cst.String, *StringIDItem] {
	return f.stringIDs
}

func (f *File) TypeIDs() *UniformSection[cst.Type, *TypeIDItem] {
	return f.typeIDs
}

func (f *File) MethodTypeIDs() *UniformSection[cst.MethodType, *MethodTypeIDItem] {
	return f.methodTypeIDs
}

func (f *File) MethodHandleIDs() *UniformSection[cst.MethodHandle, *MethodHandleIDItem] {
	return f.methodHandleIDs
}

func (f *File) CallSiteIDs() *UniformSection[cst.CallSite, *CallSiteIDItem] {
	return f.callSiteIDs
}

func (f *File) BsmArgs() *MixedSection    { return f.bsmArgs }
func (f *File) StringData() *MixedSection { return f.stringData }

// Sections lists the sections in file order.
func (f *File) Sections() []Section {
	return []Section{
		f.stringIDs,
		f.typeIDs,
		f.methodTypeIDs,
		f.methodHandleIDs,
		f.callSiteIDs,
		f.bsmArgs,
		f.stringData,
	}
}

// sweepOrder lists the sections so that every section comes before the
// sections its items intern into.
func (f *File) sweepOrder() []Section {
	return []Section{
		f.callSiteIDs,
		f.bsmArgs,
		f.methodHandleIDs,
		f.methodTypeIDs,
		f.typeIDs,
		f.stringIDs,
		f.stringData,
	}
}

func (f *File) InternString(s cst.String) (*StringIDItem, error) { return f.stringIDs.Intern(s) }
func (f *File) InternType(t cst.Type) (*TypeIDItem, error)       { return f.typeIDs.Intern(t) }

func (f *File) InternMethodType(mt cst.MethodType) (*MethodTypeIDItem, error) {
	return f.methodTypeIDs.Intern(mt)
}

func (f *File) InternMethodHandle(mh cst.MethodHandle) (*MethodHandleIDItem, error) {
	return f.methodHandleIDs.Intern(mh)
}

func (f *File) InternCallSite(cs cst.CallSite) (*CallSiteIDItem, error) {
	return f.callSiteIDs.Intern(cs)
}

// Prepare collects the references of every interned item and then
// addresses every section. It may run only once.
func (f *File) Prepare() error {
	if f.prepared {
		return fmt.Errorf("prepare: already prepared: %w", ErrUsagePhase)
	}
	if err := f.collectReferences(); err != nil {
		return err
	}
	if err := f.address(); err != nil {
		return err
	}
	f.prepared = true
	return nil
}

func (f *File) collectReferences() error {
	sweep := f.sweepOrder()
	swept := make([]int, len(sweep))

	for i, s := range sweep {
		items := s.sweepItems()
		for _, item := range items {
			if err := item.AddContents(f); err != nil {
				return fmt.Errorf("%s: collect references of %s: %w", s.Name(), item.Human(), err)
			}
		}
		swept[i] = len(items)
		f.log.Debugf("collected references of %s: %d items", s.Name(), len(items))
	}

	for i, s := range sweep {
		if s.Len() != swept[i] {
			return fmt.Errorf("%s grew from %d to %d items after its sweep: %w", s.Name(), swept[i], s.Len(), ErrCycle)
		}
	}
	return nil
}

func (f *File) address() error {
	sections := f.Sections()

	nonEmpty := 0
	for _, s := range sections {
		if err := s.Address(); err != nil {
			return err
		}
		if s.Len() > 0 {
			nonEmpty++
		}
	}

	f.headerSize = headerFixedSize + nonEmpty*mapEntrySize
	off := f.headerSize
	for _, s := range sections {
		if s.Len() == 0 {
			s.setFileOffset(0)
			continue
		}
		off = alignUp(off, s.Alignment())
		s.setFileOffset(off)
		off += s.WriteSize()
		f.log.Debugf("addressed %s: %d items at 0x%x, %d bytes", s.Name(), s.Len(), s.FileOffset(), s.WriteSize())
	}
	f.fileSize = off
	f.log.Infof("addressed %d sections, file size %d", nonEmpty, f.fileSize)
	return nil
}

// FileSize is the total byte size, known after Prepare.
func (f *File) FileSize() int { return f.fileSize }

// WriteTo prepares the file if needed and writes it to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if f.out == nil {
		if err := f.render(); err != nil {
			return 0, err
		}
	}
	n, err := w.Write(f.out.Bytes())
	return int64(n), err
}

// Bytes renders the file and returns its contents.
func (f *File) Bytes() ([]byte, error) {
	if f.out == nil {
		if err := f.render(); err != nil {
			return nil, err
		}
	}
	return f.out.Bytes(), nil
}

// WriteAnnotationsTo writes the annotated listing. The file must have been
// created WithAnnotations.
func (f *File) WriteAnnotationsTo(w io.Writer) error {
	if !f.annotate {
		return fmt.Errorf("annotated listing: file was created without annotations: %w", ErrUsagePhase)
	}
	if f.out == nil {
		if err := f.render(); err != nil {
			return err
		}
	}
	return f.out.WriteAnnotationsTo(w)
}

func (f *File) render() error {
	if !f.prepared {
		if err := f.Prepare(); err != nil {
			return err
		}
	}

	out := NewOutput(f.annotate, f.width)
	f.writeHeader(out)

	for _, s := range f.Sections() {
		if s.Len() > 0 {
			if err := out.PadTo(s.FileOffset()); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			if out.Annotates() {
				out.Annotate(0, "\n"+s.Name()+":")
			}
		}
		if err := s.writeTo(f, out); err != nil {
			return err
		}
	}

	if out.Cursor() != f.fileSize {
		return fmt.Errorf("wrote %d bytes, laid out %d: %w", out.Cursor(), f.fileSize, ErrSizeMismatch)
	}
	f.out = out
	f.log.Infof("wrote %d bytes", out.Cursor())
	return nil
}

func (f *File) writeHeader(out *Output) {
	var mapped []Section
	for _, s := range f.Sections() {
		if s.Len() > 0 {
			mapped = append(mapped, s)
		}
	}

	if out.Annotates() {
		out.Annotate(8, "magic: dex\\n039\\0")
		out.Annotate(4, "file_size: "+hexU4(f.fileSize))
		out.Annotate(4, "map_size:  "+hexU4(len(mapped)))
	}
	out.Write(Magic[:])
	out.WriteU4(uint32(f.fileSize))
	out.WriteU4(uint32(len(mapped)))

	for _, s := range mapped {
		if out.Annotates() {
			out.Annotate(mapEntrySize, fmt.Sprintf("  %s: %d at %s", s.ItemType(), s.Len(), hexU4(s.FileOffset())))
		}
		out.WriteU2(uint16(s.ItemType()))
		out.WriteU2(0)
		out.WriteU4(uint32(s.Len()))
		out.WriteU4(uint32(s.FileOffset()))
	}
}
