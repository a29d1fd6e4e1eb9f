package dex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Output is a little-endian byte sink that can record annotations, each
// covering a run of bytes, for a human-readable listing.
type Output struct {
	buf         []byte
	annotates   bool
	width       int
	annotations []annotation
}

type annotation struct {
	start, end int
	text       string
}

// NewOutput creates an output. When annotate is set, listings are laid out
// for lines of width columns.
func NewOutput(annotate bool, width int) *Output {
	if width <= 0 {
		width = 79
	}
	return &Output{annotates: annotate, width: width}
}

func (o *Output) Annotates() bool { return o.annotates }
func (o *Output) Cursor() int     { return len(o.buf) }
func (o *Output) Bytes() []byte   { return o.buf }

// Annotate attaches text to the next n bytes. Consecutive annotations made
// before the bytes are written cover consecutive runs. A zero-width
// annotation is printed as a label line.
func (o *Output) Annotate(n int, text string) {
	if !o.annotates {
		return
	}
	start := len(o.buf)
	if k := len(o.annotations); k > 0 && o.annotations[k-1].end > start {
		start = o.annotations[k-1].end
	}
	o.annotations = append(o.annotations, annotation{start: start, end: start + n, text: text})
}

func (o *Output) WriteU1(v uint8) { o.buf = append(o.buf, v) }

func (o *Output) WriteU2(v uint16) { o.buf = binary.LittleEndian.AppendUint16(o.buf, v) }

func (o *Output) WriteU4(v uint32) { o.buf = binary.LittleEndian.AppendUint32(o.buf, v) }

func (o *Output) WriteU8(v uint64) { o.buf = binary.LittleEndian.AppendUint64(o.buf, v) }

func (o *Output) Write(p []byte) (int, error) {
	o.buf = append(o.buf, p...)
	return len(p), nil
}

// WriteUleb128 writes v as unsigned LEB128.
func (o *Output) WriteUleb128(v uint32) {
	o.buf = binary.AppendUvarint(o.buf, uint64(v))
}

func (o *Output) WriteZeroes(n int) {
	for i := 0; i < n; i++ {
		o.buf = append(o.buf, 0)
	}
}

// PadTo writes zeroes until the cursor reaches offset.
func (o *Output) PadTo(offset int) error {
	if offset < len(o.buf) {
		return fmt.Errorf("pad to 0x%x: cursor already at 0x%x", offset, len(o.buf))
	}
	o.WriteZeroes(offset - len(o.buf))
	return nil
}

// WriteAnnotationsTo prints a hex listing of the output with the recorded
// annotations next to the bytes they describe.
func (o *Output) WriteAnnotationsTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	perLine := (o.width/2 - 8) / 3
	if perLine < 1 {
		perLine = 1
	}
	hexWidth := 8 + perLine*3

	cursor := 0
	for _, a := range o.annotations {
		if a.start > cursor {
			o.dumpRange(bw, cursor, a.start, "", perLine, hexWidth)
		}
		o.dumpRange(bw, a.start, a.end, a.text, perLine, hexWidth)
		if a.end > cursor {
			cursor = a.end
		}
	}
	if cursor < len(o.buf) {
		o.dumpRange(bw, cursor, len(o.buf), "", perLine, hexWidth)
	}
	return bw.Flush()
}

func (o *Output) dumpRange(w *bufio.Writer, start, end int, text string, perLine, hexWidth int) {
	if end > len(o.buf) {
		end = len(o.buf)
	}
	lines := strings.Split(text, "\n")
	li := 0
	nextText := func() string {
		if li < len(lines) {
			li++
			return lines[li-1]
		}
		return ""
	}

	if start >= end {
		for _, line := range lines {
			fmt.Fprintf(w, "%-*s|%s\n", hexWidth, fmt.Sprintf("%06x:", start), line)
		}
		return
	}

	for off := start; off < end || li < len(lines); off += perLine {
		var left strings.Builder
		if off < end {
			fmt.Fprintf(&left, "%06x:", off)
			stop := off + perLine
			if stop > end {
				stop = end
			}
			for _, b := range o.buf[off:stop] {
				fmt.Fprintf(&left, " %02x", b)
			}
		}
		fmt.Fprintf(w, "%-*s|%s\n", hexWidth, left.String(), nextText())
	}
}

func hexU1(v int) string { return fmt.Sprintf("%02x", uint8(v)) }
func hexU2(v int) string { return fmt.Sprintf("%04x", uint16(v)) }
func hexU4(v int) string { return fmt.Sprintf("%08x", uint32(v)) }
func hexU8(v int64) string {
	return fmt.Sprintf("%016x", uint64(v))
}
