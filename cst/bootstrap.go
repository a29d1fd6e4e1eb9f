package cst

import (
	"fmt"
	"strings"
)

// Argument is a constant that may appear in a bootstrap argument list:
// Type, String, MethodType, MethodHandle, Integer, Float, Long or Double.
type Argument interface {
	Constant
	argument()
}

// IsCategory2 reports whether a occupies two slots (long and double).
func IsCategory2(a Argument) bool {
	switch a.(type) {
	case Long, Double:
		return true
	}
	return false
}

// ArgumentsBuilder fills a fixed-length argument list. Freeze hands the
// list over as an immutable Arguments value; the builder is unusable after.
type ArgumentsBuilder struct {
	args   []Argument
	frozen bool
}

func NewArgumentsBuilder(n int) *ArgumentsBuilder {
	return &ArgumentsBuilder{args: make([]Argument, n)}
}

func (b *ArgumentsBuilder) Len() int { return len(b.args) }

func (b *ArgumentsBuilder) Set(i int, arg Argument) error {
	if b.frozen {
		return fmt.Errorf("set argument %d: %w", i, ErrFrozen)
	}
	if i < 0 || i >= len(b.args) {
		return fmt.Errorf("argument index %d out of range [0,%d): %w", i, len(b.args), ErrIllegalValue)
	}
	if err := Validate(arg); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	b.args[i] = arg
	return nil
}

func (b *ArgumentsBuilder) Freeze() (Arguments, error) {
	if b.frozen {
		return Arguments{}, fmt.Errorf("freeze arguments: %w", ErrFrozen)
	}
	for i, a := range b.args {
		if a == nil {
			return Arguments{}, fmt.Errorf("argument %d unset: %w", i, ErrNullValue)
		}
	}
	b.frozen = true
	args := b.args
	b.args = nil
	return Arguments{args: args}, nil
}

// ArgumentsOf builds a frozen list from args.
func ArgumentsOf(args ...Argument) (Arguments, error) {
	b := NewArgumentsBuilder(len(args))
	for i, a := range args {
		if err := b.Set(i, a); err != nil {
			return Arguments{}, err
		}
	}
	return b.Freeze()
}

// Arguments is an immutable bootstrap argument list. The zero value is the
// empty list.
type Arguments struct {
	args []Argument
}

func (a Arguments) Len() int          { return len(a.args) }
func (a Arguments) At(i int) Argument { return a.args[i] }
func (a Arguments) IsEmpty() bool     { return len(a.args) == 0 }

// All returns a copy of the list.
func (a Arguments) All() []Argument {
	out := make([]Argument, len(a.args))
	copy(out, a.args)
	return out
}

// SlotCount counts long and double arguments twice.
func (a Arguments) SlotCount() int {
	n := 0
	for _, arg := range a.args {
		n++
		if IsCategory2(arg) {
			n++
		}
	}
	return n
}

func (a Arguments) Human() string {
	parts := make([]string, len(a.args))
	for i, arg := range a.args {
		parts[i] = arg.Human()
	}
	return strings.Join(parts, ", ")
}

func (a Arguments) compare(o Arguments) int {
	for i := 0; i < len(a.args) && i < len(o.args); i++ {
		if c := Compare(a.args[i], o.args[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.args) < len(o.args):
		return -1
	case len(a.args) > len(o.args):
		return 1
	}
	return 0
}

func (a Arguments) Equal(o Arguments) bool { return a.compare(o) == 0 }

func (a Arguments) writeKey(kb *keyBuilder) {
	kb.num(int64(len(a.args)))
	for _, arg := range a.args {
		arg.writeKey(kb)
	}
}

// ArgumentsKey is the canonical key of a list; equal lists share a key.
func ArgumentsKey(a Arguments) string {
	var kb keyBuilder
	a.writeKey(&kb)
	return kb.sb.String()
}

// BootstrapMethod is a bootstrap method handle plus its static arguments.
type BootstrapMethod struct {
	handle MethodHandle
	args   Arguments
}

func NewBootstrapMethod(handle MethodHandle, args Arguments) (BootstrapMethod, error) {
	if err := handle.valid(); err != nil {
		return BootstrapMethod{}, fmt.Errorf("bootstrap method: %w", err)
	}
	return BootstrapMethod{handle: handle, args: args}, nil
}

func (b BootstrapMethod) Handle() MethodHandle { return b.handle }
func (b BootstrapMethod) Arguments() Arguments { return b.args }

func (b BootstrapMethod) Human() string {
	return b.handle.Human() + " bsmArgs(" + b.args.Human() + ")"
}

func (b BootstrapMethod) Equal(o BootstrapMethod) bool { return b.compare(o) == 0 }

func (b BootstrapMethod) compare(o BootstrapMethod) int {
	if c := b.handle.compare(o.handle); c != 0 {
		return c
	}
	return b.args.compare(o.args)
}

func (b BootstrapMethod) writeKey(kb *keyBuilder) {
	b.handle.writeKey(kb)
	b.args.writeKey(kb)
}
