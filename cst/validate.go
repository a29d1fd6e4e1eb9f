package cst

import "fmt"

// Validate reports whether c is a well-formed constant. Constants made by the
// constructors in this package always are; zero values of the composite
// variants are not and fail with ErrNullValue.
func Validate(c Constant) error {
	if c == nil {
		return fmt.Errorf("constant: %w", ErrNullValue)
	}
	return c.valid()
}

func (String) valid() error  { return nil }
func (Integer) valid() error { return nil }
func (Float) valid() error   { return nil }
func (Long) valid() error    { return nil }
func (Double) valid() error  { return nil }

func (t Type) valid() error {
	if t.descriptor == "" {
		return fmt.Errorf("type descriptor: %w", ErrNullValue)
	}
	return nil
}

func (n NameAndType) valid() error {
	if n.name.value == "" {
		return fmt.Errorf("member name: %w", ErrNullValue)
	}
	if n.descriptor.value == "" {
		return fmt.Errorf("descriptor of %s: %w", n.name.value, ErrNullValue)
	}
	return nil
}

func (m MemberRef) valid() error {
	if m.kind == 0 {
		return fmt.Errorf("member ref: %w", ErrNullValue)
	}
	if err := m.definer.valid(); err != nil {
		return fmt.Errorf("defining class of %s ref: %w", m.kind, err)
	}
	return m.nat.valid()
}

func (m MethodType) valid() error {
	if m.descriptor.value == "" {
		return fmt.Errorf("method type descriptor: %w", ErrNullValue)
	}
	return nil
}

func (m MethodHandle) valid() error {
	if m.kind == 0 {
		return fmt.Errorf("method handle kind: %w", ErrNullValue)
	}
	if !m.kind.Valid() {
		return fmt.Errorf("method handle kind %d: %w", m.kind, ErrIllegalValue)
	}
	if err := m.member.valid(); err != nil {
		return fmt.Errorf("%s handle: %w", m.kind, err)
	}
	return nil
}

func (b BootstrapMethod) valid() error {
	if err := b.handle.valid(); err != nil {
		return fmt.Errorf("bootstrap method: %w", err)
	}
	for i, arg := range b.args.args {
		if err := Validate(arg); err != nil {
			return fmt.Errorf("bootstrap argument %d: %w", i, err)
		}
	}
	return nil
}

func (c CallSite) valid() error {
	if err := c.nat.valid(); err != nil {
		return fmt.Errorf("call site: %w", err)
	}
	return c.bootstrap.valid()
}
