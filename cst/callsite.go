package cst

import (
	"fmt"
	"strconv"
)

// CallSite is an invokedynamic constant. Two call sites are the same constant
// when their name-and-type and bootstrap method are equal; the raw bootstrap
// argument offset read from the class file is carried along for display only.
type CallSite struct {
	rawArgsOffset int64
	nat           NameAndType
	bootstrap     BootstrapMethod
}

func NewCallSite(rawArgsOffset int64, nat NameAndType, bootstrap BootstrapMethod) (CallSite, error) {
	if nat.name.value == "" {
		return CallSite{}, fmt.Errorf("call site name: %w", ErrNullValue)
	}
	if !nat.IsMethod() {
		return CallSite{}, fmt.Errorf("call site %s: %w", nat.Human(), ErrIllegalValue)
	}
	if err := bootstrap.valid(); err != nil {
		return CallSite{}, fmt.Errorf("call site %s: %w", nat.Human(), err)
	}
	return CallSite{rawArgsOffset: rawArgsOffset, nat: nat, bootstrap: bootstrap}, nil
}

// DeclaringType is always java.lang.Object.
func (c CallSite) DeclaringType() Type        { return ObjectType }
func (c CallSite) NameAndType() NameAndType   { return c.nat }
func (c CallSite) Bootstrap() BootstrapMethod { return c.bootstrap }
func (c CallSite) RawArgsOffset() int64       { return c.rawArgsOffset }
func (c CallSite) Kind() Kind                 { return KindCallSite }

func (c CallSite) Human() string {
	return strconv.FormatInt(c.rawArgsOffset, 10) + ":" + c.DeclaringType().Human() + "." + c.nat.Human()
}

func (c CallSite) String() string { return "indy{" + c.Human() + "}" }

func (c CallSite) compare(o CallSite) int {
	if n := c.nat.compare(o.nat); n != 0 {
		return n
	}
	return c.bootstrap.compare(o.bootstrap)
}

func (c CallSite) writeKey(kb *keyBuilder) {
	kb.kind(KindCallSite)
	kb.str(c.nat.name.value)
	kb.str(c.nat.descriptor.value)
	c.bootstrap.writeKey(kb)
}
