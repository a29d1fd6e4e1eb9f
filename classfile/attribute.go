package classfile

import (
	"bytes"
	"fmt"
)

// AttributeInfo is an attribute as stored in the class file. Parsed is set
// for the attributes this package understands.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    interface{}
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

// BootstrapMethod is one entry of the BootstrapMethods attribute: a
// MethodHandle pool index and the pool indices of its static arguments.
type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	if a.Parsed != nil {
		if bm, ok := a.Parsed.(*BootstrapMethodsAttribute); ok {
			return bm
		}
	}
	return nil
}

func parseBootstrapMethodsAttribute(info []byte) (*BootstrapMethodsAttribute, error) {
	r := &reader{r: bytes.NewReader(info)}
	count := r.readU2()

	bm := &BootstrapMethodsAttribute{
		BootstrapMethods: make([]BootstrapMethod, 0, count),
	}
	for i := uint16(0); i < count; i++ {
		methodRef := r.readU2()
		numArgs := r.readU2()
		args := make([]uint16, numArgs)
		for j := range args {
			args[j] = r.readU2()
		}
		if r.err != nil {
			return nil, fmt.Errorf("bootstrap method %d: %w", i, r.err)
		}
		bm.BootstrapMethods = append(bm.BootstrapMethods, BootstrapMethod{
			BootstrapMethodRef: methodRef,
			BootstrapArguments: args,
		})
	}
	if r.err != nil {
		return nil, r.err
	}
	return bm, nil
}
