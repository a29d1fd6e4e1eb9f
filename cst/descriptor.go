package cst

import "strings"

// fieldType is a parsed JVM field descriptor.
type fieldType struct {
	baseType   string
	className  string
	arrayDepth int
}

func (ft *fieldType) human() string {
	var sb strings.Builder
	if ft.baseType != "" {
		sb.WriteString(ft.baseType)
	} else {
		sb.WriteString(strings.ReplaceAll(ft.className, "/", "."))
	}
	for i := 0; i < ft.arrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func parseFieldDescriptor(desc string) *fieldType {
	ft, n := parseFieldType(desc, 0)
	if ft == nil || n != len(desc) {
		return nil
	}
	return ft
}

func validMethodDescriptor(desc string) bool {
	if len(desc) == 0 || desc[0] != '(' {
		return false
	}

	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, consumed := parseFieldType(desc, i)
		if ft == nil || ft.baseType == "void" {
			return false
		}
		i += consumed
	}

	if i >= len(desc) || desc[i] != ')' {
		return false
	}
	i++

	ft, consumed := parseFieldType(desc, i)
	return ft != nil && i+consumed == len(desc)
}

func parseFieldType(desc string, start int) (*fieldType, int) {
	if start >= len(desc) {
		return nil, 0
	}

	ft := &fieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.arrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0
	}

	switch desc[i] {
	case 'B':
		ft.baseType = "byte"
	case 'C':
		ft.baseType = "char"
	case 'D':
		ft.baseType = "double"
	case 'F':
		ft.baseType = "float"
	case 'I':
		ft.baseType = "int"
	case 'J':
		ft.baseType = "long"
	case 'S':
		ft.baseType = "short"
	case 'Z':
		ft.baseType = "boolean"
	case 'V':
		if ft.arrayDepth > 0 {
			return nil, 0
		}
		ft.baseType = "void"
	case 'L':
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon <= 1 {
			return nil, 0
		}
		ft.className = desc[i+1 : i+semicolon]
		return ft, i - start + semicolon + 1
	default:
		return nil, 0
	}
	return ft, i - start + 1
}
