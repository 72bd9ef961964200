package asm

// String implements fmt.Stringer for tokenType. Normally generated via
// `go run golang.org/x/tools/cmd/stringer -type tokenType` (see the
// go:generate directive in lexer.go).
func (i tokenType) String() string {
	switch i {
	case eof:
		return "eof"
	case lineStart:
		return "lineStart"
	case lineEnd:
		return "lineEnd"
	case invalidStatement:
		return "invalidStatement"
	case element:
		return "element"
	case label:
		return "label"
	case labelDef:
		return "labelDef"
	case number:
		return "number"
	case stringValue:
		return "stringValue"
	default:
		return "tokenType(unknown)"
	}
}
