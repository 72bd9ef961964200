package evmasm

import (
	"fmt"

	"github.com/stylus-tools/ctorasm/core/vm"
)

// Assemble emits the concrete bytecode for the tree rooted at root,
// populating Object.Code at every level (§4.4). Layout must have already
// converged on root; Assemble does not iterate, it only encodes.
func Assemble(root *Object) error {
	return assembleObject(root)
}

func assembleObject(obj *Object) error {
	if obj.leaf {
		return nil
	}
	for _, el := range obj.Elements {
		if el.Child != nil {
			if err := assembleObject(el.Child); err != nil {
				return err
			}
		}
	}

	code, tail := splitElements(obj)

	var out []byte
	for _, el := range code {
		b, err := encodeElement(obj, el.Token)
		if err != nil {
			return err
		}
		out = append(out, b...)
	}
	for _, el := range tail {
		if el.Token != nil {
			out = append(out, el.Token.Data...)
		} else {
			out = append(out, el.Child.Code...)
		}
	}
	obj.Code = out
	return nil
}

func encodeElement(obj *Object, t *Token) ([]byte, error) {
	switch t.Kind {
	case LabelDef:
		return nil, nil

	case Op:
		op := vm.StringToOp(t.Mnemonic)
		if op == vm.OpCode(0) && t.Mnemonic != "STOP" {
			return nil, &EncodingError{Msg: fmt.Sprintf("line %d: unknown mnemonic %q", t.Line, t.Mnemonic)}
		}
		return []byte{byte(op)}, nil

	case Push:
		width := t.Width
		if !t.ExplicitWidth {
			width = len(t.Value)
		}
		return encodePushValue(t.Value, width)

	case PushLabel:
		off, err := resolveLabelOffset(obj, t.LabelID)
		if err != nil {
			return nil, err
		}
		return encodePushInt(off, t.Width)

	case PushData:
		off, err := resolveDataOffset(obj, t.LabelID)
		if err != nil {
			return nil, err
		}
		return encodePushInt(off, t.Width)

	case PushSize:
		child, ok := obj.Children[t.Name]
		if !ok {
			return nil, &StructureError{LabelID: t.Name, Msg: "reference to undefined nested object"}
		}
		return encodePushInt(child.Size, t.Width)

	case PushOffset:
		child, ok := obj.Children[t.Name]
		if !ok {
			return nil, &StructureError{LabelID: t.Name, Msg: "reference to undefined nested object"}
		}
		return encodePushInt(child.Offset, t.Width)

	default:
		return nil, &EncodingError{Msg: fmt.Sprintf("line %d: token kind %s is not an instruction", t.Line, t.Kind)}
	}
}

// pushOpcode returns the PUSH<width> opcode byte, width in [0,32].
func pushOpcode(width int) (byte, error) {
	if width < 0 || width > 32 {
		return 0, &EncodingError{Msg: fmt.Sprintf("push width %d out of range", width)}
	}
	return byte(vm.PUSH0) + byte(width), nil
}

func encodePushValue(value []byte, width int) ([]byte, error) {
	if len(value) > width {
		return nil, &EncodingError{Msg: fmt.Sprintf("push value %x does not fit in %d byte(s)", value, width)}
	}
	op, err := pushOpcode(width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+width)
	out[0] = op
	copy(out[1+width-len(value):], value)
	return out, nil
}

func encodePushInt(v, width int) ([]byte, error) {
	if minWidth(v) > width {
		return nil, &EncodingError{Msg: fmt.Sprintf("resolved value %d does not fit in %d byte(s)", v, width)}
	}
	op, err := pushOpcode(width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+width)
	out[0] = op
	for i := width; i > 0 && v > 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out, nil
}
