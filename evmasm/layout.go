package evmasm

import "fmt"

// maxLayoutIterations bounds the labeler's fixed-point loop. Widths are
// monotonically non-decreasing and bounded by 32, so convergence within a
// handful of iterations is guaranteed for any well-formed object; hitting
// the cap means the labeler itself has a bug, not that the input is bad.
const maxLayoutIterations = 64

// Layout resolves every label offset, data offset and nested-object
// offset/size in the tree rooted at root, choosing for each PushLabel,
// PushData and PushOffset the minimum push width that can hold its
// resolved value, iterating to a fixed point per object (§4.3). It
// populates Object.Size and Object.Code-independent offset bookkeeping;
// Assemble (§4.4) performs the actual byte emission afterwards.
func Layout(root *Object) error {
	return layoutObject(root)
}

func layoutObject(obj *Object) error {
	if obj.leaf {
		return nil
	}
	// Children are laid out bottom-up: a PushSize/PushOffset in obj can only
	// be resolved once the referenced child's own Size is known.
	for _, el := range obj.Elements {
		if el.Child != nil {
			if err := layoutObject(el.Child); err != nil {
				return err
			}
		}
	}

	codeElements, tailElements := splitElements(obj)

	// PushSize values are fixed the moment the child's Size is known: assign
	// their width once, up front, exactly like a literal Push. PushLabel,
	// PushData and PushOffset widths are not yet knowable; seed them at the
	// minimum (one byte) and let the fixed-point loop below grow them.
	for _, el := range codeElements {
		switch el.Token.Kind {
		case PushSize:
			child := obj.Children[el.Token.Name]
			el.Token.Width = minWidth(child.Size)
		case PushLabel, PushData, PushOffset:
			if el.Token.Width == 0 {
				el.Token.Width = 1
			}
		}
	}

	for iter := 0; ; iter++ {
		if iter > maxLayoutIterations {
			return &LayoutError{Iterations: iter}
		}

		pc := 0
		for _, el := range codeElements {
			t := el.Token
			if t.Kind == LabelDef {
				obj.labels[t.LabelID].offset = pc
				continue
			}
			pc += elementWidth(t)
		}
		codeSize := pc

		tailOffset := codeSize
		for _, el := range tailElements {
			if el.Token != nil { // DataBegin
				obj.data[el.Token.LabelID].offset = tailOffset
				tailOffset += len(el.Token.Data)
			} else { // nested object
				el.Child.Offset = tailOffset
				tailOffset += el.Child.Size
			}
		}
		obj.Size = tailOffset

		changed := false
		for _, el := range codeElements {
			t := el.Token
			switch t.Kind {
			case PushLabel:
				off, err := resolveLabelOffset(obj, t.LabelID)
				if err != nil {
					return err
				}
				if w := minWidth(off); w != t.Width {
					t.Width = w
					changed = true
				}
			case PushData:
				off, err := resolveDataOffset(obj, t.LabelID)
				if err != nil {
					return err
				}
				if w := minWidth(off); w != t.Width {
					t.Width = w
					changed = true
				}
			case PushOffset:
				child, ok := obj.Children[t.Name]
				if !ok {
					return &StructureError{LabelID: t.Name, Msg: "reference to undefined nested object"}
				}
				if w := minWidth(child.Offset); w != t.Width {
					t.Width = w
					changed = true
				}
			}
		}
		if !changed {
			return nil
		}
	}
}

// splitElements separates an object's body into the instructions that form
// its executable code and the trailing data/sub-object blobs appended after
// it, preserving each group's relative order. Source listings place data_
// and sub_ declarations after the code that references them, so this split
// mirrors the textual layout rather than inventing one.
func splitElements(obj *Object) (code, tail []Element) {
	for _, el := range obj.Elements {
		if el.Child != nil {
			tail = append(tail, el)
			continue
		}
		if el.Token.Kind == DataBegin {
			tail = append(tail, el)
			continue
		}
		code = append(code, el)
	}
	return code, tail
}

// elementWidth returns the total encoded byte length of a code-stream
// token: one opcode byte, plus the push-immediate width for the push
// family (LabelDef and other zero-width tokens return 0 via the default).
func elementWidth(t *Token) int {
	switch t.Kind {
	case Op:
		return 1
	case Push:
		if t.ExplicitWidth {
			return 1 + t.Width
		}
		return 1 + len(t.Value)
	case PushLabel, PushData, PushSize, PushOffset:
		return 1 + t.Width
	default:
		return 0
	}
}

func resolveLabelOffset(obj *Object, id string) (int, error) {
	if l, ok := obj.labels[id]; ok {
		return l.offset, nil
	}
	for _, child := range obj.Children {
		if l, ok := child.labels[id]; ok {
			return child.Offset + l.offset, nil
		}
	}
	return 0, &StructureError{LabelID: id, Msg: "reference to undefined label"}
}

func resolveDataOffset(obj *Object, id string) (int, error) {
	if d, ok := obj.data[id]; ok {
		return d.offset, nil
	}
	for _, child := range obj.Children {
		if d, ok := child.data[id]; ok {
			return child.Offset + d.offset, nil
		}
	}
	return 0, &StructureError{LabelID: id, Msg: "reference to undefined data region"}
}

// minWidth returns the fewest bytes needed to represent v, never less than
// one: offset (or size) zero still occupies a one-byte push.
func minWidth(v int) int {
	if v < 0 {
		panic(fmt.Sprintf("evmasm: negative offset/size %d", v))
	}
	w := 1
	for v >= (1 << (8 * w)) {
		w++
	}
	return w
}
