package evmasm

import "fmt"

// Structure walks a flat Token stream into a tree of Objects, the root being
// the deployment object. It enforces: balanced object braces, unique label
// ids within an object, and that every label/data reference resolves to a
// definition reachable from the referencing object (the same object or a
// directly-nested child). It returns any non-fatal warnings (data regions
// defined but never referenced) alongside the tree.
func Structure(tokens []Token) (*Object, []string, error) {
	pos := 0
	root, err := buildObject(tokens, &pos, "", false)
	if err != nil {
		return nil, nil, err
	}
	if pos != len(tokens) {
		return nil, nil, &StructureError{Msg: "unbalanced object braces: unexpected trailing \"}\""}
	}
	if len(root.Children) > 1 {
		return nil, nil, &StructureError{Msg: fmt.Sprintf("expected at most one nested runtime object, found %d", len(root.Children))}
	}
	if err := checkReferences(root); err != nil {
		return nil, nil, err
	}
	return root, collectWarnings(root), nil
}

func buildObject(tokens []Token, pos *int, name string, nested bool) (*Object, error) {
	obj := newObject(name)
	for *pos < len(tokens) {
		t := tokens[*pos]
		switch t.Kind {
		case ObjectEnd:
			if !nested {
				return nil, &StructureError{Msg: "unbalanced object braces: unexpected \"}\" at top level"}
			}
			*pos++
			return obj, nil

		case ObjectBegin:
			*pos++
			if _, exists := obj.Children[t.Name]; exists {
				return nil, &StructureError{LabelID: t.Name, Msg: "duplicate nested object"}
			}
			child, err := buildObject(tokens, pos, t.Name, true)
			if err != nil {
				return nil, err
			}
			obj.Children[t.Name] = child
			obj.Elements = append(obj.Elements, Element{Child: child})

		case LabelDef:
			if _, exists := obj.labels[t.LabelID]; exists {
				return nil, &StructureError{LabelID: t.LabelID, Msg: "duplicate label definition"}
			}
			obj.labels[t.LabelID] = &labelDef{}
			tok := t
			obj.Elements = append(obj.Elements, Element{Token: &tok})
			*pos++

		case Immutable:
			return nil, &StructureError{LabelID: t.LabelID, Msg: "immutable variable placeholder has no valid patch target once the runtime is WASM"}

		case DataBegin:
			if _, exists := obj.data[t.LabelID]; exists {
				return nil, &StructureError{LabelID: t.LabelID, Msg: "duplicate data region"}
			}
			obj.data[t.LabelID] = &dataItem{bytes: t.Data}
			tok := t
			obj.Elements = append(obj.Elements, Element{Token: &tok})
			*pos++

		default:
			tok := t
			obj.Elements = append(obj.Elements, Element{Token: &tok})
			*pos++
		}
	}
	if nested {
		return nil, &StructureError{Msg: "unbalanced object braces: missing closing \"}\""}
	}
	return obj, nil
}

// checkReferences verifies every PushLabel/PushData token in obj resolves
// to a LabelDef/DataBegin in obj itself or in one of obj's direct children,
// then recurses into children.
func checkReferences(obj *Object) error {
	for _, el := range obj.Elements {
		if el.Token == nil {
			continue
		}
		switch el.Token.Kind {
		case PushLabel:
			if !labelReachable(obj, el.Token.LabelID) {
				return &StructureError{LabelID: el.Token.LabelID, Msg: "reference to undefined label"}
			}
		case PushData:
			if !dataReachable(obj, el.Token.LabelID) {
				return &StructureError{LabelID: el.Token.LabelID, Msg: "reference to undefined data region"}
			}
		case PushSize, PushOffset:
			if _, ok := obj.Children[el.Token.Name]; !ok {
				return &StructureError{LabelID: el.Token.Name, Msg: "reference to undefined nested object"}
			}
		}
	}
	for _, child := range obj.Children {
		if err := checkReferences(child); err != nil {
			return err
		}
	}
	return nil
}

func labelReachable(obj *Object, id string) bool {
	if _, ok := obj.labels[id]; ok {
		return true
	}
	for _, child := range obj.Children {
		if _, ok := child.labels[id]; ok {
			return true
		}
	}
	return false
}

func dataReachable(obj *Object, id string) bool {
	if _, ok := obj.data[id]; ok {
		return true
	}
	for _, child := range obj.Children {
		if _, ok := child.data[id]; ok {
			return true
		}
	}
	return false
}

func markReferenced(obj *Object) {
	for _, el := range obj.Elements {
		if el.Token == nil {
			continue
		}
		switch el.Token.Kind {
		case PushLabel:
			if l, ok := obj.labels[el.Token.LabelID]; ok {
				l.seen = true
			} else {
				for _, child := range obj.Children {
					if l, ok := child.labels[el.Token.LabelID]; ok {
						l.seen = true
					}
				}
			}
		case PushData:
			if d, ok := obj.data[el.Token.LabelID]; ok {
				d.referenced = true
			} else {
				for _, child := range obj.Children {
					if d, ok := child.data[el.Token.LabelID]; ok {
						d.referenced = true
					}
				}
			}
		}
	}
	for _, child := range obj.Children {
		markReferenced(child)
	}
}

func collectWarnings(root *Object) []string {
	markReferenced(root)
	var warnings []string
	var walk func(obj *Object)
	walk = func(obj *Object) {
		for id, d := range obj.data {
			if !d.referenced {
				warnings = append(warnings, fmt.Sprintf("data region %q defined but never referenced", id))
			}
		}
		for _, child := range obj.Children {
			walk(child)
		}
	}
	walk(root)
	return warnings
}
