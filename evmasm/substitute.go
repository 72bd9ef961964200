package evmasm

import "fmt"

// Substitute replaces the single nested runtime object under root with the
// activation envelope bytes, then re-runs layout and assembly on root so
// every PushSize/PushOffset/PushLabel that depended on the original
// runtime's size picks up the envelope's size instead (§4.5).
//
// The replaced object keeps its identity (name, and therefore its entry in
// root.Children) so PushSize(sub_N)/PushOffset(sub_N) references already
// checked by Structure continue to resolve; only its contents change, from
// a nested token tree to an opaque data blob.
func Substitute(root *Object, env []byte) error {
	if len(root.Children) != 1 {
		return &StructureError{Msg: fmt.Sprintf("expected exactly one runtime object to substitute, found %d", len(root.Children))}
	}
	var runtime *Object
	for _, c := range root.Children {
		runtime = c
	}

	runtime.Elements = nil
	runtime.Children = make(map[string]*Object)
	runtime.labels = make(map[string]*labelDef)
	runtime.data = make(map[string]*dataItem)
	runtime.Code = append([]byte(nil), env...)
	runtime.Size = len(env)
	runtime.Offset = 0
	runtime.leaf = true

	if err := Layout(root); err != nil {
		return err
	}
	return Assemble(root)
}
