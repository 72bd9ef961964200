package evmasm

// Object is a named, recursive unit of the assembly tree: the root
// deployment object contains at most one child runtime object (Structure
// rejects more; Substitute and Rewrite require exactly one). Each object
// owns an ordered token sequence (with nested ObjectBegin/ObjectEnd ranges
// replaced by a pointer to the child Object), a label table, and a data-item
// table. After layout, Size and Code are populated.
type Object struct {
	Name     string
	Elements []Element
	Children map[string]*Object // keyed by child object Name

	labels map[string]*labelDef
	data   map[string]*dataItem

	// Offset is this object's start offset within its parent's bytecode (it
	// lies in the parent's tail region, after the parent's code), set by
	// Layout once the parent has sized everything that precedes it.
	// Meaningless for the root.
	Offset int
	Size   int
	Code   []byte

	// leaf marks an object whose Size/Code were set directly by Substitute
	// rather than derived from Elements; Layout/Assemble must not recompute
	// them from an Elements slice that no longer reflects reality.
	leaf bool
}

// Element is one item of an Object's body: either a Token that is not a
// nested-object delimiter, or a reference to a child Object.
type Element struct {
	Token *Token
	Child *Object
}

type labelDef struct {
	offset int
	seen   bool
}

type dataItem struct {
	bytes      []byte
	offset     int
	referenced bool
	// object is not set by any code in this package: runtime substitution
	// (Substitute) replaces the child Object's contents in place and adds no
	// data item.
	object *Object
}

func newObject(name string) *Object {
	return &Object{
		Name:     name,
		Children: make(map[string]*Object),
		labels:   make(map[string]*labelDef),
		data:     make(map[string]*dataItem),
	}
}
