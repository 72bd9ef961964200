package evmasm

import "testing"

func mustLex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	return toks
}

func TestStructureNestedObject(t *testing.T) {
	src := `PUSH1 0x00
sub_0: assembly {
STOP
}
`
	root, warnings, err := Structure(mustLex(t, src))
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	if _, ok := root.Children["0"]; !ok {
		t.Fatalf("missing child %q", "0")
	}
}

func TestStructureRejectsMultipleRuntimeObjects(t *testing.T) {
	src := `sub_0: assembly {
STOP
}
sub_1: assembly {
STOP
}
`
	_, _, err := Structure(mustLex(t, src))
	if err == nil {
		t.Fatal("expected error for multiple nested objects")
	}
	se, ok := err.(*StructureError)
	if !ok {
		t.Fatalf("got %T, want *StructureError", err)
	}
	if se.Msg == "" {
		t.Errorf("expected message naming the object count")
	}
}

func TestStructureUnbalancedBraces(t *testing.T) {
	_, _, err := Structure(mustLex(t, "sub_0: assembly {\nSTOP\n"))
	if err == nil {
		t.Fatal("expected error for missing closing brace")
	}
	_, _, err = Structure(mustLex(t, "STOP\n}\n"))
	if err == nil {
		t.Fatal("expected error for unexpected closing brace")
	}
}

func TestStructureUndefinedLabelReference(t *testing.T) {
	_, _, err := Structure(mustLex(t, "PUSH tag 99\n"))
	if err == nil {
		t.Fatal("expected error for undefined tag_99")
	}
	se, ok := err.(*StructureError)
	if !ok {
		t.Fatalf("got %T, want *StructureError", err)
	}
	if se.LabelID != "99" {
		t.Errorf("got LabelID %q, want %q", se.LabelID, "99")
	}
}

func TestStructureDuplicateLabel(t *testing.T) {
	_, _, err := Structure(mustLex(t, "tag_1:\ntag_1:\n"))
	if err == nil {
		t.Fatal("expected error for duplicate label")
	}
}

func TestStructureRejectsImmutablePlaceholder(t *testing.T) {
	_, _, err := Structure(mustLex(t, `PUSHIMMUTABLE("x")
PUSH1 0x00
MSTORE
`))
	if err == nil {
		t.Fatal("expected error for immutable variable placeholder")
	}
	se, ok := err.(*StructureError)
	if !ok {
		t.Fatalf("got %T, want *StructureError", err)
	}
	if se.LabelID != "x" {
		t.Errorf("got LabelID %q, want %q", se.LabelID, "x")
	}
}

func TestStructureWarnsUnreferencedData(t *testing.T) {
	_, warnings, err := Structure(mustLex(t, "data_a1 cafe\n"))
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}
