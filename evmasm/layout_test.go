package evmasm

import (
	"bytes"
	"testing"
)

func compile(t *testing.T, src string) *Object {
	t.Helper()
	toks, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	root, _, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if err := Layout(root); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if err := Assemble(root); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return root
}

// TestRoundTripNoLabels exercises invariant 1 for a source with no
// labels at all: Assemble must reproduce exactly the bytes a literal
// reading of the mnemonics/pushes implies.
func TestRoundTripNoLabels(t *testing.T) {
	root := compile(t, "PUSH1 0x05\nPUSH1 0x00\nSSTORE\nSTOP\n")
	want := []byte{0x60, 0x05, 0x60, 0x00, 0x55, 0x00}
	if !bytes.Equal(root.Code, want) {
		t.Fatalf("got % x, want % x", root.Code, want)
	}
}

// TestLabelResolution covers invariant 2: a PushLabel must encode the byte
// offset at which the referenced LabelDef appears.
func TestLabelResolution(t *testing.T) {
	// PUSH tag 1 (2 bytes: PUSH1 + 1-byte offset), then JUMP (1 byte),
	// then JUMPDEST at offset 3.
	root := compile(t, "PUSH tag 1\nJUMP\ntag_1:\nJUMPDEST\n")
	if len(root.Code) != 4 {
		t.Fatalf("got %d bytes, want 4: % x", len(root.Code), root.Code)
	}
	if root.Code[0] != 0x60 || root.Code[1] != 0x03 {
		t.Fatalf("got % x, want PUSH1 0x03 prefix", root.Code[:2])
	}
	if root.Code[3] != 0x5b {
		t.Fatalf("JUMPDEST not at expected offset: % x", root.Code)
	}
}

// TestMinimalWidth covers invariant 3: an implicit-width label push must use
// the smallest width that holds the resolved offset, and explicit widths
// are never resized.
func TestMinimalWidth(t *testing.T) {
	root := compile(t, "PUSH tag 1\ntag_1:\nSTOP\n")
	if root.Code[0] != 0x60 { // PUSH1: resolved offset 2 fits one byte
		t.Fatalf("got opcode %#x, want PUSH1", root.Code[0])
	}

	root = compile(t, "PUSH4 0x00000002\ntag_1:\nSTOP\n")
	if root.Code[0] != 0x63 { // PUSH4, explicit, never shrunk
		t.Fatalf("got opcode %#x, want PUSH4", root.Code[0])
	}
}

// TestLabelWidening covers S5: growing the number of intervening pushes so
// a label's offset crosses the 255/256 boundary must grow that label's
// push width from 1 to 2 bytes and shift everything after it accordingly.
func TestLabelWidening(t *testing.T) {
	var src bytes.Buffer
	src.WriteString("PUSH tag 1\n")
	for i := 0; i < 127; i++ {
		src.WriteString("PUSH1 0x01\n")
	}
	src.WriteString("tag_1:\nJUMPDEST\n")
	root := compile(t, src.String())

	// 127 PUSH1 instructions * 2 bytes = 254 bytes, plus the initial
	// PUSH-of-tag_1 (2 bytes while width stays 1) would put tag_1 at offset
	// 256 if the pointer stayed 1 byte, forcing it to widen to 2.
	if root.Code[0] != 0x61 {
		t.Fatalf("got opcode %#x, want PUSH2 (label offset crossed 256)", root.Code[0])
	}
}

func TestLayoutObjectSizeAndOffsetPushes(t *testing.T) {
	src := `datasize(sub_0)
dataoffset(sub_0)
sub_0: assembly {
PUSH1 0x05
PUSH1 0x00
SSTORE
}
`
	root := compile(t, src)
	// datasize(sub_0): child code is PUSH1 PUSH1 SSTORE = 5 bytes -> PUSH1 0x05
	if root.Code[0] != 0x60 || root.Code[1] != 0x05 {
		t.Fatalf("datasize push wrong: % x", root.Code[:2])
	}
	// dataoffset(sub_0): child starts right after the two 2-byte pushes above -> offset 4
	if root.Code[2] != 0x60 || root.Code[3] != 0x04 {
		t.Fatalf("dataoffset push wrong: % x", root.Code[2:4])
	}
	if len(root.Code) != 4+5 {
		t.Fatalf("got %d bytes, want 9: % x", len(root.Code), root.Code)
	}
}
