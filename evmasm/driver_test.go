package evmasm

import (
	"bytes"
	"testing"
)

// emptyConstructorSource is a minimal deploy object shaped like what a
// Solidity compiler emits for a constructor with no body: compute the
// runtime size/offset, CODECOPY it to memory, RETURN it.
const emptyConstructorSource = `datasize(sub_0)
dup1
dataoffset(sub_0)
PUSH1 0x00
CODECOPY
PUSH1 0x00
RETURN
sub_0: assembly {
STOP
}
`

// TestRewriteS1EmptyConstructorNoArgs covers scenario S1.
func TestRewriteS1EmptyConstructorNoArgs(t *testing.T) {
	env := bytes.Repeat([]byte{0x42}, 24) // E(W), |E(W)| = 24 per the seed scenarios
	out, err := Rewrite([]byte(emptyConstructorSource), env, nil)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !bytes.HasSuffix(out, env) {
		t.Fatalf("runtime region is not E(W) verbatim")
	}
	deployCode := out[:len(out)-len(env)]
	if !bytes.Contains(deployCode, []byte{0x18}) {
		t.Errorf("expected literal 0x18 (24) as the CODECOPY-size immediate, got % x", deployCode)
	}
}

// TestRewriteS2ConstructorStorageWrite covers scenario S2.
func TestRewriteS2ConstructorStorageWrite(t *testing.T) {
	src := `PUSH1 0x05
PUSH1 0x00
SSTORE
datasize(sub_0)
dup1
dataoffset(sub_0)
PUSH1 0x00
CODECOPY
PUSH1 0x00
RETURN
sub_0: assembly {
STOP
}
`
	env := bytes.Repeat([]byte{0x42}, 24)
	out, err := Rewrite([]byte(src), env, nil)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := []byte{0x60, 0x05, 0x60, 0x00, 0x55} // PUSH1 0x05, PUSH1 0x00, SSTORE
	if !bytes.HasPrefix(out, want) {
		t.Fatalf("deploy code does not start with the storage write: % x", out[:len(want)])
	}
	if !bytes.HasSuffix(out, env) {
		t.Fatalf("runtime region is not E(W) verbatim")
	}
}

// TestRewriteS3ConstructorArgTail covers the tail half of scenario S3: one
// ABI-encoded uint256 argument is appended verbatim after the envelope. The
// listing used here has no argument-loading CODECOPY, so the offset that
// such a CODECOPY would use is not checked.
func TestRewriteS3ConstructorArgTail(t *testing.T) {
	src := `datasize(sub_0)
dup1
dataoffset(sub_0)
PUSH1 0x00
CODECOPY
PUSH1 0x00
RETURN
sub_0: assembly {
STOP
}
`
	env := bytes.Repeat([]byte{0x42}, 24)
	arg := append(bytes.Repeat([]byte{0x00}, 31), 0x2a) // uint256(42)
	out, err := Rewrite([]byte(src), env, arg)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !bytes.HasSuffix(out, arg) {
		t.Fatalf("expected output to end with the 32-byte ctor arg, got % x", out[len(out)-32:])
	}
	deployAndRuntime := out[:len(out)-len(arg)]
	if !bytes.HasSuffix(deployAndRuntime, env) {
		t.Fatalf("runtime region is not E(W) verbatim")
	}
}

// TestRewriteS6UndefinedLabelFailsClean covers scenario S6: a reference to
// an undefined tag fails with a StructureError and produces no output.
func TestRewriteS6UndefinedLabelFailsClean(t *testing.T) {
	src := "PUSH tag 99\nsub_0: assembly {\nSTOP\n}\n"
	out, err := Rewrite([]byte(src), []byte{0x01}, nil)
	if err == nil {
		t.Fatal("expected error for undefined tag_99")
	}
	if out != nil {
		t.Fatalf("expected no partial output, got % x", out)
	}
	se, ok := err.(*StructureError)
	if !ok {
		t.Fatalf("got %T, want *StructureError", err)
	}
	if se.LabelID != "99" {
		t.Errorf("got LabelID %q, want %q", se.LabelID, "99")
	}
}

// TestRewriteDeterminism covers invariant 5.
func TestRewriteDeterminism(t *testing.T) {
	env := bytes.Repeat([]byte{0x07}, 24)
	out1, err := Rewrite([]byte(emptyConstructorSource), env, []byte{0xaa})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	out2, err := Rewrite([]byte(emptyConstructorSource), env, []byte{0xaa})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !bytes.Equal(out1, out2) {
		t.Fatalf("non-deterministic output:\n%x\n%x", out1, out2)
	}
}

// TestNoConstructorPreludeS4 covers scenario S4.
func TestNoConstructorPreludeS4(t *testing.T) {
	env := bytes.Repeat([]byte{0x09}, 24)
	out, err := NoConstructorPrelude(env)
	if err != nil {
		t.Fatalf("NoConstructorPrelude: %v", err)
	}
	if len(out) != 42+len(env) {
		t.Fatalf("got %d bytes, want %d", len(out), 42+len(env))
	}
	if !bytes.Equal(out[42:], env) {
		t.Fatalf("envelope does not start at byte 42")
	}
	wantPrelude := []byte{
		0x7f, // PUSH32
	}
	if out[0] != wantPrelude[0] {
		t.Fatalf("got opcode %#x, want PUSH32", out[0])
	}
	if out[33] != 0x80 { // DUP1
		t.Fatalf("got %#x at offset 33, want DUP1", out[33])
	}
	if out[34] != 0x60 || out[35] != 0x2a { // PUSH1 0x2a
		t.Fatalf("got % x at offset 34, want PUSH1 0x2a", out[34:36])
	}
	if out[38] != 0x39 { // CODECOPY
		t.Fatalf("got %#x at offset 38, want CODECOPY", out[38])
	}
	if out[41] != 0xf3 { // RETURN
		t.Fatalf("got %#x at offset 41, want RETURN", out[41])
	}
}
