package evmasm

import (
	"bytes"
	"testing"

	"github.com/stylus-tools/ctorasm/core/asm"
)

// TestSubstituteLengthConsistency covers invariant 4: every "runtime
// length" push equals |E(W)| and every "runtime offset" push equals
// |deploy_code| after substitution.
func TestSubstituteLengthConsistency(t *testing.T) {
	src := `datasize(sub_0)
dup1
dataoffset(sub_0)
PUSH1 0x00
CODECOPY
PUSH1 0x00
RETURN
sub_0: assembly {
PUSH1 0x05
PUSH1 0x00
SSTORE
STOP
}
`
	toks, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	root, _, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}

	env := bytes.Repeat([]byte{0xab}, 24)
	if err := Substitute(root, env); err != nil {
		t.Fatalf("Substitute: %v", err)
	}

	// datasize push: PUSH1 0x18 (24)
	if root.Code[0] != 0x60 || root.Code[1] != byte(len(env)) {
		t.Fatalf("datasize push wrong: % x", root.Code[:2])
	}
	// the runtime region, wherever it lands, must be env verbatim.
	if !bytes.Contains(root.Code, env) {
		t.Fatalf("assembled code does not contain the envelope verbatim")
	}
	deployCodeLen := len(root.Code) - len(env)
	idx := bytes.Index(root.Code, env)
	if idx != deployCodeLen {
		t.Fatalf("envelope does not start immediately after deploy code: idx=%d deployCodeLen=%d", idx, deployCodeLen)
	}
}

// TestSubstituteProducesDisassemblableCode cross-checks the rewritten
// bytecode against the teacher's own disassembler (invariant 1's round-trip
// claim is only meaningful if the output is itself well-formed EVM code).
func TestSubstituteProducesDisassemblableCode(t *testing.T) {
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
	toks, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	root, _, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	env := bytes.Repeat([]byte{0xab}, 24)
	if err := Substitute(root, env); err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if _, err := asm.Disassemble(root.Code); err != nil {
		t.Fatalf("rewritten bytecode does not disassemble cleanly: %v", err)
	}
}

func TestSubstituteRequiresExactlyOneChild(t *testing.T) {
	toks, err := Lex([]byte("STOP\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	root, _, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if err := Substitute(root, []byte{0x01}); err == nil {
		t.Fatal("expected error substituting with no runtime object")
	}
}
