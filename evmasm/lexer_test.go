package evmasm

import (
	"testing"
)

func TestLexBasicOps(t *testing.T) {
	src := []byte("PUSH1 0x05\nPUSH1 0x00\nSSTORE\nSTOP\n")
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []Kind{Push, Push, Op, Op}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[1].Value[0] != 0x00 {
		t.Errorf("token 1 value = %x, want 00", toks[1].Value)
	}
}

func TestLexExplicitWidth(t *testing.T) {
	toks, err := Lex([]byte("PUSH4 0x01020304\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if !toks[0].ExplicitWidth || toks[0].Width != 4 {
		t.Fatalf("got ExplicitWidth=%v Width=%d, want true/4", toks[0].ExplicitWidth, toks[0].Width)
	}
}

func TestLexLabelsAndData(t *testing.T) {
	src := []byte(`tag_1:
PUSH tag 1
PUSH data_a1
data_a1 cafe
sub_0: assembly {
STOP
}
`)
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []Kind{LabelDef, PushLabel, PushData, DataBegin, ObjectBegin, Op, ObjectEnd}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[3].LabelID != "a1" || string(toks[3].Data) != "\xca\xfe" {
		t.Errorf("data token malformed: %+v", toks[3])
	}
}

func TestLexObjectSizeAndOffset(t *testing.T) {
	toks, err := Lex([]byte("datasize(sub_0)\ndataoffset(sub_0)\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Kind != PushSize || toks[0].Name != "0" {
		t.Errorf("got %+v, want PushSize name 0", toks[0])
	}
	if toks[1].Kind != PushOffset || toks[1].Name != "0" {
		t.Errorf("got %+v, want PushOffset name 0", toks[1])
	}
}

func TestLexImmutable(t *testing.T) {
	toks, err := Lex([]byte(`PUSHIMMUTABLE("slot")` + "\n" + `ASSIGNIMMUTABLE("slot")` + "\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(toks) != 2 || toks[0].Kind != Immutable || toks[1].Kind != Immutable {
		t.Fatalf("got %+v, want two Immutable tokens", toks)
	}
	if toks[0].LabelID != "slot" || toks[1].LabelID != "slot" {
		t.Errorf("got label ids %q/%q, want \"slot\"", toks[0].LabelID, toks[1].LabelID)
	}
}

func TestLexUnknownMnemonic(t *testing.T) {
	_, err := Lex([]byte("NOTANOPCODE\n"))
	if err == nil {
		t.Fatal("expected error for unknown mnemonic")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("got %T, want *LexError", err)
	}
}

func TestLexStopIsNotMistakenForUnknown(t *testing.T) {
	toks, err := Lex([]byte("STOP\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Kind != Op || toks[0].Mnemonic != "STOP" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexCommentsAndBlankLines(t *testing.T) {
	toks, err := Lex([]byte("// a comment\n\nSTOP // trailing\n"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(toks) != 1 || toks[0].Mnemonic != "STOP" {
		t.Fatalf("got %+v", toks)
	}
}
