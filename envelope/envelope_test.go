package envelope

import (
	"bytes"
	"testing"
)

func TestBuildPrependsFixedPrefix(t *testing.T) {
	compressed := []byte{0x01, 0x02, 0x03}
	env := Build(compressed)
	if !bytes.HasPrefix(env, Prefix()) {
		t.Fatalf("envelope does not start with the fixed magic/version prefix: % x", env)
	}
	if !bytes.HasSuffix(env, compressed) {
		t.Fatalf("envelope does not end with the compressed payload: % x", env)
	}
	if len(env) != len(Prefix())+len(compressed) {
		t.Fatalf("got length %d, want %d", len(env), len(Prefix())+len(compressed))
	}
}

func TestLenMatchesBuild(t *testing.T) {
	compressed := bytes.Repeat([]byte{0x42}, 17)
	if got, want := Len(len(compressed)), len(Build(compressed)); got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}

func TestSplitReversesBuild(t *testing.T) {
	compressed := []byte{0xde, 0xad, 0xbe, 0xef}
	env := Build(compressed)
	prefix, payload, ok := Split(env)
	if !ok {
		t.Fatal("Split failed on a well-formed envelope")
	}
	if !bytes.Equal(prefix, Prefix()) {
		t.Fatalf("got prefix % x, want % x", prefix, Prefix())
	}
	if !bytes.Equal(payload, compressed) {
		t.Fatalf("got payload % x, want % x", payload, compressed)
	}
}

func TestSplitRejectsTooShort(t *testing.T) {
	if _, _, ok := Split([]byte{0x01, 0x02}); ok {
		t.Fatal("expected Split to reject an envelope shorter than the fixed prefix")
	}
}
