package wasmpack

import (
	"bytes"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestCompressBytesRoundTrips(t *testing.T) {
	wasm := bytes.Repeat([]byte{0x00, 0x61, 0x73, 0x6d}, 64) // repeated WASM magic, compresses well
	compressed, err := CompressBytes(wasm)
	if err != nil {
		t.Fatalf("CompressBytes: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("compressed output is empty")
	}
	got, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, wasm) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(wasm))
	}
}

func TestCompressBytesIsDeterministic(t *testing.T) {
	wasm := []byte("a small wasm-shaped blob for determinism checking")
	a, err := CompressBytes(wasm)
	if err != nil {
		t.Fatalf("CompressBytes: %v", err)
	}
	b, err := CompressBytes(wasm)
	if err != nil {
		t.Fatalf("CompressBytes: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("CompressBytes produced different output for identical input")
	}
}
