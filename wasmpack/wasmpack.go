// Package wasmpack compresses a WASM module for Stylus activation.
package wasmpack

import (
	"bytes"
	"fmt"
	"os"

	"github.com/andybalholm/brotli"

	"github.com/stylus-tools/ctorasm/envelope"
	"github.com/stylus-tools/ctorasm/log"
)

// CompressionLevel is brotli's maximum quality setting, matching the
// reference tool's use of brotli2::read::BrotliEncoder at level 11.
const CompressionLevel = 11

// Compress reads the WASM module at path and returns its brotli-compressed
// bytes at CompressionLevel.
func Compress(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wasmpack: read %s: %w", path, err)
	}
	return CompressBytes(raw)
}

// CompressBytes brotli-compresses an in-memory WASM module.
func CompressBytes(wasm []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, CompressionLevel)
	if _, err := w.Write(wasm); err != nil {
		return nil, fmt.Errorf("wasmpack: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("wasmpack: compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Envelope compresses the WASM module at path and wraps it in the Stylus
// activation envelope, logging the size reduction for user-visible
// feedback.
func Envelope(path string, logger log.Logger) ([]byte, error) {
	if logger == nil {
		logger = log.Root()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wasmpack: read %s: %w", path, err)
	}
	compressed, err := CompressBytes(raw)
	if err != nil {
		return nil, err
	}
	logger.Info("compressed wasm", "path", path, "raw_bytes", len(raw), "compressed_bytes", len(compressed))
	return envelope.Build(compressed), nil
}
