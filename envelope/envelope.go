// Package envelope builds the Stylus VM activation envelope that a
// rewritten deployment's runtime region must contain: a fixed magic/version
// prefix followed by the caller's compressed WASM bytes. Construction is a
// pure, synchronous byte concatenation with no I/O and no global state.
package envelope

// eofMagic and versionByte together form the opaque 4-byte prefix the
// target VM expects before a compressed WASM program (the Stylus
// activation format's "EFF00000" marker). The exact bytes are dictated by
// the target VM and are tracked here as a single configurable constant
// rather than threaded through call sites.
var (
	eofMagic    = []byte{0xef, 0xf0, 0x00}
	versionByte = byte(0x00)
)

// Build returns E(compressed) = EOF_MAGIC || VERSION_BYTE || compressed.
func Build(compressed []byte) []byte {
	out := make([]byte, 0, len(eofMagic)+1+len(compressed))
	out = append(out, eofMagic...)
	out = append(out, versionByte)
	out = append(out, compressed...)
	return out
}

// Len reports |E(compressed)| without allocating, for callers that only
// need the length (e.g. the no-constructor prelude's PUSH32 immediate).
func Len(compressedLen int) int {
	return len(eofMagic) + 1 + compressedLen
}

// Split reverses Build, returning the magic+version prefix and the
// compressed WASM payload. It does not validate the magic bytes; callers
// that need to verify an envelope was produced by this tool should compare
// the prefix against Prefix().
func Split(env []byte) (prefix, compressed []byte, ok bool) {
	n := len(eofMagic) + 1
	if len(env) < n {
		return nil, nil, false
	}
	return env[:n], env[n:], true
}

// Prefix returns the fixed magic/version bytes every envelope starts with.
func Prefix() []byte {
	p := make([]byte, len(eofMagic)+1)
	copy(p, eofMagic)
	p[len(eofMagic)] = versionByte
	return p
}
