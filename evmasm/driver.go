package evmasm

// Rewrite is the pure driver described by the design: it tokenizes a
// compiler-emitted assembly listing, structures it into an object tree,
// substitutes envelope for the single nested runtime object, assembles the
// rewritten deployment object, and appends the ABI-encoded constructor
// argument tail verbatim. No I/O, no global state; identical inputs always
// produce identical output (§8 invariant 5).
func Rewrite(assemblyText []byte, envelope []byte, abiArgs []byte) ([]byte, error) {
	tokens, err := Lex(assemblyText)
	if err != nil {
		return nil, err
	}
	root, _, err := Structure(tokens)
	if err != nil {
		return nil, err
	}
	if len(root.Children) != 1 {
		return nil, &StructureError{Msg: "rewrite requires exactly one nested runtime object"}
	}
	if err := Substitute(root, envelope); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(root.Code)+len(abiArgs))
	out = append(out, root.Code...)
	out = append(out, abiArgs...)
	return out, nil
}

// NoConstructorPrelude builds the fixed, minimal deployment bytecode used
// when the caller supplies no Solidity source: a 42-byte prelude that
// CODECOPYs and returns envelope verbatim, with no constructor-arg tail
// (§4.5 "No-constructor path").
//
//	PUSH32 <len(envelope)>
//	DUP1
//	PUSH1  0x2a   ; data offset: the prelude is exactly 42 bytes
//	PUSH1  0x00
//	CODECOPY
//	PUSH1  0x00
//	RETURN
func NoConstructorPrelude(envelope []byte) ([]byte, error) {
	lenPush, err := encodePushInt(len(envelope), 32)
	if err != nil {
		return nil, err
	}
	prelude := []byte{}
	prelude = append(prelude, lenPush...) // PUSH32 <len>
	prelude = append(prelude, 0x80)       // DUP1
	prelude = append(prelude, 0x60, 0x2a) // PUSH1 0x2a
	prelude = append(prelude, 0x60, 0x00) // PUSH1 0x00
	prelude = append(prelude, 0x39)       // CODECOPY
	prelude = append(prelude, 0x60, 0x00) // PUSH1 0x00
	prelude = append(prelude, 0xf3)       // RETURN
	if len(prelude) != 42 {
		return nil, &EncodingError{Msg: "no-constructor prelude must be exactly 42 bytes"}
	}
	out := make([]byte, 0, len(prelude)+len(envelope))
	out = append(out, prelude...)
	out = append(out, envelope...)
	return out, nil
}
