package evmasm

import "fmt"

// LexError reports an unrecognized token, malformed hex literal, or unknown
// mnemonic encountered while tokenizing the source listing.
type LexError struct {
	Line int
	Msg  string
	Err  error
}

func (e *LexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *LexError) Unwrap() error { return e.Err }

// StructureError reports an unbalanced object, a duplicate label, or a
// reference to an undefined label or data item.
type StructureError struct {
	LabelID string
	Msg     string
}

func (e *StructureError) Error() string {
	if e.LabelID != "" {
		return fmt.Sprintf("%s: %s", e.LabelID, e.Msg)
	}
	return e.Msg
}

// LayoutError reports that the labeler's fixed-point iteration failed to
// converge within its cap. A non-terminating layout indicates a bug in the
// labeler itself (widths are supposed to be monotonically non-decreasing),
// not a malformed input.
type LayoutError struct {
	Iterations int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout did not converge after %d iterations", e.Iterations)
}

// EncodingError reports that a resolved value does not fit its declared
// push width, or that supplied ABI-argument hex is malformed.
type EncodingError struct {
	Msg string
}

func (e *EncodingError) Error() string {
	return e.Msg
}
