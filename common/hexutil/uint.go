package hexutil

import (
	"encoding/json"
	"reflect"
	"strconv"
)

// Uint marshals/unmarshals as a JSON string with 0x prefix. The zero value
// marshals as "0x0".
type Uint uint

// MarshalText implements encoding.TextMarshaler.
func (b Uint) MarshalText() ([]byte, error) {
	buf := make([]byte, 2, 10)
	copy(buf, "0x")
	buf = strconv.AppendUint(buf, uint64(b), 16)
	return buf, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Uint) UnmarshalJSON(input []byte) error {
	if !isString(input) {
		return &json.UnmarshalTypeError{Value: "non-string", Type: reflect.TypeOf(Uint(0))}
	}
	return b.UnmarshalText(input[1 : len(input)-1])
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Uint) UnmarshalText(input []byte) error {
	raw, err := checkNumberText(input)
	if err != nil {
		return err
	}
	if len(raw) > 16 {
		return ErrUintRange
	}
	var result uint64
	for _, c := range raw {
		nib := decodeNibble(c)
		if nib == badNibble {
			return ErrSyntax
		}
		result = result<<4 | nib
	}
	if uint64(uint(result)) != result {
		return ErrUintRange
	}
	*b = Uint(result)
	return nil
}

// String returns the hex encoding of b.
func (b Uint) String() string {
	return EncodeUint64(uint64(b))
}
