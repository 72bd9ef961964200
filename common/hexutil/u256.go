package hexutil

import (
	"encoding/json"
	"reflect"

	"github.com/holiman/uint256"
)

// U256 marshals/unmarshals as a JSON string with 0x prefix. The zero value
// marshals as "0x0".
type U256 uint256.Int

// MarshalText implements encoding.TextMarshaler.
func (b U256) MarshalText() ([]byte, error) {
	u := (uint256.Int)(b)
	return []byte(u.Hex()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *U256) UnmarshalJSON(input []byte) error {
	if !isString(input) {
		return &json.UnmarshalTypeError{Value: "non-string", Type: reflect.TypeOf(U256{})}
	}
	return b.UnmarshalText(input[1 : len(input)-1])
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *U256) UnmarshalText(input []byte) error {
	var u uint256.Int
	if err := u.UnmarshalText(input); err != nil {
		return err
	}
	*b = U256(u)
	return nil
}

// ToInt converts b to a uint256.Int.
func (b *U256) ToInt() *uint256.Int {
	if b == nil {
		return nil
	}
	return (*uint256.Int)(b)
}

// String returns the hex encoding of b.
func (b *U256) String() string {
	if b == nil {
		return "0x0"
	}
	return (*uint256.Int)(b).Hex()
}
