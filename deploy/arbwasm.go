package deploy

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	ethereum "github.com/stylus-tools/ctorasm"
	"github.com/stylus-tools/ctorasm/accounts/abi"
	"github.com/stylus-tools/ctorasm/common"
	"github.com/stylus-tools/ctorasm/core/types"
	"github.com/stylus-tools/ctorasm/ethclient"
	"github.com/stylus-tools/ctorasm/ethclient/gethclient"
)

// ArbWasmAddress is the fixed precompile address implementing Stylus
// program activation and version queries on an Arbitrum-Stylus chain.
var ArbWasmAddress = common.HexToAddress("0x0000000000000000000000000000000000000071")

const arbWasmABIJSON = `[
  {"type":"function","name":"activateProgram","stateMutability":"payable",
   "inputs":[{"name":"program","type":"address"}],
   "outputs":[{"name":"version","type":"uint16"},{"name":"dataFee","type":"uint256"}]},
  {"type":"function","name":"stylusVersion","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"version","type":"uint16"}]},
  {"type":"function","name":"codehashVersion","stateMutability":"view",
   "inputs":[{"name":"codehash","type":"bytes32"}],
   "outputs":[{"name":"version","type":"uint16"}]},
  {"type":"error","name":"ProgramNotWasm","inputs":[]},
  {"type":"error","name":"ProgramNotActivated","inputs":[]},
  {"type":"error","name":"ProgramNeedsUpgrade","inputs":[
    {"name":"version","type":"uint16"},{"name":"stylusVersion","type":"uint16"}]},
  {"type":"error","name":"ProgramExpired","inputs":[{"name":"ageInSeconds","type":"uint64"}]},
  {"type":"error","name":"ProgramUpToDate","inputs":[]},
  {"type":"error","name":"ProgramKeepaliveTooSoon","inputs":[{"name":"ageInSeconds","type":"uint64"}]},
  {"type":"error","name":"ProgramInsufficientValue","inputs":[
    {"name":"have","type":"uint256"},{"name":"want","type":"uint256"}]}
]`

// ArbWasm is a thin binding over the ArbWasm precompile, hand-written
// against the ABI package rather than generated, since only three methods
// and a handful of custom errors are needed.
type ArbWasm struct {
	abi  abi.ABI
	geth *gethclient.Client
}

// NewArbWasm parses the embedded ABI and binds it to client.
func NewArbWasm(client *ethclient.Client) (*ArbWasm, error) {
	parsed, err := abi.JSON(strings.NewReader(arbWasmABIJSON))
	if err != nil {
		return nil, fmt.Errorf("deploy: parse ArbWasm ABI: %w", err)
	}
	return &ArbWasm{abi: parsed, geth: gethclient.New(client.Client())}, nil
}

// StylusVersion returns the chain's current Stylus version.
func (a *ArbWasm) StylusVersion(ctx context.Context) (uint16, error) {
	out, err := a.call(ctx, "stylusVersion")
	if err != nil {
		return 0, err
	}
	return out[0].(uint16), nil
}

// CodehashVersion returns the activated Stylus version for the given
// program codehash, or an ArbWasmError wrapping ProgramNotActivated if it
// has never been activated.
func (a *ArbWasm) CodehashVersion(ctx context.Context, codehash common.Hash) (uint16, error) {
	out, err := a.call(ctx, "codehashVersion", codehash)
	if err != nil {
		return 0, err
	}
	return out[0].(uint16), nil
}

// EstimateActivationFee reads the data fee activateProgram would charge for
// a program not yet deployed on-chain, using a state override to pretend
// addr already holds runtimeCode (mirroring the reference tool's
// eth_call-with-override probe, since activateProgram requires the program
// to already exist as deployed code).
func (a *ArbWasm) EstimateActivationFee(ctx context.Context, addr common.Address, runtimeCode []byte, from common.Address) (*uint256.Int, error) {
	input, err := a.abi.Pack("activateProgram", addr)
	if err != nil {
		return nil, fmt.Errorf("deploy: pack activateProgram: %w", err)
	}
	overrides := map[common.Address]gethclient.OverrideAccount{
		addr: {Code: runtimeCode},
	}
	msg := ethereum.CallMsg{
		From:  from,
		To:    &ArbWasmAddress,
		Data:  input,
		Value: big.NewInt(1_000000000_000000000), // 1 ether, an intentionally generous ceiling
	}
	raw, err := a.geth.CallContract(ctx, msg, nil, &overrides)
	if err != nil {
		return nil, translateArbWasmError(err)
	}
	out, err := a.abi.Unpack("activateProgram", raw)
	if err != nil {
		return nil, fmt.Errorf("deploy: unpack activateProgram return: %w", err)
	}
	fee, overflow := uint256.FromBig(out[1].(*big.Int))
	if overflow {
		return nil, fmt.Errorf("deploy: activateProgram data fee overflows uint256")
	}
	return fee, nil
}

// ActivateProgram builds the activateProgram transaction; the caller signs
// and sends it via Driver.
func (a *ArbWasm) ActivateProgram(addr common.Address, fee *uint256.Int) (*types.LegacyTx, error) {
	input, err := a.abi.Pack("activateProgram", addr)
	if err != nil {
		return nil, fmt.Errorf("deploy: pack activateProgram: %w", err)
	}
	return &types.LegacyTx{To: &ArbWasmAddress, Value: fee.ToBig(), Data: input}, nil
}

func (a *ArbWasm) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := a.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("deploy: pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &ArbWasmAddress, Data: input}
	raw, err := a.geth.CallContract(ctx, msg, nil, nil)
	if err != nil {
		return nil, translateArbWasmError(err)
	}
	out, err := a.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("deploy: unpack %s return: %w", method, err)
	}
	return out, nil
}

// ArbWasmError wraps a decoded ArbWasm custom error with its name and
// arguments, replacing a raw revert-data hex string with something a
// caller can act on (§ SUPPLEMENTED FEATURES: custom-error decoding).
type ArbWasmError struct {
	Name string
	Args []interface{}
}

func (e *ArbWasmError) Error() string {
	return fmt.Sprintf("ArbWasm: %s%v", e.Name, e.Args)
}

// translateArbWasmError inspects an RPC error for embedded revert data and,
// if it matches one of ArbWasm's custom errors, returns an *ArbWasmError
// instead of the raw transport error.
func translateArbWasmError(err error) error {
	de, ok := err.(interface{ ErrorData() interface{} })
	if !ok {
		return fmt.Errorf("deploy: ArbWasm call: %w", err)
	}
	data, ok := de.ErrorData().(string)
	if !ok {
		return fmt.Errorf("deploy: ArbWasm call: %w", err)
	}
	raw := common.FromHex(data)
	if len(raw) < 4 {
		return fmt.Errorf("deploy: ArbWasm call: %w", err)
	}
	parsed, parseErr := abi.JSON(strings.NewReader(arbWasmABIJSON))
	if parseErr != nil {
		return fmt.Errorf("deploy: ArbWasm call: %w", err)
	}
	for name, abiErr := range parsed.Errors {
		if len(raw) >= 4 && string(abiErr.ID[:4]) == string(raw[:4]) {
			args, unpackErr := abiErr.Unpack(raw)
			if unpackErr != nil {
				return fmt.Errorf("deploy: ArbWasm call: %w", err)
			}
			list, _ := args.([]interface{})
			return &ArbWasmError{Name: name, Args: list}
		}
	}
	return fmt.Errorf("deploy: ArbWasm call: %w", err)
}
