package deploy

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"github.com/stylus-tools/ctorasm/accounts/abi"
	"github.com/stylus-tools/ctorasm/common"
	"github.com/stylus-tools/ctorasm/crypto"
)

func parseArbWasmABIForTest(t *testing.T) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(arbWasmABIJSON))
	if err != nil {
		t.Fatalf("parse ArbWasm ABI: %v", err)
	}
	return parsed
}

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func packStylusVersion(t *testing.T, version uint16) ([]byte, error) {
	parsed := parseArbWasmABIForTest(t)
	out, err := parsed.Methods["stylusVersion"].Outputs.Pack(version)
	if err != nil {
		t.Fatalf("pack stylusVersion return: %v", err)
	}
	return out, nil
}

func packActivateProgram(t *testing.T, version uint16, dataFee int64) ([]byte, error) {
	parsed := parseArbWasmABIForTest(t)
	out, err := parsed.Methods["activateProgram"].Outputs.Pack(version, big.NewInt(dataFee))
	if err != nil {
		t.Fatalf("pack activateProgram return: %v", err)
	}
	return out, nil
}

// packProgramNotActivatedError builds the revert data for ArbWasm's
// zero-argument ProgramNotActivated custom error: just its 4-byte selector,
// since abi.Error exposes Unpack but not the reverse Pack.
func packProgramNotActivatedError(t *testing.T) []byte {
	return selector("ProgramNotActivated()")
}

func newTestArbWasm(t *testing.T, chain *fakeChain) *ArbWasm {
	a, err := NewArbWasm(chain.dial(t))
	if err != nil {
		t.Fatalf("NewArbWasm: %v", err)
	}
	return a
}

func TestArbWasmStylusVersion(t *testing.T) {
	chain := newFakeChain()
	chain.call = func(args fakeCallArgs) ([]byte, error) {
		if string(args.Input) != string(selector("stylusVersion()")) {
			t.Fatalf("unexpected call input %x", args.Input)
		}
		return packStylusVersion(t, 3)
	}
	a := newTestArbWasm(t, chain)

	got, err := a.StylusVersion(context.Background())
	if err != nil {
		t.Fatalf("StylusVersion: %v", err)
	}
	if got != 3 {
		t.Fatalf("got version %d, want 3", got)
	}
}

func TestArbWasmCodehashVersion(t *testing.T) {
	chain := newFakeChain()
	codehash := common.HexToHash("0xdeadbeef")
	chain.call = func(args fakeCallArgs) ([]byte, error) {
		wantSel := selector("codehashVersion(bytes32)")
		if string(args.Input[:4]) != string(wantSel) {
			t.Fatalf("unexpected call selector %x", args.Input[:4])
		}
		return packStylusVersion(t, 2)
	}
	a := newTestArbWasm(t, chain)

	got, err := a.CodehashVersion(context.Background(), codehash)
	if err != nil {
		t.Fatalf("CodehashVersion: %v", err)
	}
	if got != 2 {
		t.Fatalf("got version %d, want 2", got)
	}
}

func TestArbWasmEstimateActivationFeeUsesStateOverride(t *testing.T) {
	chain := newFakeChain()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	runtimeCode := []byte{0xde, 0xad, 0xbe, 0xef}
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")

	chain.call = func(args fakeCallArgs) ([]byte, error) {
		if args.From == nil || *args.From != from {
			t.Fatalf("eth_call from = %v, want %s", args.From, from)
		}
		if args.Value == nil {
			t.Fatal("eth_call missing value")
		}
		return packActivateProgram(t, 1, 424242)
	}
	a := newTestArbWasm(t, chain)

	fee, err := a.EstimateActivationFee(context.Background(), addr, runtimeCode, from)
	if err != nil {
		t.Fatalf("EstimateActivationFee: %v", err)
	}
	if fee.Cmp(uint256.NewInt(424242)) != 0 {
		t.Fatalf("got fee %s, want 424242", fee)
	}
	if !strings.Contains(string(chain.overrides), "0xdeadbeef") {
		t.Fatalf("eth_call overrides = %s, want runtime code 0xdeadbeef at %s", chain.overrides, addr)
	}
}

func TestArbWasmActivateProgramBuildsLegacyTx(t *testing.T) {
	chain := newFakeChain()
	a := newTestArbWasm(t, chain)
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	fee := uint256.NewInt(9000)

	txdata, err := a.ActivateProgram(addr, fee)
	if err != nil {
		t.Fatalf("ActivateProgram: %v", err)
	}
	if txdata.To == nil || *txdata.To != ArbWasmAddress {
		t.Fatalf("got To %v, want %s", txdata.To, ArbWasmAddress)
	}
	if txdata.Value.Cmp(fee.ToBig()) != 0 {
		t.Fatalf("got value %s, want %s", txdata.Value, fee)
	}
}

type fakeErrorData struct {
	err  error
	data interface{}
}

func (e *fakeErrorData) Error() string          { return e.err.Error() }
func (e *fakeErrorData) ErrorData() interface{} { return e.data }

func TestTranslateArbWasmErrorDecodesCustomError(t *testing.T) {
	raw := packProgramNotActivatedError(t)
	// Real go-ethereum JSON-RPC error data is 0x-prefixed hex text.
	wrapped := &fakeErrorData{err: errors.New("execution reverted"), data: "0x" + common.Bytes2Hex(raw)}

	got := translateArbWasmError(wrapped)
	var arbErr *ArbWasmError
	if !errors.As(got, &arbErr) {
		t.Fatalf("got %v (%T), want *ArbWasmError", got, got)
	}
	if arbErr.Name != "ProgramNotActivated" {
		t.Fatalf("got error name %q, want ProgramNotActivated", arbErr.Name)
	}
}

func TestTranslateArbWasmErrorPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("connection refused")
	got := translateArbWasmError(plain)
	if !errors.Is(got, plain) {
		t.Fatalf("got %v, want wrapped %v", got, plain)
	}
	var arbErr *ArbWasmError
	if errors.As(got, &arbErr) {
		t.Fatal("translateArbWasmError decoded an ArbWasmError out of a plain error")
	}
}
