package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stylus-tools/ctorasm/common"
	"github.com/stylus-tools/ctorasm/common/hexutil"
	"github.com/stylus-tools/ctorasm/core/types"
	"github.com/stylus-tools/ctorasm/ethclient"
	"github.com/stylus-tools/ctorasm/rpc"
)

// fakeCallArgs mirrors the wire shape ethclient/gethclient's toCallArg
// produces for an eth_call/eth_estimateGas request.
type fakeCallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Value *hexutil.Big    `json:"value"`
}

// fakeChain is a minimal in-process "eth" namespace standing in for a live
// or simulated node: exactly the RPC surface Driver and ArbWasm call, kept
// as plain state rather than a real EVM. Registered on an rpc.Server and
// dialed with rpc.DialInProc, it lets the deploy package's network-facing
// methods run against something other than mocks of ethclient.Client
// itself.
type fakeChain struct {
	mu sync.Mutex

	chainID  *big.Int
	gasPrice *big.Int
	nonce    uint64
	gasLimit uint64

	nextContract common.Address
	receipts     map[common.Hash]*types.Receipt
	sent         []*types.Transaction

	// call answers eth_call; tests set it to script ArbWasm's view calls
	// (stylusVersion, codehashVersion, activateProgram-as-estimate).
	call func(args fakeCallArgs) ([]byte, error)

	// revertNext makes the next SendRawTransaction record a failed receipt.
	revertNext bool
	// overrides holds the state-override argument of the last eth_call.
	overrides json.RawMessage
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		chainID:      big.NewInt(1337),
		gasPrice:     big.NewInt(1_000000000),
		gasLimit:     21000,
		nextContract: common.HexToAddress("0xc0ffee00000000000000000000000000000000"),
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeChain) dial(t *testing.T) *ethclient.Client {
	server := rpc.NewServer()
	if err := server.RegisterName("eth", f); err != nil {
		t.Fatalf("register fake eth service: %v", err)
	}
	client := ethclient.NewClient(rpc.DialInProc(server))
	t.Cleanup(client.Close)
	return client
}

func (f *fakeChain) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(f.chainID), nil
}

func (f *fakeChain) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(f.gasPrice), nil
}

func (f *fakeChain) GetTransactionCount(ctx context.Context, addr common.Address, block string) (hexutil.Uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hexutil.Uint64(f.nonce), nil
}

func (f *fakeChain) EstimateGas(ctx context.Context, args fakeCallArgs) (hexutil.Uint64, error) {
	return hexutil.Uint64(f.gasLimit), nil
}

func (f *fakeChain) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, fmt.Errorf("fakeChain: decode raw tx: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	contractAddr := common.Address{}
	if tx.To() == nil {
		contractAddr = f.nextContract
	}
	status := types.ReceiptStatusSuccessful
	if f.revertNext {
		status = types.ReceiptStatusFailed
		f.revertNext = false
	}
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:          status,
		ContractAddress: contractAddr,
		TxHash:          tx.Hash(),
		BlockNumber:     big.NewInt(1),
	}
	f.sent = append(f.sent, &tx)
	f.nonce++
	return tx.Hash(), nil
}

func (f *fakeChain) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[hash], nil
}

func (f *fakeChain) Call(ctx context.Context, args fakeCallArgs, block string, overrides json.RawMessage) (hexutil.Bytes, error) {
	if f.call == nil {
		return nil, fmt.Errorf("fakeChain: unexpected eth_call")
	}
	f.mu.Lock()
	f.overrides = overrides
	f.mu.Unlock()
	out, err := f.call(args)
	if err != nil {
		return nil, err
	}
	return hexutil.Bytes(out), nil
}
