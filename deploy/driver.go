// Package deploy orchestrates the network-side half of the pipeline: given
// a rewritten deployment payload, sign and submit the contract-creation
// transaction, wait for its receipt, then estimate and submit the ArbWasm
// activation transaction for the address it created. Both transactions are
// issued strictly sequentially against the same signer, since the second
// transaction's target is the first's output and both consume the same
// account nonce (§5).
package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	ethereum "github.com/stylus-tools/ctorasm"
	"github.com/stylus-tools/ctorasm/common"
	"github.com/stylus-tools/ctorasm/core/types"
	"github.com/stylus-tools/ctorasm/crypto"
	"github.com/stylus-tools/ctorasm/ethclient"
	"github.com/stylus-tools/ctorasm/log"
)

// receiptPollInterval bounds how often the driver re-polls for a pending
// transaction's receipt. Receipt polling is an idempotent read and is the
// only operation this driver retries (§7); it never resubmits a signed
// transaction.
const receiptPollInterval = 2 * time.Second

// Driver submits the deploy and activation transactions for a rewritten
// payload against a single RPC endpoint, using Wallet as the sole signer.
type Driver struct {
	Client *ethclient.Client
	Wallet *Wallet
	Log    log.Logger
}

// NewDriver dials rpcURL and returns a Driver signing with wallet.
func NewDriver(ctx context.Context, rpcURL string, wallet *Wallet) (*Driver, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("deploy: dial %s: %w", rpcURL, err)
	}
	return &Driver{Client: client, Wallet: wallet, Log: log.Root()}, nil
}

func (d *Driver) logger() log.Logger {
	if d.Log == nil {
		return log.Root()
	}
	return d.Log
}

// Result reports what a Run produced: the deployed contract's address and
// the hashes of the transactions issued.
type Result struct {
	ContractAddress common.Address
	DeployTxHash    common.Hash
	ActivateTxHash  common.Hash
	Activated       bool
}

// Deploy signs and submits a contract-creation transaction carrying
// payload as its data, waits for its receipt, and returns the address the
// chain assigned. It does not activate the resulting program; callers that
// want the full deploy-then-activate flow should use Run, or pass
// --deploy-only at the CLI layer to stop here.
func (d *Driver) Deploy(ctx context.Context, payload []byte) (common.Address, common.Hash, error) {
	chainID, err := d.Client.ChainID(ctx)
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: fetch chain id: %w", err)
	}
	nonce, err := d.Client.PendingNonceAt(ctx, d.Wallet.Address)
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: fetch nonce: %w", err)
	}
	gasPrice, err := d.Client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: suggest gas price: %w", err)
	}
	gasLimit, err := d.Client.EstimateGas(ctx, callMsg(d.Wallet.Address, nil, payload))
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		Data:     payload,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), d.Wallet.PrivateKey)
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: sign transaction: %w", err)
	}
	if err := d.Client.SendTransaction(ctx, signed); err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: send transaction: %w", err)
	}
	d.logger().Info("submitted deploy transaction", "hash", signed.Hash(), "nonce", nonce, "gas", gasLimit)

	receipt, err := d.awaitReceipt(ctx, signed.Hash())
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, common.Hash{}, fmt.Errorf("deploy: transaction %s reverted", signed.Hash())
	}
	d.logger().Info("deployed contract", "address", receipt.ContractAddress, "block", receipt.BlockNumber)
	return receipt.ContractAddress, signed.Hash(), nil
}

// Activate estimates the ArbWasm activation fee for the program at addr and
// submits the activateProgram transaction, waiting for its receipt.
func (d *Driver) Activate(ctx context.Context, addr common.Address, runtimeCode []byte) (common.Hash, error) {
	arbWasm, err := NewArbWasm(d.Client)
	if err != nil {
		return common.Hash{}, err
	}
	if version, err := arbWasm.CodehashVersion(ctx, crypto.Keccak256Hash(runtimeCode)); err == nil && version != 0 {
		d.logger().Info("program already activated", "address", addr, "version", version)
		return common.Hash{}, nil
	}

	fee, err := arbWasm.EstimateActivationFee(ctx, addr, runtimeCode, d.Wallet.Address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("deploy: estimate activation fee: %w", err)
	}
	txdata, err := arbWasm.ActivateProgram(addr, fee)
	if err != nil {
		return common.Hash{}, err
	}

	chainID, err := d.Client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("deploy: fetch chain id: %w", err)
	}
	nonce, err := d.Client.PendingNonceAt(ctx, d.Wallet.Address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("deploy: fetch nonce: %w", err)
	}
	txdata.Nonce = nonce
	if txdata.GasPrice == nil {
		gasPrice, err := d.Client.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("deploy: suggest gas price: %w", err)
		}
		txdata.GasPrice = gasPrice
	}
	gasLimit, err := d.Client.EstimateGas(ctx, callMsg(d.Wallet.Address, &ArbWasmAddress, txdata.Data))
	if err != nil {
		return common.Hash{}, fmt.Errorf("deploy: estimate activation gas: %w", err)
	}
	txdata.Gas = gasLimit

	tx := types.NewTx(txdata)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), d.Wallet.PrivateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("deploy: sign activation transaction: %w", err)
	}
	if err := d.Client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("deploy: send activation transaction: %w", err)
	}
	d.logger().Info("submitted activation transaction", "hash", signed.Hash(), "fee", fee)

	receipt, err := d.awaitReceipt(ctx, signed.Hash())
	if err != nil {
		return common.Hash{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("deploy: activation transaction %s reverted", signed.Hash())
	}
	d.logger().Info("activated program", "address", addr)
	return signed.Hash(), nil
}

// Run performs the full deploy-then-activate flow. deployOnly stops after
// Deploy and leaves Result.Activated false.
func (d *Driver) Run(ctx context.Context, payload, runtimeCode []byte, deployOnly bool) (*Result, error) {
	addr, deployHash, err := d.Deploy(ctx, payload)
	if err != nil {
		return nil, err
	}
	res := &Result{ContractAddress: addr, DeployTxHash: deployHash}
	if deployOnly {
		return res, nil
	}
	activateHash, err := d.Activate(ctx, addr, runtimeCode)
	if err != nil {
		return res, err
	}
	res.ActivateTxHash = activateHash
	res.Activated = true
	return res, nil
}

// awaitReceipt polls TransactionReceipt until it succeeds or ctx is
// cancelled. Not-yet-mined lookups return ethereum.NotFound, which is the
// only error this loop treats as "keep waiting" rather than fatal.
func (d *Driver) awaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := d.Client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("deploy: fetch receipt %s: %w", hash, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("deploy: wait for receipt %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func callMsg(from common.Address, to *common.Address, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{From: from, To: to, Data: data}
}
