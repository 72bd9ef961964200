package deploy

import (
	"context"
	"testing"

	"github.com/stylus-tools/ctorasm/common"
)

func testDriver(t *testing.T) (*Driver, *fakeChain) {
	wallet, err := WalletFromHexKey(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("WalletFromHexKey: %v", err)
	}
	chain := newFakeChain()
	return &Driver{Client: chain.dial(t), Wallet: wallet}, chain
}

func TestDriverDeploySubmitsSignedTransaction(t *testing.T) {
	d, chain := testDriver(t)

	payload := []byte{0x60, 0x00, 0x60, 0x00}
	addr, hash, err := d.Deploy(context.Background(), payload)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if addr != chain.nextContract {
		t.Fatalf("got contract address %s, want %s", addr, chain.nextContract)
	}
	if len(chain.sent) != 1 {
		t.Fatalf("got %d submitted transactions, want 1", len(chain.sent))
	}
	sent := chain.sent[0]
	if sent.Hash() != hash {
		t.Fatalf("returned hash %s does not match submitted transaction %s", hash, sent.Hash())
	}
	if sent.To() != nil {
		t.Fatalf("deploy transaction should have a nil To, got %s", sent.To())
	}
	if string(sent.Data()) != string(payload) {
		t.Fatalf("submitted transaction data = %x, want %x", sent.Data(), payload)
	}
}

func TestDriverDeployRejectsRevertedTransaction(t *testing.T) {
	d, chain := testDriver(t)
	_, _, err := d.Deploy(context.Background(), []byte{0x00})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	chain.revertNext = true
	if _, _, err := d.Deploy(context.Background(), []byte{0x00}); err == nil {
		t.Fatal("expected error on a second deploy whose receipt reports failure")
	}
}

func TestDriverActivateSkipsAlreadyActivatedProgram(t *testing.T) {
	d, chain := testDriver(t)
	runtimeCode := []byte{0x01, 0x02, 0x03}

	chain.call = func(args fakeCallArgs) ([]byte, error) {
		return packStylusVersion(t, 1)
	}

	hash, err := d.Activate(context.Background(), chain.nextContract, runtimeCode)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if hash != (common.Hash{}) {
		t.Fatalf("got non-zero activation hash %s for an already-activated program", hash)
	}
	if len(chain.sent) != 0 {
		t.Fatalf("Activate submitted a transaction for an already-activated program")
	}
}

func TestDriverRunDeployOnlySkipsActivation(t *testing.T) {
	d, _ := testDriver(t)
	result, err := d.Run(context.Background(), []byte{0x60, 0x00}, []byte{0x01}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Activated {
		t.Fatal("Run with deployOnly=true reported Activated")
	}
	if result.ActivateTxHash != (common.Hash{}) {
		t.Fatalf("got non-zero ActivateTxHash %s with deployOnly=true", result.ActivateTxHash)
	}
}

func TestDriverRunFullFlowActivates(t *testing.T) {
	d, chain := testDriver(t)
	chain.call = func(args fakeCallArgs) ([]byte, error) {
		// codehashVersion probe first: report "not yet activated" via a
		// zero version, then activateProgram's data-fee estimate.
		if len(args.Input) >= 4 && string(args.Input[:4]) == string(selector("codehashVersion(bytes32)")) {
			return packStylusVersion(t, 0)
		}
		return packActivateProgram(t, 1, 1000)
	}

	result, err := d.Run(context.Background(), []byte{0x60, 0x00}, []byte{0x01, 0x02}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Activated {
		t.Fatal("Run did not activate the program")
	}
	if len(chain.sent) != 2 {
		t.Fatalf("got %d submitted transactions, want 2 (deploy + activate)", len(chain.sent))
	}
}
