package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stylus-tools/ctorasm/crypto"
)

const testPrivateKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f25"

func TestWalletFromHexKeyDerivesAddress(t *testing.T) {
	w, err := WalletFromHexKey(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("WalletFromHexKey: %v", err)
	}
	key, err := crypto.HexToECDSA(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("HexToECDSA: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)
	if w.Address != want {
		t.Fatalf("got address %s, want %s", w.Address, want)
	}
}

func TestWalletFromHexKeyAccepts0xPrefix(t *testing.T) {
	w1, err := WalletFromHexKey(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("WalletFromHexKey: %v", err)
	}
	w2, err := WalletFromHexKey("0x" + testPrivateKeyHex)
	if err != nil {
		t.Fatalf("WalletFromHexKey with 0x prefix: %v", err)
	}
	if w1.Address != w2.Address {
		t.Fatalf("0x-prefixed key produced a different address: %s vs %s", w2.Address, w1.Address)
	}
}

func TestWalletFromKeyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.hex")
	if err := os.WriteFile(path, []byte(testPrivateKeyHex+"\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	w, err := WalletFromKeyFile(path)
	if err != nil {
		t.Fatalf("WalletFromKeyFile: %v", err)
	}
	want, _ := WalletFromHexKey(testPrivateKeyHex)
	if w.Address != want.Address {
		t.Fatalf("got address %s, want %s", w.Address, want.Address)
	}
}

func TestWalletFromHexKeyRejectsGarbage(t *testing.T) {
	if _, err := WalletFromHexKey("not-hex"); err == nil {
		t.Fatal("expected error for malformed private key")
	}
}
