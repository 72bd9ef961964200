package deploy

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/stylus-tools/ctorasm/accounts/keystore"
	"github.com/stylus-tools/ctorasm/common"
	"github.com/stylus-tools/ctorasm/crypto"
)

// Wallet is the signing identity the driver uses to send the deploy and
// activation transactions.
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// WalletFromHexKey loads a wallet from a raw hex-encoded private key, the
// CLI's --private-key form.
func WalletFromHexKey(hexKey string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("deploy: parse private key: %w", err)
	}
	return &Wallet{PrivateKey: key, Address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// WalletFromKeyFile loads a wallet from a file holding a raw hex private
// key, the CLI's --private-key-path form.
func WalletFromKeyFile(path string) (*Wallet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deploy: read private key file: %w", err)
	}
	return WalletFromHexKey(strings.TrimSpace(string(raw)))
}

// WalletFromKeystore loads a wallet from an encrypted keystore JSON file
// and a file holding its passphrase, the CLI's --keystore /
// --keystore-password-path form.
func WalletFromKeystore(keystorePath, passwordPath string) (*Wallet, error) {
	keyjson, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("deploy: read keystore file: %w", err)
	}
	passBytes, err := os.ReadFile(passwordPath)
	if err != nil {
		return nil, fmt.Errorf("deploy: read keystore password file: %w", err)
	}
	password := strings.TrimSpace(string(passBytes))

	key, err := keystore.DecryptKey(keyjson, password)
	if err != nil {
		return nil, fmt.Errorf("deploy: decrypt keystore: %w", err)
	}
	return &Wallet{PrivateKey: key.PrivateKey, Address: key.Address}, nil
}
