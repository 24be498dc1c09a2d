package vault

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrDecrypt is returned when a stored ciphertext fails verification.
var ErrDecrypt = errors.New("vault: ciphertext verification failed")

// FernetCipher encrypts aggregator access tokens before they reach storage.
// Implements domain.TokenCipher.
type FernetCipher struct {
	key *fernet.Key
}

// NewFernetCipher creates a cipher from a base64url-encoded 32-byte key.
func NewFernetCipher(encodedKey string) (*FernetCipher, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("vault: decode encryption key: %w", err)
	}
	return &FernetCipher{key: key}, nil
}

// Encrypt seals the plaintext into a fernet token.
func (c *FernetCipher) Encrypt(plaintext string) (string, error) {
	sealed, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("vault: encrypt: %w", err)
	}
	return string(sealed), nil
}

// Decrypt opens a stored fernet token. Tokens do not expire; rotation is
// handled by re-encrypting on write, not by TTL.
func (c *FernetCipher) Decrypt(ciphertext string) (string, error) {
	plain := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, []*fernet.Key{c.key})
	if plain == nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
