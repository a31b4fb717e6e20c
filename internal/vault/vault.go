// Package vault seals and opens connection credentials with a local
// symmetric key stored next to the database.
package vault

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyFile   = ".mphub/vault.key"
	keySize   = 32
	nonceSize = 24
)

// Vault holds the symmetric key used to seal credentials
type Vault struct {
	key [keySize]byte
}

// Load reads the vault key for baseDir, generating one on first use
func Load(baseDir string) (*Vault, error) {
	path := filepath.Join(baseDir, keyFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read vault key: %w", err)
	}
	if len(data) != keySize {
		return nil, fmt.Errorf("vault key corrupt: expected %d bytes, got %d", keySize, len(data))
	}

	v := &Vault{}
	copy(v.key[:], data)
	return v, nil
}

func create(path string) (*Vault, error) {
	v := &Vault{}
	if _, err := io.ReadFull(rand.Reader, v.key[:]); err != nil {
		return nil, fmt.Errorf("generate vault key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	// Key material is owner-readable only
	if err := os.WriteFile(path, v.key[:], 0600); err != nil {
		return nil, fmt.Errorf("write vault key: %w", err)
	}
	return v, nil
}

// Seal encrypts plaintext. The random nonce is prepended to the box.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &v.key), nil
}

// Open decrypts a box produced by Seal
func (v *Vault) Open(box []byte) ([]byte, error) {
	if len(box) < nonceSize {
		return nil, fmt.Errorf("sealed credential too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plaintext, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &v.key)
	if !ok {
		return nil, fmt.Errorf("credential cannot be opened with this vault key")
	}
	return plaintext, nil
}
