package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// keystoreFile is a minimal AES-GCM envelope around a Stellar secret seed.
// No example repo in the pack ships a Stellar-shaped keystore format, so
// this uses the standard library directly rather than reusing nhbchain's
// Ethereum v3 keystore (wrong key type entirely).
type keystoreFile struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveKey(passphrase string) [32]byte {
	return sha256.Sum256([]byte(passphrase))
}

// SaveToKeystore encrypts the signer's StrKey seed with the passphrase and
// writes it to path.
func SaveToKeystore(path string, s *Signer, passphrase string) error {
	if s == nil {
		return errors.New("crypto: nil signer")
	}
	if path == "" {
		return errors.New("crypto: empty keystore path")
	}
	seed := s.kp.Seed()

	key := deriveKey(passphrase)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	ciphertext := gcm.Seal(nil, nonce, []byte(seed), nil)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(keystoreFile{Nonce: nonce, Ciphertext: ciphertext})
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	return nil
}

// LoadFromKeystore decrypts a keystore file written by SaveToKeystore.
func LoadFromKeystore(path, passphrase string) (*Signer, error) {
	if path == "" {
		return nil, errors.New("crypto: empty keystore path")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(raw, &ks); err != nil {
		return nil, fmt.Errorf("crypto: corrupt keystore: %w", err)
	}

	key := deriveKey(passphrase)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, ks.Nonce, ks.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: wrong passphrase or corrupt keystore: %w", err)
	}
	return NewSigner(string(plaintext))
}
