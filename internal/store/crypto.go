package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	apperrors "github.com/alexjbarnes/skport-sync/internal/errors"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

const (
	// scryptN is the CPU/memory cost parameter for scrypt key derivation.
	scryptN = 32768

	// scryptR is the block size parameter for scrypt key derivation.
	scryptR = 8

	// scryptP is the parallelization parameter for scrypt key derivation.
	scryptP = 1

	// scryptKeyLen is the derived key length in bytes.
	scryptKeyLen = 32

	saltLen = 16
)

// secretBox seals credential tokens before they touch disk. The key is
// derived from the configured store secret and a per-database salt, so a
// copied database file is useless without the secret.
type secretBox struct {
	gcm cipher.AEAD
}

// newSecretBox derives an AES-GCM cipher from secret and salt. The secret
// is normalized to NFKC before hashing so the same passphrase typed on
// different platforms derives the same key.
func newSecretBox(secret string, salt []byte) (*secretBox, error) {
	normalized := norm.NFKC.String(secret)

	key, err := scrypt.Key([]byte(normalized), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving store key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}

	// Overwrite key material now that the cipher holds its own copy of
	// the expanded schedule.
	for i := range key {
		key[i] = 0
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &secretBox{gcm: gcm}, nil
}

// seal encrypts plain with a random nonce. Output: [nonce][ciphertext+tag].
func (b *secretBox) seal(plain string) ([]byte, error) {
	nonce := make([]byte, b.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return b.gcm.Seal(nonce, nonce, []byte(plain), nil), nil
}

// open decrypts data produced by seal. A wrong secret or corrupted record
// surfaces as ErrTokenSealed.
func (b *secretBox) open(data []byte) (string, error) {
	if len(data) < b.gcm.NonceSize() {
		return "", apperrors.ErrTokenSealed
	}

	nonce, ciphertext := data[:b.gcm.NonceSize()], data[b.gcm.NonceSize():]

	plain, err := b.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperrors.ErrTokenSealed
	}

	return string(plain), nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	return salt, nil
}
