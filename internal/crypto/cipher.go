package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength  = 32
	iterations = 10000
)

// SecretCipher encrypts mailbox secrets at rest with AES-256-GCM. The key
// is derived once from the configured passphrase and salt.
type SecretCipher struct {
	key []byte
}

func NewSecretCipher(passphrase, salt string) (*SecretCipher, error) {
	if passphrase == "" {
		return nil, errors.New("encryption passphrase cannot be empty")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(salt), iterations, keyLength, sha256.New)
	return &SecretCipher{key: key}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *SecretCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt secret")
	}

	return string(plaintext), nil
}
