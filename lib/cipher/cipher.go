// Package cipher keeps test credentials out of plaintext configuration.
//
// The scheme is deterministic on purpose: the key is stretched from the
// passphrase with a constant salt and the IV is a fixed constant, so the same
// plaintext always encrypts to the same hex string. This is only suitable for
// local test secrets, not for anything that faces an attacker.
package cipher

import (
	"bytes"
	"crypto/aes"
	gocipher "crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

// ErrDecryption is returned (wrapped) for any ciphertext that cannot be turned
// back into plaintext: malformed hex, bad block length or a wrong passphrase.
var ErrDecryption = errors.New("decryption failed")

const (
	salt   = "salt"
	keyLen = 32

	// scrypt cost parameters, these match the node crypto.scryptSync defaults
	// so ciphertexts produced by the old tooling still decrypt.
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

var fixedIV = []byte("1234567890123456")

type Cipher struct {
	key []byte
}

func New(passphrase string) (*Cipher, error) {
	key, err := scrypt.Key([]byte(passphrase), []byte(salt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Cipher{key: key}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	padded := pad([]byte(plaintext), block.BlockSize())
	out := make([]byte, len(padded))
	gocipher.NewCBCEncrypter(block, fixedIV).CryptBlocks(out, padded)
	return hex.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid hex: %v", ErrDecryption, err)
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 || len(raw)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of the block size", ErrDecryption, len(raw))
	}
	out := make([]byte, len(raw))
	gocipher.NewCBCDecrypter(block, fixedIV).CryptBlocks(out, raw)
	plain, err := unpad(out, block.BlockSize())
	if err != nil {
		return "", err
	}
	// a wrong key passes the padding check about once in 256 tries
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not valid utf-8", ErrDecryption)
	}
	return string(plain), nil
}

// Encrypt is a shorthand for New(passphrase).Encrypt(plaintext).
func Encrypt(plaintext, passphrase string) (string, error) {
	c, err := New(passphrase)
	if err != nil {
		return "", err
	}
	return c.Encrypt(plaintext)
}

// Decrypt is a shorthand for New(passphrase).Decrypt(ciphertext).
func Decrypt(ciphertext, passphrase string) (string, error) {
	c, err := New(passphrase)
	if err != nil {
		return "", err
	}
	return c.Decrypt(ciphertext)
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
		}
	}
	return data[:len(data)-n], nil
}
