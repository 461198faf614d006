// Package secretbox sella valores que se guardan fuera del proceso (redis,
// postgres) con AES-256-GCM. La clave de cada Box se deriva de una clave
// maestra con HKDF-SHA256 y un propósito, así dos usos distintos nunca
// comparten clave.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceSizeGCM      = 12  // AES-GCM nonce size recomendado (96 bits)
	requiredKeyLength = 32  // 32 bytes => AES-256
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

var ErrMalformed = errors.New("secretbox: formato inválido, esperado base64(nonce)|base64(ciphertext)")

// ParseKey acepta la clave maestra en base64 (con o sin padding), hex o raw
// de 32 bytes.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 2*requiredKeyLength {
		if h, err := hex.DecodeString(key); err == nil {
			return h, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("secretbox: clave inválida (requiere %d bytes en base64, hex o raw)", requiredKeyLength)
}

// Box sella y abre valores con una clave derivada. Seguro para uso concurrente.
type Box struct {
	aead cipher.AEAD
}

// New deriva la clave de master para purpose y arma el AEAD.
func New(master []byte, purpose string) (*Box, error) {
	if len(master) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: clave maestra de %d bytes (requiere %d)", len(master), requiredKeyLength)
	}
	key := make([]byte, requiredKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("secretbox: hkdf: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aesgcm}, nil
}

// Seal cifra plain y devuelve base64(nonce)|base64(ciphertext).
func (b *Box) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce random: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, plain, nil)
	out := base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct)
	return []byte(out), nil
}

// Open revierte Seal. Falla si el valor fue alterado o sellado con otra clave.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	parts := strings.Split(string(sealed), sep)
	if len(parts) != 2 {
		return nil, ErrMalformed
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSizeGCM {
		return nil, fmt.Errorf("nonce inválido: esperado %d bytes, obtuvo %d", nonceSizeGCM, len(nonce))
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return pt, nil
}
