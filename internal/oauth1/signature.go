package oauth1

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strings"
	"time"
)

// SignatureMethod is the oauth_signature_method identifier.
type SignatureMethod string

const (
	PlainText SignatureMethod = "PLAINTEXT"
	HMACSHA1  SignatureMethod = "HMAC-SHA1"
	RSASHA1   SignatureMethod = "RSA-SHA1"
)

// ParseSignatureMethod validates a configured method name. Empty means PLAINTEXT.
func ParseSignatureMethod(s string) (SignatureMethod, error) {
	switch m := SignatureMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return PlainText, nil
	case PlainText, HMACSHA1, RSASHA1:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSignatureMethod, s)
	}
}

// SignatureBaseString builds the signature base string of RFC 5849 section 3.4.1.
// normalizedParams must already be normalized (see Normalize).
func SignatureBaseString(method, uri, normalizedParams string) (string, error) {
	base, err := BaseStringURI(uri)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(method) + "&" + Encode(base) + "&" + Encode(normalizedParams), nil
}

func signingKey(consumerSecret, tokenSecret string) string {
	return Encode(consumerSecret) + "&" + Encode(tokenSecret)
}

// Sign produces oauth_signature for baseString. tokenSecret is empty on the
// temporary credentials request and ignored by RSA-SHA1.
func Sign(method SignatureMethod, baseString string, cred ClientCredential, tokenSecret string) (string, error) {
	switch method {
	case PlainText:
		return signingKey(cred.ConsumerSecret, tokenSecret), nil

	case HMACSHA1:
		mac := hmac.New(sha1.New, []byte(signingKey(cred.ConsumerSecret, tokenSecret)))
		mac.Write([]byte(baseString))
		return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil

	case RSASHA1:
		if cred.PrivateKey == nil {
			return "", ErrMissingPrivateKey
		}
		sum := sha1.Sum([]byte(baseString))
		sig, err := rsa.SignPKCS1v15(rand.Reader, cred.PrivateKey, crypto.SHA1, sum[:])
		if err != nil {
			return "", fmt.Errorf("oauth1: rsa-sha1: %w", err)
		}
		return base64.StdEncoding.EncodeToString(sig), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSignatureMethod, string(method))
	}
}

// nonceAlphabet is read-only.
const nonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NonceLength is the size of nonces generated for outbound requests.
const NonceLength = 32

// Nonce returns n random alphanumeric characters. The nonce only has to be
// unique per timestamp, so the process-wide ChaCha8 generator is enough.
func Nonce(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = nonceAlphabet[mrand.IntN(len(nonceAlphabet))]
	}
	return string(b)
}

// Timestamp returns the current Unix time in seconds.
func Timestamp() int64 {
	return time.Now().Unix()
}

// ParseRSAPrivateKey parses a PEM encoded PKCS#1 or PKCS#8 RSA private key.
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("oauth1: no PEM block found")
	}
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("oauth1: parse private key: %w", err)
	}
	rk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("oauth1: private key is not RSA")
	}
	return rk, nil
}
