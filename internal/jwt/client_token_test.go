package jwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

func pemPublic(t *testing.T, pub any) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, method jwtv5.SigningMethod, key any, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(method, claims)
	tok.Header["kid"] = "k1"
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifier_StaticRSA(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	v, err := NewVerifier(context.Background(), VerifierConfig{PublicKeyPEM: pemPublic(t, &key.PublicKey)})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	raw := sign(t, jwtv5.SigningMethodRS256, key, jwtv5.MapClaims{"sub": "client-1", "scope": "read"})
	ct, err := v.Verify("Bearer " + raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ct.Subject() != "client-1" || ct.Claims["scope"] != "read" {
		t.Fatalf("claims = %#v", ct.Claims)
	}
	if ct.Header["alg"] != "RS256" || ct.Header["kid"] != "k1" {
		t.Fatalf("header = %#v", ct.Header)
	}
}

func TestVerifier_ExpiredTokenStillVerifies(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	v, err := NewStaticVerifier(priv.Public(), nil)
	if err != nil {
		t.Fatalf("NewStaticVerifier: %v", err)
	}
	raw := sign(t, jwtv5.SigningMethodEdDSA, priv, jwtv5.MapClaims{
		"sub": "c",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := v.Verify(raw); err != nil {
		t.Fatalf("expired token should verify (signature only): %v", err)
	}
}

func TestVerifier_WrongKey(t *testing.T) {
	good, _ := rsa.GenerateKey(rand.Reader, 2048)
	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	v, _ := NewStaticVerifier(&good.PublicKey, nil)

	raw := sign(t, jwtv5.SigningMethodRS256, other, jwtv5.MapClaims{"sub": "x"})
	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestVerifier_RejectsDisallowedAlg(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	v, _ := NewStaticVerifier(&key.PublicKey, nil)

	raw := sign(t, jwtv5.SigningMethodHS256, []byte("shared"), jwtv5.MapClaims{"sub": "x"})
	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("HS256 must be rejected, err = %v", err)
	}

	ok := sign(t, jwtv5.SigningMethodES256, key, jwtv5.MapClaims{"sub": "x"})
	if _, err := v.Verify(ok); err != nil {
		t.Fatalf("ES256: %v", err)
	}
}

func TestVerifier_Missing(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	v, _ := NewStaticVerifier(&key.PublicKey, nil)
	for _, raw := range []string{"", "Bearer ", "   "} {
		if _, err := v.Verify(raw); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("Verify(%q) err = %v", raw, err)
		}
	}
	if _, err := v.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("garbage err = %v", err)
	}
}

func TestVerifier_InlineJWKS(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	set, err := EncodeJWKS("k1", pub)
	if err != nil {
		t.Fatalf("EncodeJWKS: %v", err)
	}
	v, err := NewVerifier(context.Background(), VerifierConfig{JWKSJSON: set})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	raw := sign(t, jwtv5.SigningMethodEdDSA, priv, jwtv5.MapClaims{"sub": "jwks-client"})
	ct, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ct.Subject() != "jwks-client" {
		t.Fatalf("sub = %q", ct.Subject())
	}
}

func TestNewVerifier_RequiresOneSource(t *testing.T) {
	if _, err := NewVerifier(context.Background(), VerifierConfig{}); err == nil {
		t.Fatal("expected error with no key source")
	}
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	_, err := NewVerifier(context.Background(), VerifierConfig{
		PublicKeyPEM: pemPublic(t, &key.PublicKey),
		JWKSURL:      "https://example.com/jwks.json",
	})
	if err == nil {
		t.Fatal("expected error with two key sources")
	}
}

func TestParsePublicKeyPEM_PKCS1(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 1024)
	b := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	pub, err := ParsePublicKeyPEM(b)
	if err != nil {
		t.Fatalf("ParsePublicKeyPEM: %v", err)
	}
	if !key.PublicKey.Equal(pub) {
		t.Fatal("parsed key differs")
	}
	if _, err := ParsePublicKeyPEM([]byte("nope")); err == nil {
		t.Fatal("expected error for non-PEM input")
	}
}
