package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
)

// ParsePublicKeyPEM acepta PKIX ("PUBLIC KEY"), PKCS#1 ("RSA PUBLIC KEY") o un
// certificado X.509. Devuelve *rsa.PublicKey, *ecdsa.PublicKey o ed25519.PublicKey.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("jwt: no PEM block found")
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		return checkKeyType(cert.PublicKey)
	default:
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		return checkKeyType(pub)
	}
}

func checkKeyType(pub any) (crypto.PublicKey, error) {
	switch pub.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
		return pub, nil
	default:
		return nil, fmt.Errorf("jwt: unsupported public key type %T", pub)
	}
}

// AlgsForKey devuelve los algoritmos JWS que tienen sentido para la clave.
func AlgsForKey(pub crypto.PublicKey) []string {
	switch pub.(type) {
	case *rsa.PublicKey:
		return []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	case *ecdsa.PublicKey:
		return []string{"ES256", "ES384", "ES512"}
	case ed25519.PublicKey:
		return []string{"EdDSA"}
	default:
		return nil
	}
}

// DefaultAlgs se usa con JWKS, donde el tipo de clave se conoce recién al verificar.
var DefaultAlgs = []string{"RS256", "RS384", "RS512", "PS256", "ES256", "ES384", "EdDSA"}

// ----- JWKS (serialización) -----

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

// EncodeJWKS serializa una clave pública como JWKS de una sola clave.
func EncodeJWKS(kid string, pub crypto.PublicKey) ([]byte, error) {
	var k jwk
	switch p := pub.(type) {
	case *rsa.PublicKey:
		k = jwk{Kty: "RSA", Alg: "RS256", N: b64(p.N.Bytes()), E: b64(big.NewInt(int64(p.E)).Bytes())}
	case ed25519.PublicKey:
		k = jwk{Kty: "OKP", Crv: "Ed25519", Alg: "EdDSA", X: b64(p)}
	case *ecdsa.PublicKey:
		size := (p.Curve.Params().BitSize + 7) / 8
		x := make([]byte, size)
		y := make([]byte, size)
		p.X.FillBytes(x)
		p.Y.FillBytes(y)
		k = jwk{Kty: "EC", Crv: p.Curve.Params().Name, X: b64(x), Y: b64(y)}
		switch size {
		case 32:
			k.Alg = "ES256"
		case 48:
			k.Alg = "ES384"
		default:
			k.Alg = "ES512"
		}
	default:
		return nil, fmt.Errorf("jwt: unsupported public key type %T", pub)
	}
	k.Kid = kid
	k.Use = "sig"
	return json.Marshal(jwks{Keys: []jwk{k}})
}
