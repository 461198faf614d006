// Package jwt verifica los bearer tokens que presentan los clientes en las
// rutas protegidas. Sólo se chequea la firma: exp/nbf/aud no se validan acá.
package jwt

import (
	"context"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredential: no vino token.
	ErrMissingCredential = errors.New("jwt: missing credential")
	// ErrInvalidCredential: el token no parsea o la firma no verifica.
	ErrInvalidCredential = errors.New("jwt: invalid credential")
)

// ClientToken es un bearer token ya verificado.
type ClientToken struct {
	Raw    string
	Header map[string]any
	Claims map[string]any
}

// Subject devuelve el claim sub (o "").
func (t *ClientToken) Subject() string {
	s, _ := t.Claims["sub"].(string)
	return s
}

// VerifierConfig elige de dónde salen las claves. Exactamente una fuente.
type VerifierConfig struct {
	PublicKeyPEM []byte          // clave pública estática (RSA, ECDSA o Ed25519)
	JWKSURL      string          // JWKS remoto, refrescado en background por keyfunc
	JWKSJSON     json.RawMessage // JWKS inline (archivo local)
	Algs         []string        // default: según la clave, o DefaultAlgs con JWKS
}

// Verifier verifica la firma de client tokens.
type Verifier struct {
	keyfunc jwtv5.Keyfunc
	parser  *jwtv5.Parser
	algs    []string
}

// NewVerifier arma un Verifier según cfg. ctx acota la vida del refresco del
// JWKS remoto.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	sources := 0
	for _, set := range []bool{len(cfg.PublicKeyPEM) > 0, cfg.JWKSURL != "", len(cfg.JWKSJSON) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("jwt: exactly one key source is required")
	}

	switch {
	case len(cfg.PublicKeyPEM) > 0:
		pub, err := ParsePublicKeyPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		return NewStaticVerifier(pub, cfg.Algs)
	case cfg.JWKSURL != "":
		kf, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("jwt: jwks init failed: %w", err)
		}
		return newVerifier(kf.Keyfunc, orDefault(cfg.Algs, DefaultAlgs)), nil
	default:
		kf, err := keyfunc.NewJWKSetJSON(cfg.JWKSJSON)
		if err != nil {
			return nil, fmt.Errorf("jwt: invalid jwks: %w", err)
		}
		return newVerifier(kf.Keyfunc, orDefault(cfg.Algs, DefaultAlgs)), nil
	}
}

// NewVerifierFromFiles lee la clave pública o el JWKS desde disco.
func NewVerifierFromFiles(ctx context.Context, publicKeyFile, jwksFile, jwksURL string, algs []string) (*Verifier, error) {
	cfg := VerifierConfig{JWKSURL: jwksURL, Algs: algs}
	if publicKeyFile != "" {
		b, err := os.ReadFile(publicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("jwt: read public key: %w", err)
		}
		cfg.PublicKeyPEM = b
	}
	if jwksFile != "" {
		b, err := os.ReadFile(jwksFile)
		if err != nil {
			return nil, fmt.Errorf("jwt: read jwks: %w", err)
		}
		cfg.JWKSJSON = b
	}
	return NewVerifier(ctx, cfg)
}

// NewStaticVerifier verifica contra una única clave pública.
func NewStaticVerifier(pub crypto.PublicKey, algs []string) (*Verifier, error) {
	if _, err := checkKeyType(pub); err != nil {
		return nil, err
	}
	return newVerifier(func(*jwtv5.Token) (any, error) { return pub, nil }, orDefault(algs, AlgsForKey(pub))), nil
}

func newVerifier(kf jwtv5.Keyfunc, algs []string) *Verifier {
	return &Verifier{
		keyfunc: kf,
		algs:    algs,
		parser: jwtv5.NewParser(
			jwtv5.WithValidMethods(algs),
			jwtv5.WithoutClaimsValidation(),
		),
	}
}

func orDefault(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}

// Algs devuelve los algoritmos aceptados.
func (v *Verifier) Algs() []string { return append([]string(nil), v.algs...) }

// Verify chequea la firma de raw y devuelve header y claims decodificados.
// Acepta el token con o sin el prefijo "Bearer ".
func (v *Verifier) Verify(raw string) (*ClientToken, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	} else if strings.EqualFold(raw, "bearer") {
		raw = ""
	}
	if raw == "" {
		return nil, ErrMissingCredential
	}

	claims := jwtv5.MapClaims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, v.keyfunc)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	out := make(map[string]any, len(claims))
	for k, val := range claims {
		out[k] = val
	}
	return &ClientToken{Raw: raw, Header: tok.Header, Claims: out}, nil
}
