package oauth1

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureBaseString_Example(t *testing.T) {
	got, err := SignatureBaseString("GET", "HTTP://Example.com:80/r%20esource?id=123", "a=1&b=2")
	require.NoError(t, err)
	require.Equal(t, "GET&http%3A%2F%2Fexample.com%2Fr%2520esource&a%3D1%26b%3D2", got)
}

func TestSignatureBaseString_LowercaseMethodIsUppercased(t *testing.T) {
	got, err := SignatureBaseString("post", "https://api.example.com/request_token", "")
	require.NoError(t, err)
	require.Equal(t, "POST&https%3A%2F%2Fapi.example.com%2Frequest_token&", got)
}

// OAuth Core 1.0 appendix A.5 (photos.example.net).
func TestSign_HMACSHA1_KnownVector(t *testing.T) {
	params := map[string]string{
		"file":                   "vacation.jpg",
		"size":                   "original",
		"oauth_consumer_key":     "dpf43f3p2l4k3l03",
		"oauth_token":            "nnch734d00sl2jdk",
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1191242096",
		"oauth_nonce":            "kllo9940pd9333jh",
		"oauth_version":          "1.0",
	}
	base, err := SignatureBaseString("GET", "http://photos.example.net/photos", Normalize(params))
	require.NoError(t, err)

	cred := ClientCredential{ConsumerKey: "dpf43f3p2l4k3l03", ConsumerSecret: "kd94hf93k423kf44"}
	sig, err := Sign(HMACSHA1, base, cred, "pfkkdhi9sl3r4s00")
	require.NoError(t, err)
	require.Equal(t, "tR3+Ty81lMeYAr/Fid0kMTYa/WM=", sig)
}

func TestSign_HMACSHA1_Deterministic(t *testing.T) {
	cred := ClientCredential{ConsumerSecret: "cs!"}
	a, err := Sign(HMACSHA1, "GET&x&y", cred, "ts")
	require.NoError(t, err)
	b, err := Sign(HMACSHA1, "GET&x&y", cred, "ts")
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Sign(HMACSHA1, "GET&x&z", cred, "ts")
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestSign_PlainTextIgnoresBaseString(t *testing.T) {
	cred := ClientCredential{ConsumerSecret: "a b"}
	a, err := Sign(PlainText, "anything", cred, "x!")
	require.NoError(t, err)
	b, err := Sign(PlainText, "something else", cred, "x!")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, "a%20b&x%21", a)

	empty, err := Sign(PlainText, "", cred, "")
	require.NoError(t, err)
	require.Equal(t, "a%20b&", empty)
}

func TestSign_RSASHA1_VerifiesWithPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	base := "POST&https%3A%2F%2Fapi.example.com%2Frequest_token&oauth_consumer_key%3Dk"
	sig, err := Sign(RSASHA1, base, ClientCredential{ConsumerKey: "k", PrivateKey: key}, "ignored")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	sum := sha1.Sum([]byte(base))
	require.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA1, sum[:], raw))
}

func TestSign_RSASHA1_RequiresKey(t *testing.T) {
	_, err := Sign(RSASHA1, "x", ClientCredential{}, "")
	require.ErrorIs(t, err, ErrMissingPrivateKey)
}

func TestSign_UnknownMethod(t *testing.T) {
	_, err := Sign(SignatureMethod("HMAC-SHA256"), "x", ClientCredential{}, "")
	require.True(t, errors.Is(err, ErrUnsupportedSignatureMethod))
}

func TestParseSignatureMethod(t *testing.T) {
	m, err := ParseSignatureMethod("")
	require.NoError(t, err)
	require.Equal(t, PlainText, m)

	m, err = ParseSignatureMethod("hmac-sha1")
	require.NoError(t, err)
	require.Equal(t, HMACSHA1, m)

	_, err = ParseSignatureMethod("MD5")
	require.ErrorIs(t, err, ErrUnsupportedSignatureMethod)
}

func TestNonce(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := Nonce(NonceLength)
		require.Len(t, n, NonceLength)
		for j := 0; j < len(n); j++ {
			c := n[j]
			ok := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
			require.Truef(t, ok, "unexpected char %q in nonce %q", c, n)
		}
		require.False(t, seen[n], "duplicate nonce")
		seen[n] = true
	}
	require.Equal(t, "", Nonce(0))
}

func TestParseRSAPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	got, err := ParseRSAPrivateKey(pkcs1)
	require.NoError(t, err)
	require.True(t, key.Equal(got))

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	got, err = ParseRSAPrivateKey(pkcs8)
	require.NoError(t, err)
	require.True(t, key.Equal(got))

	_, err = ParseRSAPrivateKey([]byte("not pem"))
	require.Error(t, err)
}
