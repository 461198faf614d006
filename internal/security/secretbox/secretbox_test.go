package secretbox

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func testKey(seed byte) []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return raw
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()
	box, err := New(testKey(1), "session")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := []byte(`{"request_token_secret":"S1"}`)
	sealed, err := box.Seal(msg)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	if bytes.Contains(sealed, []byte("S1")) {
		t.Fatalf("sealed value leaks plaintext: %s", sealed)
	}
	pt, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if !bytes.Equal(pt, msg) {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestOpen_DetectsTamper(t *testing.T) {
	t.Parallel()
	box, _ := New(testKey(9), "session")
	sealed, err := box.Seal([]byte("top secret"))
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	parts := strings.Split(string(sealed), "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected format %q", sealed)
	}
	// corromper un byte del ciphertext
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0xFF
	tampered := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)
	if _, err := box.Open([]byte(tampered)); err == nil {
		t.Fatal("expected error on tampered ciphertext")
	}

	if _, err := box.Open([]byte("no-separator")); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestPurposeSeparatesKeys(t *testing.T) {
	t.Parallel()
	a, _ := New(testKey(3), "session")
	b, _ := New(testKey(3), "other")
	sealed, err := a.Seal([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(sealed); err == nil {
		t.Fatal("box with another purpose must not open the value")
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()
	raw := testKey(5)
	for name, in := range map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(raw),
		"base64-raw": base64.RawStdEncoding.EncodeToString(raw),
		"hex":        hex.EncodeToString(raw),
	} {
		got, err := ParseKey(in)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("%s: key mismatch", name)
		}
	}
	if _, err := ParseKey("short"); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := New([]byte("short"), "x"); err == nil {
		t.Fatal("expected error for short master key")
	}
}
