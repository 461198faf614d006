package oauth1

import (
	"net/url"
	"testing"
)

func TestEncode(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"abcABC123-._~": "abcABC123-._~",
		"a!b":           "a%21b",
		"it's (x)*":     "it%27s%20%28x%29%2A",
		"a b+c":         "a%20b%2Bc",
		"=&%":           "%3D%26%25",
		"ñ":             "%C3%B1",
		"/path?q":       "%2Fpath%3Fq",
	}
	for in, want := range cases {
		if got := Encode(in); got != want {
			t.Errorf("Encode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_InsertionOrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["b"] = "2"
	a["a"] = "1"
	a["oauth_nonce"] = "xyz"
	a["c d"] = "e!f"

	b := map[string]string{}
	b["c d"] = "e!f"
	b["oauth_nonce"] = "xyz"
	b["a"] = "1"
	b["b"] = "2"

	for i := 0; i < 20; i++ {
		if Normalize(a) != Normalize(b) {
			t.Fatalf("normalize differs: %q vs %q", Normalize(a), Normalize(b))
		}
	}
	want := "a=1&b=2&c%20d=e%21f&oauth_nonce=xyz"
	if got := Normalize(a); got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_SortsByEncodedKey(t *testing.T) {
	// "a b" encodes to "a%20b", which sorts before "a1" ('%' < '1').
	got := Normalize(map[string]string{"a1": "x", "a b": "y"})
	want := "a%20b=y&a1=x"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeValues_TiesBrokenByValue(t *testing.T) {
	v := url.Values{}
	v.Add("a", "z")
	v.Add("a", "b")
	v.Add("f", "50")
	v.Add("c", "")
	got := NormalizeValues(v)
	want := "a=b&a=z&c=&f=50"
	if got != want {
		t.Fatalf("NormalizeValues = %q, want %q", got, want)
	}
}

func TestBaseStringURI(t *testing.T) {
	cases := map[string]string{
		"HTTP://Example.com:80/r%20esource?id=123": "http://example.com/r%20esource",
		"https://api.example.com:443":              "https://api.example.com/",
		"https://api.example.com:8443/a/b#frag":    "https://api.example.com:8443/a/b",
		"http://example.com:443/x":                 "http://example.com:443/x",
		"http://[::1]:8080/":                       "http://[::1]:8080/",
	}
	for in, want := range cases {
		got, err := BaseStringURI(in)
		if err != nil {
			t.Fatalf("BaseStringURI(%q) err: %v", in, err)
		}
		if got != want {
			t.Errorf("BaseStringURI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBaseStringURI_RejectsRelative(t *testing.T) {
	if _, err := BaseStringURI("/relative/path"); err == nil {
		t.Fatal("expected error for relative uri")
	}
}

func TestAuthorizationHeader(t *testing.T) {
	got := AuthorizationHeader("", map[string]string{
		"oauth_signature": "a+b/c=",
		"oauth_callback":  "http://cb.example/x?y=1",
		"realm":           "Photos",
	})
	want := `OAuth oauth_callback="http%3A%2F%2Fcb.example%2Fx%3Fy%3D1", oauth_signature="a%2Bb%2Fc%3D", realm="Photos"`
	if got != want {
		t.Fatalf("header = %q\nwant     %q", got, want)
	}
}
