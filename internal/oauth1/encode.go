// Package oauth1 implements the client side of OAuth 1.0a (RFC 5849):
// parameter encoding and normalization, signature base strings, the three
// signature methods and the signed requests sent to a provider's
// temporary-credentials, token-credentials and user-info endpoints.
package oauth1

import (
	"net/url"
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether c is outside the RFC 3986 unreserved set.
// Unlike url.QueryEscape this also escapes ! ' ( ) * and encodes spaces as %20.
func shouldEscape(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-', c == '.', c == '_', c == '~':
		return false
	}
	return true
}

// Encode percent-encodes s per RFC 5849 section 3.6.
func Encode(s string) string {
	if s == "" {
		return ""
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

type pair struct {
	k, v string
}

// Normalize builds the normalized parameter string of RFC 5849 section 3.4.1.3.2.
// Keys and values are encoded first, then sorted by key and, on ties, by value.
func Normalize(params map[string]string) string {
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, pair{Encode(k), Encode(v)})
	}
	return joinPairs(pairs)
}

// NormalizeValues is Normalize for multi-valued parameter sets, e.g. protocol
// parameters merged with the query string of the request URI.
func NormalizeValues(params url.Values) string {
	pairs := make([]pair, 0, len(params))
	for k, vs := range params {
		ek := Encode(k)
		for _, v := range vs {
			pairs = append(pairs, pair{ek, Encode(v)})
		}
	}
	return joinPairs(pairs)
}

func joinPairs(pairs []pair) string {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k == pairs[j].k {
			return pairs[i].v < pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

// BaseStringURI returns the base string URI of RFC 5849 section 3.4.1.2:
// scheme and host lowercased, default ports dropped, query and fragment removed.
func BaseStringURI(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, nil
}
