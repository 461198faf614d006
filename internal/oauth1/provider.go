package oauth1

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one provider URL and how requests to it are shaped.
type Endpoint struct {
	URL         string
	Method      string
	Header      string // header carrying the signed parameters, default "Authorization"
	Scheme      string // auth scheme, default "OAuth"
	Accept      string
	ContentType string

	// Query holds extra query parameters required by the provider. They are
	// part of the signature base string but never of the Authorization header.
	// A value of the form "$token.<field>" is resolved from the token
	// credentials response (e.g. {"user_id": "$token.user_id"}).
	Query map[string]string

	// Param names the query parameter carrying the request token on the
	// resource-owner authorization redirect. Default "oauth_token".
	Param string
}

// Endpoints groups the four endpoints of a three-legged exchange.
type Endpoints struct {
	Credentials   Endpoint // temporary credentials (RFC 5849 2.1)
	Authorization Endpoint // resource owner authorization (2.2)
	Token         Endpoint // token credentials (2.3)
	User          Endpoint // user info
}

// Provider is the immutable description of an OAuth 1.0a provider.
type Provider struct {
	ID              string
	Name            string
	Endpoints       Endpoints
	SignatureMethod SignatureMethod
	Realm           string
	Callback        string            // oauth_callback sent on the temporary credentials request
	Mapping         map[string]string // canonical profile field -> source path
}

// ClientCredential is the consumer key/secret pair registered with a provider.
// PrivateKey is only used with RSA-SHA1.
type ClientCredential struct {
	ConsumerKey    string
	ConsumerSecret string
	PrivateKey     *rsa.PrivateKey
}

// String never prints the secret nor the key.
func (c ClientCredential) String() string {
	return fmt.Sprintf("ClientCredential{ConsumerKey:%q, ConsumerSecret:[redacted]}", c.ConsumerKey)
}

// GoString keeps %#v from leaking secrets as well.
func (c ClientCredential) GoString() string { return c.String() }

// TemporaryCredentials is the response of the temporary credentials request.
type TemporaryCredentials struct {
	Token             string
	Secret            string
	CallbackConfirmed bool
}

// TokenCredential is the response of the token credentials request. Extra
// keeps any additional fields the provider returned (user_id, screen_name...).
type TokenCredential struct {
	Token  string
	Secret string
	Extra  url.Values
}

func (t TokenCredential) String() string {
	return fmt.Sprintf("TokenCredential{Token:%q, Secret:[redacted]}", t.Token)
}

func (t TokenCredential) GoString() string { return t.String() }

const (
	formURLEncoded  = "application/x-www-form-urlencoded"
	applicationJSON = "application/json"
)

// WithDefaults returns a copy of p with unset fields filled with the values
// the protocol (and most providers) expect.
func (p Provider) WithDefaults() Provider {
	if p.SignatureMethod == "" {
		p.SignatureMethod = PlainText
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	p.Endpoints.Credentials = p.Endpoints.Credentials.withDefaults(http.MethodPost, formURLEncoded)
	p.Endpoints.Token = p.Endpoints.Token.withDefaults(http.MethodPost, formURLEncoded)
	p.Endpoints.User = p.Endpoints.User.withDefaults(http.MethodGet, applicationJSON)
	if p.Endpoints.User.ContentType == "" {
		p.Endpoints.User.ContentType = formURLEncoded
	}
	if p.Endpoints.Authorization.Param == "" {
		p.Endpoints.Authorization.Param = "oauth_token"
	}
	return p
}

func (e Endpoint) withDefaults(method, accept string) Endpoint {
	if e.Method == "" {
		e.Method = method
	}
	e.Method = strings.ToUpper(e.Method)
	if e.Header == "" {
		e.Header = "Authorization"
	}
	if e.Scheme == "" {
		e.Scheme = "OAuth"
	}
	if e.Accept == "" {
		e.Accept = accept
	}
	return e
}

// Validate checks the provider description. It is meant to run once at startup.
func (p Provider) Validate(cred ClientCredential) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("oauth1: provider id is required")
	}
	if _, err := ParseSignatureMethod(string(p.SignatureMethod)); err != nil {
		return fmt.Errorf("provider %s: %w", p.ID, err)
	}
	if p.SignatureMethod == RSASHA1 && cred.PrivateKey == nil {
		return fmt.Errorf("provider %s: %w", p.ID, ErrMissingPrivateKey)
	}
	if cred.ConsumerKey == "" {
		return fmt.Errorf("provider %s: consumer key is required", p.ID)
	}
	eps := map[string]string{
		"credentials":   p.Endpoints.Credentials.URL,
		"authorization": p.Endpoints.Authorization.URL,
		"token":         p.Endpoints.Token.URL,
		"user":          p.Endpoints.User.URL,
	}
	for name, raw := range eps {
		if _, err := BaseStringURI(raw); err != nil {
			return fmt.Errorf("provider %s: %s endpoint: %w", p.ID, name, err)
		}
	}
	return nil
}
