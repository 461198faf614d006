package oauth1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/hellojohn-connect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
)

// DefaultUserAgent identifies this service to providers.
const DefaultUserAgent = "hellojohn-connect/1.0"

var errNoToken = errors.New("response has no oauth_token")

const (
	oauthVersion = "1.0"
	maxBody      = 1 << 20
	tokenRef     = "$token."
)

// ClientDeps carries the optional collaborators of a Client.
type ClientDeps struct {
	HTTP      *http.Client     // default: 10s timeout
	UserAgent string           // default: DefaultUserAgent
	Clock     func() time.Time // default: Timestamp
	Nonce     func() string    // default: Nonce(NonceLength)
}

// Client signs and sends the requests of a three-legged exchange for a
// single provider. It holds no per-user state and is safe for concurrent use.
type Client struct {
	provider  Provider
	cred      ClientCredential
	http      *http.Client
	userAgent string
	timestamp func() int64
	nonce     func() string
}

// NewClient builds a Client for p. p is completed with WithDefaults.
func NewClient(p Provider, cred ClientCredential, deps ClientDeps) *Client {
	c := &Client{
		provider:  p.WithDefaults(),
		cred:      cred,
		http:      deps.HTTP,
		userAgent: deps.UserAgent,
		timestamp: Timestamp,
		nonce:     deps.Nonce,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if deps.Clock != nil {
		c.timestamp = func() int64 { return deps.Clock().Unix() }
	}
	if c.nonce == nil {
		c.nonce = func() string { return Nonce(NonceLength) }
	}
	return c
}

// Provider returns the provider description (with defaults applied).
func (c *Client) Provider() Provider { return c.provider }

// TemporaryCredentials performs RFC 5849 section 2.1. An empty callback falls
// back to the provider's configured callback, then to "oob".
func (c *Client) TemporaryCredentials(ctx context.Context, callback string) (*TemporaryCredentials, error) {
	if callback == "" {
		callback = c.provider.Callback
	}
	if callback == "" {
		callback = "oob"
	}

	ep := c.provider.Endpoints.Credentials
	body, err := c.send(ctx, StepTemporaryCredentials, ep, map[string]string{
		"oauth_callback": callback,
	}, "", nil)
	if err != nil {
		return nil, err
	}

	vals, err := url.ParseQuery(string(body))
	if err != nil || vals.Get("oauth_token") == "" {
		return nil, &ProviderRequestFailed{
			Provider:   c.provider.ID,
			Step:       StepTemporaryCredentials,
			StatusCode: http.StatusOK,
			Body:       truncate(body),
			Err:        errNoToken,
		}
	}
	return &TemporaryCredentials{
		Token:             vals.Get("oauth_token"),
		Secret:            vals.Get("oauth_token_secret"),
		CallbackConfirmed: vals.Get("oauth_callback_confirmed") == "true",
	}, nil
}

// AuthorizationURL returns the resource owner authorization redirect for token.
func (c *Client) AuthorizationURL(token string) (string, error) {
	ep := c.provider.Endpoints.Authorization
	u, err := url.Parse(ep.URL)
	if err != nil {
		return "", fmt.Errorf("oauth1: authorization url: %w", err)
	}
	q := u.Query()
	q.Set(ep.Param, token)
	u.RawQuery = NormalizeValues(q)
	return u.String(), nil
}

// TokenCredentials performs RFC 5849 section 2.3, signing with the consumer
// secret and the temporary credentials secret.
func (c *Client) TokenCredentials(ctx context.Context, requestToken, verifier, requestSecret string) (*TokenCredential, error) {
	params := map[string]string{"oauth_token": requestToken}
	if verifier != "" {
		params["oauth_verifier"] = verifier
	}

	ep := c.provider.Endpoints.Token
	body, err := c.send(ctx, StepTokenCredentials, ep, params, requestSecret, nil)
	if err != nil {
		return nil, err
	}

	vals, err := url.ParseQuery(string(body))
	if err != nil || vals.Get("oauth_token") == "" {
		return nil, &ProviderRequestFailed{
			Provider:   c.provider.ID,
			Step:       StepTokenCredentials,
			StatusCode: http.StatusOK,
			Body:       truncate(body),
			Err:        errNoToken,
		}
	}

	tc := &TokenCredential{
		Token:  vals.Get("oauth_token"),
		Secret: vals.Get("oauth_token_secret"),
		Extra:  url.Values{},
	}
	for k, v := range vals {
		if k == "oauth_token" || k == "oauth_token_secret" {
			continue
		}
		tc.Extra[k] = v
	}
	return tc, nil
}

// UserInfo fetches the user-info endpoint with the token credentials and
// returns the decoded JSON payload. Numbers are kept as json.Number.
func (c *Client) UserInfo(ctx context.Context, tc TokenCredential) (any, error) {
	ep := c.provider.Endpoints.User

	query := url.Values{}
	for k, v := range ep.Query {
		if strings.HasPrefix(v, tokenRef) {
			field := strings.TrimPrefix(v, tokenRef)
			if tv := tc.Extra.Get(field); tv != "" {
				query.Set(k, tv)
			}
			continue
		}
		query.Set(k, v)
	}

	body, err := c.send(ctx, StepUserInfo, ep, map[string]string{
		"oauth_token": tc.Token,
	}, tc.Secret, query)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &ProviderRequestFailed{
			Provider:   c.provider.ID,
			Step:       StepUserInfo,
			StatusCode: http.StatusOK,
			Body:       truncate(body),
			Err:        fmt.Errorf("decode user info: %w", err),
		}
	}
	return payload, nil
}

// NewRequest builds a signed request without sending it. step-specific
// protocol parameters go in oauth; query is merged into the base string and
// appended to the URL but stays out of the Authorization header.
func (c *Client) NewRequest(ctx context.Context, ep Endpoint, oauth map[string]string, tokenSecret string, query url.Values) (*http.Request, error) {
	u, err := url.Parse(ep.URL)
	if err != nil {
		return nil, fmt.Errorf("oauth1: endpoint url: %w", err)
	}

	params := map[string]string{
		"oauth_consumer_key":     c.cred.ConsumerKey,
		"oauth_signature_method": string(c.provider.SignatureMethod),
		"oauth_timestamp":        strconv.FormatInt(c.timestamp(), 10),
		"oauth_nonce":            c.nonce(),
		"oauth_version":          oauthVersion,
	}
	for k, v := range oauth {
		params[k] = v
	}

	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	all := url.Values{}
	for k, vs := range q {
		all[k] = append(all[k], vs...)
	}
	for k, v := range params {
		all.Add(k, v)
	}

	base, err := SignatureBaseString(ep.Method, ep.URL, NormalizeValues(all))
	if err != nil {
		return nil, err
	}
	sig, err := Sign(c.provider.SignatureMethod, base, c.cred, tokenSecret)
	if err != nil {
		return nil, err
	}
	params["oauth_signature"] = sig
	if c.provider.Realm != "" {
		params["realm"] = c.provider.Realm
	}

	u.RawQuery = NormalizeValues(q)
	req, err := http.NewRequestWithContext(ctx, ep.Method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(ep.Header, AuthorizationHeader(ep.Scheme, params))
	req.Header.Set("User-Agent", c.userAgent)
	if ep.Accept != "" {
		req.Header.Set("Accept", ep.Accept)
	}
	if ep.ContentType != "" {
		req.Header.Set("Content-Type", ep.ContentType)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, step Step, ep Endpoint, oauth map[string]string, tokenSecret string, query url.Values) ([]byte, error) {
	log := logger.From(ctx).With(
		logger.Component("oauth1.client"),
		logger.Provider(c.provider.ID),
		logger.Step(string(step)),
	)

	req, err := c.NewRequest(ctx, ep, oauth, tokenSecret, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveProviderRequest(c.provider.ID, string(step), time.Since(start))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.provider.ID, string(step), "error").Inc()
		log.Warn("provider request failed", logger.Err(err))
		return nil, &ProviderRequestFailed{Provider: c.provider.ID, Step: step, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.provider.ID, string(step), "error").Inc()
		return nil, &ProviderRequestFailed{Provider: c.provider.ID, Step: step, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequests.WithLabelValues(c.provider.ID, string(step), "rejected").Inc()
		log.Warn("provider rejected request", logger.Status(resp.StatusCode))
		return nil, &ProviderRequestFailed{
			Provider:   c.provider.ID,
			Step:       step,
			StatusCode: resp.StatusCode,
			Body:       truncate(body),
		}
	}

	metrics.ProviderRequests.WithLabelValues(c.provider.ID, string(step), "ok").Inc()
	log.Debug("provider request completed",
		logger.Status(resp.StatusCode),
		logger.DurationMs(time.Since(start).Milliseconds()),
	)
	return body, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
