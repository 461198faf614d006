package server

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-connect/internal/cache"
	jwtx "github.com/dropDatabas3/hellojohn-connect/internal/jwt"
	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/profile"
	"github.com/dropDatabas3/hellojohn-connect/internal/session"
	"github.com/dropDatabas3/hellojohn-connect/internal/social"
)

// newProvider levanta un provider PLAINTEXT mínimo.
func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/request_token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "oauth_token=T1&oauth_token_secret=S1&oauth_callback_confirmed=true")
	})
	mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "oauth_token=T2&oauth_token_secret=S2&user_id=99")
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id_str":"99","screen_name":"ada"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, providerURL string, verifier *jwtx.Verifier) http.Handler {
	t.Helper()
	store := session.NewCacheStore(cache.NewMemory("", 0))
	client := oauth1.NewClient(oauth1.Provider{
		ID: "example",
		Endpoints: oauth1.Endpoints{
			Credentials:   oauth1.Endpoint{URL: providerURL + "/request_token"},
			Authorization: oauth1.Endpoint{URL: providerURL + "/authorize"},
			Token:         oauth1.Endpoint{URL: providerURL + "/access_token"},
			User:          oauth1.Endpoint{URL: providerURL + "/user"},
		},
	}, oauth1.ClientCredential{ConsumerKey: "ck", ConsumerSecret: "cs"}, oauth1.ClientDeps{})
	mapper, err := profile.NewMapper(map[string]string{"id": "id_str", "username": "screen_name"})
	require.NoError(t, err)
	ctrl, err := social.NewController(social.ControllerDeps{
		Client:   client,
		Mapper:   mapper,
		Store:    store,
		Resolver: social.ProfileResolver(),
	})
	require.NoError(t, err)
	reg := social.NewRegistry()
	require.NoError(t, reg.Register(ctrl))

	deps := RouterDeps{Registry: reg}
	if verifier != nil {
		deps.Verifier = verifier
	}
	return NewRouter(deps)
}

func noRedirectClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRouter_OAuth1RoundTrip(t *testing.T) {
	prov := newProvider(t)
	app := httptest.NewServer(newTestRouter(t, prov.URL, nil))
	defer app.Close()
	c := noRedirectClient(t)

	resp, err := c.Get(app.URL + "/v1/auth/oauth1/example")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "T1", loc.Query().Get("oauth_token"))

	cb := app.URL + "/v1/auth/oauth1/example/callback?oauth_token=T1&oauth_verifier=V1"
	resp, err = c.Get(cb)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "example", body["provider"])
	require.Equal(t, map[string]any{"provider": "example", "id": "99", "username": "ada"}, body["profile"])
	require.Equal(t, "99", body["user"].(map[string]any)["subject"])

	// replay
	resp, err = c.Get(cb)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "SESSION_MISMATCH", body["code"])
}

func TestRouter_CallbackFromOtherBrowser(t *testing.T) {
	prov := newProvider(t)
	app := httptest.NewServer(newTestRouter(t, prov.URL, nil))
	defer app.Close()

	resp, err := noRedirectClient(t).Get(app.URL + "/v1/auth/oauth1/example")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = noRedirectClient(t).Get(app.URL + "/v1/auth/oauth1/example/callback?oauth_token=T1&oauth_verifier=V1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_UnknownProvider(t *testing.T) {
	prov := newProvider(t)
	app := httptest.NewServer(newTestRouter(t, prov.URL, nil))
	defer app.Close()

	resp, err := noRedirectClient(t).Get(app.URL + "/v1/auth/oauth1/nope")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ProviderDownIs502(t *testing.T) {
	prov := newProvider(t)
	base := prov.URL
	prov.Close()
	app := httptest.NewServer(newTestRouter(t, base, nil))
	defer app.Close()

	resp, err := noRedirectClient(t).Get(app.URL + "/v1/auth/oauth1/example")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRouter_WhoAmI(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := jwtx.NewStaticVerifier(&key.PublicKey, nil)
	require.NoError(t, err)

	prov := newProvider(t)
	app := httptest.NewServer(newTestRouter(t, prov.URL, v))
	defer app.Close()

	resp, err := http.Get(app.URL + "/v1/client/whoami")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, jwtv5.MapClaims{"sub": "svc-a"}).SignedString(key)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, app.URL+"/v1/client/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "svc-a", body["claims"]["sub"])
	require.Equal(t, "RS256", body["header"]["alg"])
}
