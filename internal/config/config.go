package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/security/secretbox"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// URL pública del servicio; se usa para armar los callbacks por defecto.
		PublicURL       string `yaml:"public_url"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Session struct {
		Driver     string `yaml:"driver"` // memory | redis | postgres
		TTL        string `yaml:"ttl"`    // vida de una autorización pendiente
		CookieName string `yaml:"cookie_name"`
		Secure     bool   `yaml:"secure"`
		// Clave maestra (base64/hex, 32 bytes) para sellar valores en redis/postgres.
		SealKey string `yaml:"seal_key"`
	} `yaml:"session"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	ClientToken struct {
		PublicKeyFile string   `yaml:"public_key_file"`
		JWKSFile      string   `yaml:"jwks_file"`
		JWKSURL       string   `yaml:"jwks_url"`
		Algs          []string `yaml:"algs"`
	} `yaml:"client_token"`

	HTTPClient struct {
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"http_client"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Providers []ProviderConfig `yaml:"providers"`
}

// EndpointConfig es la versión YAML de oauth1.Endpoint.
type EndpointConfig struct {
	URL         string            `yaml:"url"`
	Method      string            `yaml:"method"`
	Header      string            `yaml:"header"`
	Scheme      string            `yaml:"scheme"`
	Accept      string            `yaml:"accept"`
	ContentType string            `yaml:"content_type"`
	Query       map[string]string `yaml:"query"`
	Param       string            `yaml:"param"`
}

// ProviderConfig describe un provider OAuth 1.0a.
type ProviderConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	SignatureMethod string `yaml:"signature_method"`
	Realm           string `yaml:"realm"`
	Callback        string `yaml:"callback"`

	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	PrivateKeyFile string `yaml:"private_key_file"` // PEM, sólo RSA-SHA1

	Endpoints struct {
		Credentials   EndpointConfig `yaml:"credentials"`
		Authorization EndpointConfig `yaml:"authorization"`
		Token         EndpointConfig `yaml:"token"`
		User          EndpointConfig `yaml:"user"`
	} `yaml:"endpoints"`

	// Mapping: campo canónico -> path en el payload de user info.
	Mapping map[string]string `yaml:"mapping"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	c.applyDefaults()

	// Overrides por env
	c.applyEnvOverrides()

	// Rutas relativas de claves respecto al directorio del YAML
	base := filepath.Dir(path)
	c.ClientToken.PublicKeyFile = resolvePath(base, c.ClientToken.PublicKeyFile)
	c.ClientToken.JWKSFile = resolvePath(base, c.ClientToken.JWKSFile)
	for i := range c.Providers {
		c.Providers[i].PrivateKeyFile = resolvePath(base, c.Providers[i].PrivateKeyFile)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "10m"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "hjc"
	}
	if c.HTTPClient.Timeout == "" {
		c.HTTPClient.Timeout = "10s"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// ProviderEnvPrefix devuelve el prefijo de env para un provider:
// "twitter" -> "OAUTH1_TWITTER_".
func ProviderEnvPrefix(id string) string {
	return "OAUTH1_" + strings.Trim(nonAlnum.ReplaceAllString(strings.ToUpper(id), "_"), "_") + "_"
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Los secretos de providers conviene pasarlos sólo por env.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("PUBLIC_URL"); ok {
		c.Server.PublicURL = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_DRIVER"); ok {
		c.Session.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("SESSION_COOKIE_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_SEAL_KEY"); ok {
		c.Session.SealKey = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}

	// POSTGRES
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Postgres.DSN = v
	}

	// CLIENT TOKEN
	if v, ok := getEnvStr("CLIENT_TOKEN_PUBLIC_KEY_FILE"); ok {
		c.ClientToken.PublicKeyFile = v
	}
	if v, ok := getEnvStr("CLIENT_TOKEN_JWKS_URL"); ok {
		c.ClientToken.JWKSURL = v
	}
	if v, ok := getEnvCSV("CLIENT_TOKEN_ALGS"); ok {
		c.ClientToken.Algs = v
	}

	// HTTP CLIENT
	if v, ok := getEnvStr("HTTP_CLIENT_TIMEOUT"); ok {
		c.HTTPClient.Timeout = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	// PROVIDERS: OAUTH1_<ID>_CONSUMER_KEY / _CONSUMER_SECRET / _PRIVATE_KEY_FILE
	for i := range c.Providers {
		p := &c.Providers[i]
		prefix := ProviderEnvPrefix(p.ID)
		if v, ok := getEnvStr(prefix + "CONSUMER_KEY"); ok {
			p.ConsumerKey = v
		}
		if v, ok := getEnvStr(prefix + "CONSUMER_SECRET"); ok {
			p.ConsumerSecret = v
		}
		if v, ok := getEnvStr(prefix + "PRIVATE_KEY_FILE"); ok {
			p.PrivateKeyFile = v
		}
	}
}

// Validate chequea la configuración completa. Los errores de providers
// (método de firma desconocido, URLs inválidas) son fatales al arrancar.
func (c *Config) Validate() error {
	var errs []error

	for name, d := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"session.ttl":             c.Session.TTL,
		"http_client.timeout":     c.HTTPClient.Timeout,
		"rate.window":             c.Rate.Window,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Session.Driver {
	case "memory", "redis":
	case "postgres":
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			errs = append(errs, errors.New("postgres.dsn is required with session.driver=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.driver: unknown driver %q", c.Session.Driver))
	}

	if c.Session.SealKey != "" {
		if _, err := secretbox.ParseKey(c.Session.SealKey); err != nil {
			errs = append(errs, fmt.Errorf("session.seal_key: %w", err))
		}
	} else if c.IsProd() && c.Session.Driver != "memory" {
		errs = append(errs, errors.New("session.seal_key is required in prod with a shared session store"))
	}

	seen := map[string]bool{}
	for _, p := range c.Providers {
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("providers: duplicate id %q", p.ID))
		}
		seen[p.ID] = true
		if _, err := oauth1.ParseSignatureMethod(p.SignatureMethod); err != nil {
			errs = append(errs, fmt.Errorf("providers[%s]: %w", p.ID, err))
		}
	}

	return errors.Join(errs...)
}

// Duration parsea un campo ya validado; 0 si está vacío.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// IsProd indica si corre en producción.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// CallbackURL devuelve el callback del provider: el configurado o
// PublicURL + /v1/auth/oauth1/{id}/callback.
func (c *Config) CallbackURL(p ProviderConfig) string {
	if strings.TrimSpace(p.Callback) != "" {
		return p.Callback
	}
	if strings.TrimSpace(c.Server.PublicURL) == "" {
		return ""
	}
	return strings.TrimRight(c.Server.PublicURL, "/") + "/v1/auth/oauth1/" + p.ID + "/callback"
}

func (e EndpointConfig) endpoint() oauth1.Endpoint {
	return oauth1.Endpoint{
		URL:         e.URL,
		Method:      e.Method,
		Header:      e.Header,
		Scheme:      e.Scheme,
		Accept:      e.Accept,
		ContentType: e.ContentType,
		Query:       e.Query,
		Param:       e.Param,
	}
}

// Build convierte la config en oauth1.Provider + credencial y los valida.
// callback es el callback efectivo (ver CallbackURL).
func (p ProviderConfig) Build(callback string) (oauth1.Provider, oauth1.ClientCredential, error) {
	method, err := oauth1.ParseSignatureMethod(p.SignatureMethod)
	if err != nil {
		return oauth1.Provider{}, oauth1.ClientCredential{}, fmt.Errorf("provider %s: %w", p.ID, err)
	}

	prov := oauth1.Provider{
		ID:              p.ID,
		Name:            p.Name,
		SignatureMethod: method,
		Realm:           p.Realm,
		Callback:        callback,
		Mapping:         p.Mapping,
		Endpoints: oauth1.Endpoints{
			Credentials:   p.Endpoints.Credentials.endpoint(),
			Authorization: p.Endpoints.Authorization.endpoint(),
			Token:         p.Endpoints.Token.endpoint(),
			User:          p.Endpoints.User.endpoint(),
		},
	}.WithDefaults()

	cred := oauth1.ClientCredential{
		ConsumerKey:    p.ConsumerKey,
		ConsumerSecret: p.ConsumerSecret,
	}
	if p.PrivateKeyFile != "" {
		b, err := os.ReadFile(p.PrivateKeyFile)
		if err != nil {
			return oauth1.Provider{}, oauth1.ClientCredential{}, fmt.Errorf("provider %s: read private key: %w", p.ID, err)
		}
		key, err := oauth1.ParseRSAPrivateKey(b)
		if err != nil {
			return oauth1.Provider{}, oauth1.ClientCredential{}, fmt.Errorf("provider %s: %w", p.ID, err)
		}
		cred.PrivateKey = key
	}

	if err := prov.Validate(cred); err != nil {
		return oauth1.Provider{}, oauth1.ClientCredential{}, err
	}
	return prov, cred, nil
}
