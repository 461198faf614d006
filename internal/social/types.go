// Package social implementa el flujo three-legged de OAuth 1.0a: obtiene
// credenciales temporales, redirige al usuario al provider, intercambia el
// verifier por token credentials, trae el perfil y lo entrega a un Resolver
// externo que decide qué usuario local corresponde.
package social

import (
	"context"

	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/profile"
)

// SessionSlot es el slot del session store donde vive la autorización pendiente.
const SessionSlot = "oauth"

// PendingAuthorization se guarda server-side entre Initiate y Resume.
// Es de un solo uso.
type PendingAuthorization struct {
	Provider      string `json:"provider"`
	RequestToken  string `json:"request_token"`
	RequestSecret string `json:"request_token_secret"`
}

// CallbackParams son los query params con los que el provider vuelve.
type CallbackParams struct {
	Token    string // oauth_token
	Verifier string // oauth_verifier
	Denied   string // denied (el usuario canceló)
}

// ResolveRequest es lo que recibe el Resolver.
type ResolveRequest struct {
	Provider    string
	Credentials oauth1.TokenCredential
	Profile     profile.Profile
	Raw         any
}

// Resolver busca o crea la cuenta local que corresponde a un perfil.
// Devolver user nil sin error rechaza el login; info se propaga al caller.
type Resolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (user any, info any, err error)
}

// ResolverFunc adapta una función a Resolver.
type ResolverFunc func(ctx context.Context, req ResolveRequest) (any, any, error)

func (f ResolverFunc) Resolve(ctx context.Context, req ResolveRequest) (any, any, error) {
	return f(ctx, req)
}

// Result es el resultado de un Resume exitoso.
type Result struct {
	Provider    string
	User        any
	Info        any
	Profile     profile.Profile
	Credentials oauth1.TokenCredential
}
