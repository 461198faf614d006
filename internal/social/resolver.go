package social

import (
	"context"
)

// ProfileIdentity es el usuario que devuelve ProfileResolver.
type ProfileIdentity struct {
	Provider string `json:"provider"`
	Subject  string `json:"subject"`
	Username string `json:"username,omitempty"`
}

// ProfileResolver es el Resolver por defecto del servicio: no tiene cuentas
// locales, la identidad es (provider, id del perfil). Rechaza perfiles sin id.
func ProfileResolver() Resolver {
	return ResolverFunc(func(_ context.Context, req ResolveRequest) (any, any, error) {
		id := req.Profile.ID()
		if id == "" {
			return nil, map[string]any{"reason": "profile has no id"}, nil
		}
		return &ProfileIdentity{
			Provider: req.Provider,
			Subject:  id,
			Username: req.Profile.String("username"),
		}, map[string]any{"new": false}, nil
	})
}
