package main

import (
	"fmt"
	"net/url"
	"strings"
)

// parseParams convierte ["k=v", ...] en url.Values. Claves repetidas se
// acumulan; "k" sin "=" vale "".
func parseParams(raw []string) (url.Values, error) {
	vals := url.Values{}
	for _, kv := range raw {
		k, v, _ := strings.Cut(kv, "=")
		if k == "" {
			return nil, fmt.Errorf("parámetro inválido %q (esperado k=v)", kv)
		}
		vals.Add(k, v)
	}
	return vals, nil
}
