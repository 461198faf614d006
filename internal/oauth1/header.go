package oauth1

import (
	"sort"
	"strings"
)

// AuthorizationHeader serializes params as an RFC 5849 section 3.5.1 header
// value: keys sorted ascending, values encoded and double-quoted, joined by ", ".
func AuthorizationHeader(scheme string, params map[string]string) string {
	if scheme == "" {
		scheme = "OAuth"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteByte(' ')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(Encode(params[k]))
		b.WriteByte('"')
	}
	return b.String()
}
