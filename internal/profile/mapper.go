// Package profile maps provider specific user payloads onto the canonical
// profile handed to the user resolver.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Profile is the provider-agnostic user attribute set. "provider" is always set.
type Profile map[string]any

// Provider returns the provider ID that produced the profile.
func (p Profile) Provider() string {
	s, _ := p["provider"].(string)
	return s
}

// String returns a field as string, formatting numbers and json.Number as needed.
func (p Profile) String(field string) string {
	switch v := p[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ID is a shortcut for String("id").
func (p Profile) ID() string { return p.String("id") }

// Mapper copies fields from a provider payload into a Profile following a
// declarative {target: sourcePath} table. Paths are compiled once.
type Mapper struct {
	fields []field
}

type field struct {
	target string
	source string
	expr   jp.Expr
}

// NewMapper compiles mapping. Source paths may be plain keys ("screen_name",
// "first-name"), dotted paths ("data.id") or JSONPath ("$.emails[0].value").
func NewMapper(mapping map[string]string) (*Mapper, error) {
	m := &Mapper{fields: make([]field, 0, len(mapping))}
	for target, source := range mapping {
		target = strings.TrimSpace(target)
		if target == "" || target == "provider" {
			return nil, fmt.Errorf("profile: invalid target field %q", target)
		}
		expr, err := compilePath(strings.TrimSpace(source))
		if err != nil {
			return nil, fmt.Errorf("profile: field %q: invalid source path %q: %w", target, source, err)
		}
		m.fields = append(m.fields, field{target: target, source: source, expr: expr})
	}
	sort.Slice(m.fields, func(i, j int) bool { return m.fields[i].target < m.fields[j].target })
	return m, nil
}

// compilePath parses JSONPath sources as-is. Anything else is a dotted key
// path where each segment is taken literally, so "first-name" or "@id" are
// valid keys. A segment may end in list indexes: "urls[0]".
func compilePath(path string) (jp.Expr, error) {
	if strings.HasPrefix(path, "$") {
		return jp.ParseString(path)
	}
	if path == "" {
		return nil, errors.New("empty path")
	}
	x := jp.R()
	for _, seg := range strings.Split(path, ".") {
		name := seg
		var idx []int
		for strings.HasSuffix(name, "]") {
			open := strings.LastIndexByte(name, '[')
			if open < 0 {
				break
			}
			n, err := strconv.Atoi(name[open+1 : len(name)-1])
			if err != nil {
				break
			}
			idx = append([]int{n}, idx...)
			name = name[:open]
		}
		if name == "" && (len(idx) == 0 || len(x) == 1) {
			return nil, fmt.Errorf("empty segment in %q", path)
		}
		if name != "" {
			x = x.C(name)
		}
		for _, n := range idx {
			x = x.N(n)
		}
	}
	return x, nil
}

// Map builds the canonical profile. Fields missing from payload are omitted.
func (m *Mapper) Map(providerID string, payload any) Profile {
	out := Profile{"provider": providerID}
	if payload == nil {
		return out
	}
	for _, f := range m.fields {
		res := f.expr.Get(payload)
		if len(res) == 0 || res[0] == nil {
			continue
		}
		out[f.target] = res[0]
	}
	return out
}

// MapJSON decodes raw and maps it. Numbers keep their exact textual form.
func (m *Mapper) MapJSON(providerID string, raw []byte) (Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("profile: decode payload: %w", err)
	}
	return m.Map(providerID, payload), nil
}

// Targets lists the canonical fields this mapper can produce, sorted.
func (m *Mapper) Targets() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.target
	}
	return out
}
