package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[redacted]"

// Claves que nunca se escriben en claro, venga de donde venga el campo.
var secretKeys = map[string]struct{}{
	"consumer_secret":      {},
	"token_secret":         {},
	"oauth_token_secret":   {},
	"request_token_secret": {},
	"oauth_signature":      {},
	"private_key":          {},
	"authorization":        {},
	"password":             {},
	"seal_key":             {},
}

func isSecretKey(k string) bool {
	_, ok := secretKeys[strings.ToLower(k)]
	return ok
}

// redactCore reemplaza el valor de los campos con claves sensibles.
type redactCore struct {
	zapcore.Core
}

func redact(c zapcore.Core) zapcore.Core { return &redactCore{Core: c} }

func scrub(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !isSecretKey(f.Key) {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = zap.String(f.Key, redacted)
	}
	if out == nil {
		return fields
	}
	return out
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(scrub(fields))}
}

func (c *redactCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, scrub(fields))
}
