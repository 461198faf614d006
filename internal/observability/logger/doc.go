// Package logger envuelve Zap con un logger global y scoping por contexto.
//
//   - Init(Config) configura el logger global una vez en main.
//   - Los middlewares guardan un logger "scoped" (request_id, session, ...)
//     con ToContext; el resto del código usa From(ctx).
//   - "dev" escribe consola con colores, "prod" JSON con stacktrace en error,
//     "test" JSON sin tiempo ni caller.
//   - Los campos con claves sensibles (consumer_secret, token_secret,
//     oauth_signature, ...) se escriben como "[redacted]" en cualquier entorno.
//
// Uso:
//
//	log := logger.From(ctx).With(logger.Component("social.oauth1"), logger.Provider(id))
//	log.Info("temporary credentials obtained", logger.State("pending"))
package logger
