// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler masks sensitive information before it reaches the
// underlying text or JSON handler:
//   - HTTP headers such as Authorization, Cookie and Set-Cookie
//   - credential keys (password, token, client_secret, SAMLResponse, ...)
//   - values that look like JWTs, bearer or basic credentials, long API
//     keys, or URLs carrying a password
//   - any extra key given with WithSensitiveKeys, typically the field
//     names of the run's word list
//
// Values implementing slog.LogValuer are resolved before they are checked,
// so structured errors cannot smuggle a secret past the handler.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose, log.WithSensitiveKeys(words...))
//	logger.Warn("skipped record", "cookie", "session=abc123") // cookie=***REDACTED***
//	slog.SetDefault(logger)
package log
