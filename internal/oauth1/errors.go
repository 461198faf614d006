package oauth1

import (
	"errors"
	"fmt"
)

// Step identifies which provider endpoint a signed request targets.
type Step string

const (
	StepTemporaryCredentials Step = "temporary_credentials"
	StepTokenCredentials     Step = "token_credentials"
	StepUserInfo             Step = "user_info"
)

var (
	// ErrUnsupportedSignatureMethod is returned for any method other than
	// PLAINTEXT, HMAC-SHA1 or RSA-SHA1. It is a configuration error.
	ErrUnsupportedSignatureMethod = errors.New("oauth1: unsupported signature method")

	// ErrMissingPrivateKey is returned when RSA-SHA1 is configured without a key.
	ErrMissingPrivateKey = errors.New("oauth1: RSA-SHA1 requires a consumer private key")

	errNotAbsolute = errors.New("uri must be absolute")
)

// maxErrorBody caps how much of a provider response is kept in errors.
const maxErrorBody = 4 << 10

// ProviderRequestFailed reports a transport error or a non-2xx response from
// a provider endpoint. StatusCode is 0 when no response was received.
type ProviderRequestFailed struct {
	Provider   string
	Step       Step
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderRequestFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth1: %s request to %s failed: %v", e.Step, e.Provider, e.Err)
	}
	return fmt.Sprintf("oauth1: %s request to %s failed: status %d", e.Step, e.Provider, e.StatusCode)
}

func (e *ProviderRequestFailed) Unwrap() error { return e.Err }
