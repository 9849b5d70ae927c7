package payments

import (
	"crypto/hmac"
	"errors"
)

var ErrBadCallbackToken = errors.New("payments: callback token mismatch")

// CallbackVerifier checks the shared-secret header the provider sends with
// every webhook. Constant-time compare; an empty configured token disables
// verification (dev mode).
type CallbackVerifier struct {
	Token string
}

func (v CallbackVerifier) Verify(header string) error {
	if v.Token == "" {
		return nil
	}
	if !hmac.Equal([]byte(header), []byte(v.Token)) {
		return ErrBadCallbackToken
	}
	return nil
}
