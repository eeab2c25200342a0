package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/fortifyapp/fortify/internal/pkg/env"
)

// SignatureVerifier authenticates a raw webhook delivery. Implementations are
// swappable per provider; a false return rejects the whole event with no
// state change.
type SignatureVerifier interface {
	Verify(rawBody []byte, headers map[string]string) bool
}

// PayPalVerifier checks the PayPal transmission signature headers against a
// shared webhook secret (HMAC-SHA256 over the raw body).
type PayPalVerifier struct {
	Secret string
}

func (v *PayPalVerifier) Verify(rawBody []byte, headers map[string]string) bool {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return false
	}
	if headerValue(headers, "paypal-transmission-id") == "" {
		return false
	}
	sig := headerValue(headers, "paypal-transmission-sig")
	if sig == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), decoded)
}

// AcceptAllVerifier accepts every delivery. Only valid for development and
// tests; the constructor logs loudly so it is never silently left on.
type AcceptAllVerifier struct{}

func (AcceptAllVerifier) Verify(rawBody []byte, headers map[string]string) bool {
	return true
}

// NewAcceptAllVerifier builds the verification-disabled verifier and logs a
// warning.
func NewAcceptAllVerifier() SignatureVerifier {
	log.Print("billing: webhook signature verification is DISABLED")
	return AcceptAllVerifier{}
}

// NewVerifierFromEnv wires the production verifier from environment config.
// Verification can only be disabled in dev mode (APP_ENV=dev plus an explicit
// PAYPAL_VERIFY_DISABLED=true).
func NewVerifierFromEnv() SignatureVerifier {
	if env.IsDev() && env.GetEnv("PAYPAL_VERIFY_DISABLED", "false") == "true" {
		return NewAcceptAllVerifier()
	}
	return &PayPalVerifier{Secret: env.GetEnv("PAYPAL_WEBHOOK_SECRET", "")}
}

func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return strings.TrimSpace(v)
	}
	// Header capitalization differs between transports.
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
