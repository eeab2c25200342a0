package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPayPalVerifier_Verify(t *testing.T) {
	payload := []byte(`{"event_type":"PAYMENT.SALE.COMPLETED"}`)
	secret := "top-secret"

	v := &PayPalVerifier{Secret: secret}

	headers := map[string]string{
		"paypal-transmission-id":  "tx-1",
		"paypal-transmission-sig": signPayload(payload, secret),
	}
	if !v.Verify(payload, headers) {
		t.Fatalf("expected valid signature to verify")
	}

	headers["paypal-transmission-sig"] = signPayload(payload, "wrong-secret")
	if v.Verify(payload, headers) {
		t.Fatalf("expected signature from wrong secret to fail")
	}
}

func TestPayPalVerifier_HeaderCaseInsensitive(t *testing.T) {
	payload := []byte(`{}`)
	secret := "s"

	v := &PayPalVerifier{Secret: secret}
	headers := map[string]string{
		"Paypal-Transmission-Id":  "tx-1",
		"Paypal-Transmission-Sig": signPayload(payload, secret),
	}
	if !v.Verify(payload, headers) {
		t.Fatalf("expected canonical header capitalization to verify")
	}
}

func TestPayPalVerifier_MissingPieces(t *testing.T) {
	payload := []byte(`{}`)
	secret := "s"
	sig := signPayload(payload, secret)

	tests := []struct {
		name    string
		secret  string
		headers map[string]string
	}{
		{name: "no secret", secret: "", headers: map[string]string{"paypal-transmission-id": "tx", "paypal-transmission-sig": sig}},
		{name: "no transmission id", secret: secret, headers: map[string]string{"paypal-transmission-sig": sig}},
		{name: "no signature", secret: secret, headers: map[string]string{"paypal-transmission-id": "tx"}},
		{name: "non-hex signature", secret: secret, headers: map[string]string{"paypal-transmission-id": "tx", "paypal-transmission-sig": "not-hex!"}},
	}

	for _, tt := range tests {
		v := &PayPalVerifier{Secret: tt.secret}
		if v.Verify(payload, tt.headers) {
			t.Fatalf("%s: expected verification to fail", tt.name)
		}
	}
}

func TestAcceptAllVerifier(t *testing.T) {
	v := NewAcceptAllVerifier()
	if !v.Verify(nil, nil) {
		t.Fatalf("expected accept-all verifier to accept")
	}
}
