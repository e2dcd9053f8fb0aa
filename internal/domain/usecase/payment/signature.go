package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	errs "github.com/reelkit/credits-service/internal/domain/error"
)

// signaturePrefix is stripped from the header value if the provider sends it
const signaturePrefix = "sha256="

// VerifySignature checks the webhook signature header against an HMAC-SHA256
// digest of the raw payload under the shared secret. Comparison is constant
// time. An invalid signature is terminal: no ledger mutation may follow it.
func VerifySignature(payload []byte, signatureHeader, secret string) error {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" || secret == "" {
		return errs.ErrInvalidSignature
	}
	signatureHeader = strings.TrimPrefix(signatureHeader, signaturePrefix)

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signatureHeader), []byte(expected)) {
		return errs.ErrInvalidSignature
	}

	return nil
}

// Sign computes the signature for a payload. Used by tests and by the
// provider simulator script.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
