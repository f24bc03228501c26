// Package webhook verifies gateway callbacks and rebuilds the canonical
// order record from them. This is the only place external input is trusted
// to trigger side effects, so every check fails closed.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// TestSignature is the sentinel accepted instead of a real HMAC when the
// local-testing bypass is enabled. Production deployments must keep the
// bypass disabled.
const TestSignature = "test_signature"

var (
	// ErrNoSecret is returned when no webhook secret is configured.
	ErrNoSecret = errors.New("webhook secret not configured")
	// ErrEmptyBody is returned when the raw request body is empty.
	ErrEmptyBody = errors.New("empty webhook body")
	// ErrNoSignature is returned when the signature header is missing.
	ErrNoSignature = errors.New("missing signature header")
	// ErrBadSignature is returned when the signature does not match the body.
	ErrBadSignature = errors.New("signature mismatch")
)

// Verifier checks webhook signatures against a server-held secret.
type Verifier struct {
	secret          []byte
	allowTestBypass bool
}

// NewVerifier creates a Verifier. allowTestBypass accepts TestSignature in
// place of a real HMAC and exists only for local development.
func NewVerifier(secret string, allowTestBypass bool) *Verifier {
	return &Verifier{secret: []byte(secret), allowTestBypass: allowTestBypass}
}

// Verify computes HMAC-SHA256 over the raw, unparsed body bytes and
// compares it to the provided hex signature in constant time. Any missing
// input rejects: no secret, no body, no signature.
func (v *Verifier) Verify(body []byte, signature string) error {
	if len(v.secret) == 0 {
		return ErrNoSecret
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if signature == "" {
		return ErrNoSignature
	}
	if v.allowTestBypass && signature == TestSignature {
		return nil
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if len(expected) != len(signature) {
		return ErrBadSignature
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrBadSignature
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret. Used by local
// tooling and tests to produce valid signatures.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
