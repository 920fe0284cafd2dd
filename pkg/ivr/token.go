package ivr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer binds the round-tripped (call, locale, step) continuation to the
// call it was issued for. A signer without a secret signs nothing and
// accepts everything.
type Signer struct {
	secret []byte
}

// NewSigner creates a continuation signer
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Enabled reports whether continuations are signed
func (s *Signer) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Sign returns the signature for a continuation, or "" when signing is disabled
func (s *Signer) Sign(callID, locale, step string) string {
	if !s.Enabled() {
		return ""
	}
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(callID + "\n" + locale + "\n" + step))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks sig against the continuation
func (s *Signer) Verify(callID, locale, step, sig string) bool {
	if !s.Enabled() {
		return true
	}
	if sig == "" {
		return false
	}
	return hmac.Equal([]byte(s.Sign(callID, locale, step)), []byte(sig))
}
