package ivr

import "testing"

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret")
	sig := s.Sign("CA123", "en-IN", "phone")
	if sig == "" {
		t.Fatal("expected a signature")
	}
	if !s.Verify("CA123", "en-IN", "phone", sig) {
		t.Error("valid signature rejected")
	}

	tampered := []struct{ call, locale, step string }{
		{"CA999", "en-IN", "phone"},
		{"CA123", "hi-IN", "phone"},
		{"CA123", "en-IN", "hospital"},
	}
	for _, tt := range tampered {
		if s.Verify(tt.call, tt.locale, tt.step, sig) {
			t.Errorf("tampered continuation accepted: %+v", tt)
		}
	}
	if s.Verify("CA123", "en-IN", "phone", "") {
		t.Error("missing signature accepted")
	}
}

func TestSignerDisabled(t *testing.T) {
	s := NewSigner("")
	if s.Enabled() {
		t.Fatal("empty secret should disable signing")
	}
	if sig := s.Sign("CA1", "en-IN", "name"); sig != "" {
		t.Errorf("Sign() = %q, want empty", sig)
	}
	if !s.Verify("CA1", "en-IN", "name", "anything") {
		t.Error("disabled signer should accept")
	}

	var nilSigner *Signer
	if !nilSigner.Verify("CA1", "en-IN", "name", "") {
		t.Error("nil signer should accept")
	}
}
