package twilio

import (
	"github.com/twilio/twilio-go/client"
)

// SignatureValidator checks the X-Twilio-Signature header of webhook requests
type SignatureValidator interface {
	Validate(url string, params map[string]string, signature string) bool
}

type signatureValidator struct {
	validator client.RequestValidator
}

// NewSignatureValidator creates a validator keyed by the account auth token
func NewSignatureValidator(authToken string) SignatureValidator {
	return &signatureValidator{validator: client.NewRequestValidator(authToken)}
}

func (v *signatureValidator) Validate(url string, params map[string]string, signature string) bool {
	return v.validator.Validate(url, params, signature)
}
