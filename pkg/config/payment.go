package config

import (
	"errors"
	"strings"
)

const (
	// ChapaPublicKeyPrefix is the prefix every Chapa public key carries (test and live).
	ChapaPublicKeyPrefix = "CHAPUBK_"
	// ChapaPublicKeyPlaceholder ships as the local default and is never a usable key.
	ChapaPublicKeyPlaceholder = "CHAPUBK_TEST-your_public_key_here"
)

var (
	ErrPaymentKeyMissing     = errors.New("chapa public key is not set")
	ErrPaymentKeyPlaceholder = errors.New("chapa public key is still the placeholder value")
	ErrPaymentKeyPrefix      = errors.New("chapa public key must start with " + ChapaPublicKeyPrefix)
)

// Validate reports whether the hosted-payment client configuration can be used.
func (p PaymentConfig) Validate() error {
	key := strings.TrimSpace(p.PublicKey)
	switch {
	case key == "":
		return ErrPaymentKeyMissing
	case key == ChapaPublicKeyPlaceholder:
		return ErrPaymentKeyPlaceholder
	case !strings.HasPrefix(key, ChapaPublicKeyPrefix):
		return ErrPaymentKeyPrefix
	}
	return nil
}

// Configured is a convenience wrapper around Validate.
func (p PaymentConfig) Configured() bool {
	return p.Validate() == nil
}

// SetupInstructions lists the operator steps shown when the payment key is unusable.
func (p PaymentConfig) SetupInstructions() []string {
	return []string{
		"Sign in to the Chapa dashboard and open Settings > API.",
		"Copy the public key (it starts with " + ChapaPublicKeyPrefix + ").",
		"Set " + EnvChapaPublicKey + " to that key in the service environment or .env file.",
		"Restart the storefront service and retry checkout.",
	}
}
