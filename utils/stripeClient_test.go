package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	secret := "whsec_test"

	header := SignWebhookPayload(payload, secret, time.Now())
	assert.NoError(t, VerifyWebhookSignature(payload, header, secret, 5*time.Minute))
}

func TestVerifyWebhookSignatureWrongSecret(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)

	header := SignWebhookPayload(payload, "whsec_other", time.Now())
	assert.ErrorIs(t, VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute), ErrBadSignature)
}

func TestVerifyWebhookSignatureTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	header := SignWebhookPayload([]byte(`{"amount":100}`), secret, time.Now())

	err := VerifyWebhookSignature([]byte(`{"amount":9999}`), header, secret, 5*time.Minute)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWebhookSignatureStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"

	header := SignWebhookPayload(payload, secret, time.Now().Add(-time.Hour))
	assert.ErrorIs(t, VerifyWebhookSignature(payload, header, secret, 5*time.Minute), ErrBadSignature)
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	assert.ErrorIs(t, VerifyWebhookSignature([]byte(`{}`), "", "whsec_test", 0), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature([]byte(`{}`), "t=abc,v1=zz", "whsec_test", 0), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature([]byte(`{}`), "v1=deadbeef", "whsec_test", 0), ErrBadSignature)
}
