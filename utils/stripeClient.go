package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"skillhire/config"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const stripeBaseURL = "https://api.stripe.com/v1"

var (
	ErrStripeNotConfigured = errors.New("stripe is not configured")
	ErrBadSignature        = errors.New("webhook signature verification failed")
)

// StripeClient is a thin client over the Stripe REST API. Only the calls
// the entitlement gateway needs are implemented.
type StripeClient struct {
	client    *resty.Client
	secretKey string
}

// NewStripeClient builds a client from the loaded configuration.
func NewStripeClient() *StripeClient {
	return &StripeClient{
		client:    resty.New().SetBaseURL(stripeBaseURL).SetTimeout(15 * time.Second),
		secretKey: config.AppConfig.StripeSecretKey,
	}
}

// Configured reports whether a secret key is present.
func (s *StripeClient) Configured() bool {
	return s.secretKey != ""
}

// PaymentIntent is the subset of Stripe's payment intent object we use.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
}

// StripeError is Stripe's error envelope.
type StripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePaymentIntent creates a payment intent with the given metadata. The
// metadata must carry our payment reference so the webhook can correlate.
func (s *StripeClient) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if !s.Configured() {
		return nil, ErrStripeNotConfigured
	}

	form := map[string]string{
		"amount":                             strconv.FormatInt(amount, 10),
		"currency":                           strings.ToLower(currency),
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var intent PaymentIntent
	var apiErr StripeError
	resp, err := s.client.R().
		SetBasicAuth(s.secretKey, "").
		SetFormData(form).
		SetResult(&intent).
		SetError(&apiErr).
		Post("/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe error: %s", apiErr.Error.Message)
	}
	return &intent, nil
}

// StripeSubscription is the subset of Stripe's subscription object we use.
type StripeSubscription struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				UnitAmount int64 `json:"unit_amount"`
				Recurring  struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// RetrieveSubscription fetches a subscription by its provider id.
func (s *StripeClient) RetrieveSubscription(subID string) (*StripeSubscription, error) {
	if !s.Configured() {
		return nil, ErrStripeNotConfigured
	}

	var sub StripeSubscription
	var apiErr StripeError
	resp, err := s.client.R().
		SetBasicAuth(s.secretKey, "").
		SetResult(&sub).
		SetError(&apiErr).
		Get("/subscriptions/" + subID)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe error: %s", apiErr.Error.Message)
	}
	return &sub, nil
}

// CheckoutSession is the subset of Stripe's checkout session object we use.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSubscriptionCheckout creates a checkout session in subscription mode
// for the employer's monthly plan.
func (s *StripeClient) CreateSubscriptionCheckout(userID uint, amount int64, currency, successURL, cancelURL string) (*CheckoutSession, error) {
	if !s.Configured() {
		return nil, ErrStripeNotConfigured
	}

	form := map[string]string{
		"mode":                  "subscription",
		"success_url":           successURL,
		"cancel_url":            cancelURL,
		"line_items[0][quantity]":                               "1",
		"line_items[0][price_data][currency]":                   strings.ToLower(currency),
		"line_items[0][price_data][unit_amount]":                strconv.FormatInt(amount, 10),
		"line_items[0][price_data][recurring][interval]":        "month",
		"line_items[0][price_data][product_data][name]":         "Employer Subscription",
		"metadata[userId]":                                      strconv.FormatUint(uint64(userID), 10),
		"subscription_data[metadata][userId]":                   strconv.FormatUint(uint64(userID), 10),
	}

	var session CheckoutSession
	var apiErr StripeError
	resp, err := s.client.R().
		SetBasicAuth(s.secretKey, "").
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe error: %s", apiErr.Error.Message)
	}
	return &session, nil
}

// VerifyWebhookSignature checks a Stripe-Signature header against the shared
// webhook secret. The header carries a timestamp and one or more v1 HMAC
// signatures over "<timestamp>.<payload>". Events older than tolerance are
// rejected to limit replay.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if header == "" || secret == "" {
		return ErrBadSignature
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}
	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrBadSignature
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignWebhookPayload produces a Stripe-Signature header value for payload.
// Used by tests and the demo tooling.
func SignWebhookPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(at.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
