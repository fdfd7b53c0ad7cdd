package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "teamperf/pkg/errors"
)

// Identity webhook headers
const (
	HeaderWebhookID        = "svix-id"
	HeaderWebhookTimestamp = "svix-timestamp"
	HeaderWebhookSignature = "svix-signature"
)

// DefaultWebhookTolerance is how far a delivery timestamp may be from now
const DefaultWebhookTolerance = 5 * time.Minute

const webhookSecretPrefix = "whsec_"

// WebhookVerifier checks HMAC-SHA256 signatures over "{id}.{timestamp}.{body}"
type WebhookVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewWebhookVerifier decodes a "whsec_" prefixed base64 secret
func NewWebhookVerifier(secret string, tolerance time.Duration) (*WebhookVerifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, webhookSecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("webhook secret is empty")
	}
	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}
	return &WebhookVerifier{key: key, tolerance: tolerance, now: time.Now}, nil
}

// Sign returns the v1 signature for a delivery
func (v *WebhookVerifier) Sign(id string, timestamp time.Time, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%d.", id, timestamp.Unix())
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify accepts the delivery if any listed v1 signature matches
func (v *WebhookVerifier) Verify(headers http.Header, body []byte) error {
	id := headers.Get(HeaderWebhookID)
	ts := headers.Get(HeaderWebhookTimestamp)
	signatures := headers.Get(HeaderWebhookSignature)
	if id == "" || ts == "" || signatures == "" {
		return apperrors.NewAuthenticationError("Missing webhook signature headers")
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return apperrors.NewAuthenticationError("Invalid webhook timestamp")
	}
	sent := time.Unix(sec, 0)
	now := v.now()
	if now.Sub(sent) > v.tolerance || sent.Sub(now) > v.tolerance {
		return apperrors.NewAuthenticationError("Webhook timestamp outside tolerance")
	}

	expected := []byte(v.Sign(id, sent, body))
	for _, candidate := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), expected) {
			return nil
		}
	}
	return apperrors.NewAuthenticationError("Invalid webhook signature")
}
