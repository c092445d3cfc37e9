package identity

import (
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/emojimaker/server/internal/fault"
)

// Signature headers carried by every identity event delivery.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Verifier checks webhook deliveries against the shared endpoint secret.
// Verification precedes any trust in the payload: callers must not parse
// event content before Verify succeeds.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier parses a "whsec_"-prefixed base64 endpoint secret.
func NewVerifier(secret string) (*Verifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify authenticates one delivery. Missing headers are a validation
// failure, rejected before anything else; a stale timestamp or a signature
// mismatch is an authentication failure.
func (v *Verifier) Verify(payload []byte, id, timestamp, signature string) error {
	if id == "" || timestamp == "" || signature == "" {
		return fault.New(fault.KindValidation, "Missing webhook signature headers")
	}

	headers := http.Header{}
	headers.Set(HeaderID, id)
	headers.Set(HeaderTimestamp, timestamp)
	headers.Set(HeaderSignature, signature)

	if err := v.wh.Verify(payload, headers); err != nil {
		return fault.Wrap(fault.KindAuth, "Invalid webhook signature", err)
	}
	return nil
}
