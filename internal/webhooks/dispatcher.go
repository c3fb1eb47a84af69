package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	"go.uber.org/zap"
)

// Events emitted by the catalog.
const (
	EventProductUpdated      = "product.updated"
	EventCurrencyUpdated     = "currency.updated"
	EventPricingRecalculated = "pricing.recalculated"
)

const signatureHeader = "X-Digitalogic-Signature"

// Event is the delivery envelope.
type Event struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data"`
}

type Config struct {
	URLs    []string
	Secret  string
	Timeout time.Duration
}

// Dispatcher delivers events to configured endpoints. Delivery is
// fire-and-forget with a short timeout; failures are logged and swallowed so
// a slow endpoint can never stall the triggering request.
type Dispatcher struct {
	cfg    Config
	logger *zap.Logger
}

func NewDispatcher(cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Dispatcher{cfg: cfg, logger: logger}
}

func (d *Dispatcher) Dispatch(event string, payload any) {
	if len(d.cfg.URLs) == 0 {
		return
	}

	envelope := Event{
		ID:        uuid.New().String(),
		Event:     event,
		CreatedAt: time.Now(),
		Data:      payload,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		d.logger.Warn("failed to marshal webhook payload", zap.String("event", event), zap.Error(err))
		return
	}

	for _, url := range d.cfg.URLs {
		go d.deliver(url, envelope.ID, event, body)
	}
}

func (d *Dispatcher) deliver(url, eventID, event string, body []byte) {
	headers := gout.H{
		"Content-Type":        "application/json",
		"X-Digitalogic-Event": event,
	}
	if d.cfg.Secret != "" {
		headers[signatureHeader] = Sign(d.cfg.Secret, body)
	}

	var code int
	err := gout.POST(url).
		SetTimeout(d.cfg.Timeout).
		SetHeader(headers).
		SetBody(body).
		Code(&code).
		Do()
	if err != nil {
		d.logger.Warn("webhook delivery failed",
			zap.String("url", url),
			zap.String("event", event),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return
	}

	if code >= 300 {
		d.logger.Warn("webhook endpoint returned non-success status",
			zap.String("url", url),
			zap.String("event", event),
			zap.Int("status", code),
		)
		return
	}

	d.logger.Debug("webhook delivered",
		zap.String("url", url),
		zap.String("event", event),
		zap.String("event_id", eventID),
	)
}

// Sign computes the hex HMAC-SHA256 of the body; receivers verify it against
// the shared secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
