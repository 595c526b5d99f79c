package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

const publishTimeout = 15 * time.Second

const (
	TypeCheckoutConfirmed = "storefront.checkout.confirmed"
	TypeFavoriteToggled   = "storefront.favorite.toggled"
)

// Envelope is the wire shape of every storefront event.
type Envelope struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	ProductID  string    `json:"product_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Emitter publishes storefront domain events to Pub/Sub. A nil Emitter is a
// valid no-op, which is how the service runs with events disabled.
type Emitter struct {
	client *pubsub.Client
	pub    *pubsub.Publisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewEmitter connects to Pub/Sub when events are enabled; otherwise it
// returns nil and every publish becomes a no-op.
func NewEmitter(ctx context.Context, cfg config.EventsConfig, logg *logger.Logger) (*Emitter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("gcp project id is required when events are enabled")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("events topic is required when events are enabled")
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "events emitter initialized")
	}
	return &Emitter{
		client: client,
		pub:    client.Publisher(topicResourceName(cfg.ProjectID, cfg.Topic)),
		logg:   logg,
		now:    time.Now,
	}, nil
}

// CheckoutConfirmed announces a settled checkout.
func (e *Emitter) CheckoutConfirmed(ctx context.Context, userID, orderID, reference string) {
	e.publish(ctx, Envelope{
		Type:      TypeCheckoutConfirmed,
		UserID:    userID,
		OrderID:   orderID,
		Reference: reference,
	})
}

// FavoriteToggled announces a favorites mutation.
func (e *Emitter) FavoriteToggled(ctx context.Context, userID, productID string) {
	e.publish(ctx, Envelope{
		Type:      TypeFavoriteToggled,
		UserID:    userID,
		ProductID: productID,
	})
}

// publish is fire-and-forget: event loss never fails the storefront
// operation that produced it.
func (e *Emitter) publish(ctx context.Context, envelope Envelope) {
	if e == nil || e.pub == nil {
		return
	}
	envelope.OccurredAt = e.now().UTC()

	payload, err := json.Marshal(envelope)
	if err != nil {
		if e.logg != nil {
			e.logg.Error(ctx, "events.encode failed", err)
		}
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	result := e.pub.Publish(publishCtx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": envelope.Type},
	})
	if _, err := result.Get(publishCtx); err != nil && e.logg != nil {
		e.logg.Error(ctx, "events.publish failed", err)
	}
}

// Close releases the Pub/Sub client resources.
func (e *Emitter) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

func topicResourceName(projectID, topic string) string {
	n := strings.TrimSpace(topic)
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	return fmt.Sprintf("projects/%s/topics/%s", strings.TrimSpace(projectID), n)
}
