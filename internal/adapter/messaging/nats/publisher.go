package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/servilocal/listing-service/internal/config"
	"github.com/servilocal/listing-service/internal/listing/domain"
)

const (
	subjectListingCreated  = "listing.created"
	subjectListingUpdated  = "listing.updated"
	subjectListingDeleted  = "listing.deleted"
	subjectListingPromoted = "listing.promoted"
)

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL, nats.Timeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

type listingEvent struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	Promoted         bool       `json:"promoted"`
	PromotedInPortal bool       `json:"promoted_in_portal"`
	PromotedUntil    *time.Time `json:"promoted_until,omitempty"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

func (p *Publisher) PublishListingCreated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(subjectListingCreated, newListingEvent(listing))
}

func (p *Publisher) PublishListingUpdated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(subjectListingUpdated, newListingEvent(listing))
}

func (p *Publisher) PublishListingDeleted(ctx context.Context, listingID string) error {
	return p.publish(subjectListingDeleted, listingEvent{ID: listingID, OccurredAt: time.Now()})
}

func (p *Publisher) PublishListingPromoted(ctx context.Context, listing *domain.Listing) error {
	return p.publish(subjectListingPromoted, newListingEvent(listing))
}

func newListingEvent(l *domain.Listing) listingEvent {
	return listingEvent{
		ID:               l.ID,
		Name:             l.Name,
		Status:           string(l.Status),
		Promoted:         l.Promoted,
		PromotedInPortal: l.PromotedInPortal,
		PromotedUntil:    l.PromotedUntil,
		OccurredAt:       time.Now(),
	}
}

func (p *Publisher) publish(subject string, event listingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
