package services

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

// Relay delivers a notification to its target if the target is online.
// Delivery is best effort; an error only means the hand-off itself failed.
type Relay interface {
	Relay(ctx context.Context, n models.Notification) error
}

// NopRelay drops everything.
type NopRelay struct{}

func (NopRelay) Relay(context.Context, models.Notification) error { return nil }
