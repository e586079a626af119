package interfaces

import (
	"context"

	"github.com/iamail/mailgate/internal/models"
)

type AccountEventType string

const (
	AccountConnected AccountEventType = "AccountConnected"
	AccountActivated AccountEventType = "AccountActivated"
	AccountRemoved   AccountEventType = "AccountRemoved"
)

// EventPublisher notifies sibling services (mail fetcher, sender) about
// credential lifecycle changes.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, eventType AccountEventType, account *models.AccountCredential) error
	Close() error
}
