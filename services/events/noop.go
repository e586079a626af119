package events

import (
	"context"

	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/models"
)

// NoopPublisher stands in when no RabbitMQ URL is configured, for local
// development and tests.
type NoopPublisher struct {
	log logger.Logger
}

func NewNoopPublisher(log logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) PublishAccountEvent(ctx context.Context, eventType interfaces.AccountEventType, account *models.AccountCredential) error {
	if p.log != nil {
		p.log.Debugf("event publishing disabled, dropping %s for account %s", eventType, account.ID)
	}
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
