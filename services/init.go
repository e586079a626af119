package services

import (
	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/crypto"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/repository"
	"github.com/iamail/mailgate/services/accounts"
	"github.com/iamail/mailgate/services/events"
	"github.com/iamail/mailgate/services/imap"
	"github.com/iamail/mailgate/services/smtp"
)

type Services struct {
	EventPublisher interfaces.EventPublisher
	IMAPService    interfaces.IMAPService
	SMTPService    interfaces.SMTPService
	AccountService interfaces.AccountService
}

func InitServices(
	rabbitmqURL string,
	log logger.Logger,
	repos *repository.Repositories,
	resolver *provider.Resolver,
	cipher *crypto.SecretCipher,
) (*Services, error) {
	var publisher interfaces.EventPublisher
	if rabbitmqURL == "" {
		publisher = events.NewNoopPublisher(log)
	} else {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}

		rabbitPublisher, err := events.NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	}

	imapService := imap.NewIMAPService(log)
	smtpService := smtp.NewSMTPService(log)

	services := Services{
		EventPublisher: publisher,
		IMAPService:    imapService,
		SMTPService:    smtpService,
		AccountService: accounts.NewAccountService(
			log,
			repos.AccountCredentialRepository,
			resolver,
			cipher,
			imapService,
			smtpService,
			publisher,
		),
	}

	return &services, nil
}
