package smtp

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/enum"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/tracing"
)

type smtpService struct {
	log logger.Logger
}

func NewSMTPService(log logger.Logger) interfaces.SMTPService {
	return &smtpService{log: log}
}

// VerifyConnection establishes an authenticated session with the submission
// server and quits without sending anything.
func (s *smtpService) VerifyConnection(ctx context.Context, endpoint provider.Endpoint, username, secret string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.VerifyConnection")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("smtp_server", endpoint.Host)
	span.LogKV("smtp_port", endpoint.Port)
	span.LogKV("security", endpoint.Security.String())

	auth := smtp.PlainAuth("", username, secret, endpoint.Host)

	var err error
	switch {
	case endpoint.ImplicitTLS():
		err = s.verifyWithExplicitTLS(endpoint, auth)
	case endpoint.Security == enum.EmailSecurityStartTLS:
		err = s.verifyWithSTARTTLS(endpoint, auth)
	default:
		err = s.verifyPlain(endpoint, auth)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("verified SMTP connection to %s for %s", endpoint.Address(), username)
	return nil
}

func (s *smtpService) verifyWithSTARTTLS(endpoint provider.Endpoint, auth smtp.Auth) error {
	conn, err := net.Dial("tcp", endpoint.Address())
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, endpoint.Host)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: endpoint.Host,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return errors.Wrap(err, "failed to start TLS")
	}

	if err = client.Auth(auth); err != nil {
		return errors.Wrap(err, "SMTP authentication failed")
	}

	return client.Quit()
}

func (s *smtpService) verifyWithExplicitTLS(endpoint provider.Endpoint, auth smtp.Auth) error {
	tlsConfig := &tls.Config{
		ServerName: endpoint.Host,
	}

	conn, err := tls.Dial("tcp", endpoint.Address(), tlsConfig)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, endpoint.Host)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return errors.Wrap(err, "SMTP authentication failed")
	}

	return client.Quit()
}

func (s *smtpService) verifyPlain(endpoint provider.Endpoint, auth smtp.Auth) error {
	client, err := smtp.Dial(endpoint.Address())
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer client.Close()

	// Servers advertising STARTTLS get it even on the plaintext path.
	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: endpoint.Host,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return errors.Wrap(err, "failed to start TLS")
		}
	}

	if err = client.Auth(auth); err != nil {
		return errors.Wrap(err, "SMTP authentication failed")
	}

	return client.Quit()
}
