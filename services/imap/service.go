package imap

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/enum"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/tracing"
)

const dialTimeout = 30 * time.Second

type imapService struct {
	log logger.Logger
}

func NewIMAPService(log logger.Logger) interfaces.IMAPService {
	return &imapService{log: log}
}

// connect dials the endpoint, checks capabilities and logs in. The caller
// owns the returned client and must Logout.
func (s *imapService) connect(ctx context.Context, endpoint provider.Endpoint, username, secret string) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", endpoint.Host)
	span.SetTag("port", endpoint.Port)
	span.SetTag("security", endpoint.Security.String())

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialTimeout,
	}

	var c *client.Client
	var err error

	if endpoint.ImplicitTLS() {
		tlsConfig := &tls.Config{
			ServerName: endpoint.Host,
		}
		c, err = client.DialWithDialerTLS(dialer, endpoint.Address(), tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, endpoint.Address())
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to connect to %s", endpoint.Address())
	}

	if endpoint.Security == enum.EmailSecurityStartTLS {
		tlsConfig := &tls.Config{
			ServerName: endpoint.Host,
		}
		if err = c.StartTLS(tlsConfig); err != nil {
			c.Logout()
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "failed to start TLS")
		}
	}

	caps, err := c.Capability()
	if err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to get capabilities")
	}
	tracing.LogObjectAsJson(span, "server.capabilities", caps)

	c.Timeout = dialTimeout
	if err = c.Login(username, secret); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to login as %s", username)
	}
	c.Timeout = 0

	span.SetTag("success", true)
	return c, nil
}

func (s *imapService) VerifyConnection(ctx context.Context, endpoint provider.Endpoint, username, secret string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.VerifyConnection")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	c, err := s.connect(ctx, endpoint, username, secret)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer c.Logout()

	s.log.Infof("verified IMAP connection to %s for %s", endpoint.Address(), username)
	return nil
}

func (s *imapService) ListFolders(ctx context.Context, endpoint provider.Endpoint, username, secret string) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.ListFolders")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	c, err := s.connect(ctx, endpoint, username, secret)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer c.Logout()

	mailboxes := make(chan *imap.MailboxInfo, 20)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", "*", mailboxes)
	}()

	var folders []string
	for m := range mailboxes {
		folders = append(folders, m.Name)
	}
	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list folders")
	}

	span.LogKV("folders.count", len(folders))
	return folders, nil
}
