package interfaces

import (
	"context"

	"github.com/iamail/mailgate/internal/provider"
)

// IMAPService verifies mailbox connectivity against a resolved endpoint.
type IMAPService interface {
	VerifyConnection(ctx context.Context, endpoint provider.Endpoint, username, secret string) error
	ListFolders(ctx context.Context, endpoint provider.Endpoint, username, secret string) ([]string, error)
}

// SMTPService verifies submission connectivity against a resolved endpoint.
type SMTPService interface {
	VerifyConnection(ctx context.Context, endpoint provider.Endpoint, username, secret string) error
}
