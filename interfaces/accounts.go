package interfaces

import (
	"context"

	"github.com/iamail/mailgate/dto"
	"github.com/iamail/mailgate/internal/models"
)

type AccountService interface {
	// Connect verifies a mailbox, encrypts its secret and upserts the
	// credential keyed on (owner, email address).
	Connect(ctx context.Context, ownerUserID string, input *dto.ConnectAccountRequest) (*models.AccountCredential, error)
	List(ctx context.Context, ownerUserID string) ([]*models.AccountCredential, error)
	GetActive(ctx context.Context, ownerUserID string) (*models.AccountCredential, error)
	SetActive(ctx context.Context, ownerUserID, accountID string) error
	GetDecryptedSecret(ctx context.Context, accountID string) (string, error)
	Remove(ctx context.Context, ownerUserID, accountID string) error
	Deduplicate(ctx context.Context, ownerUserID string) (int, error)
	RedetectProvider(ctx context.Context, ownerUserID, accountID string) (*models.AccountCredential, error)
}
