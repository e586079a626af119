package interfaces

import (
	"context"

	"github.com/iamail/mailgate/internal/models"
)

// AccountCredentialRepository owns persistence of credential rows. Lookup
// misses return (nil, nil); only storage faults surface as errors.
type AccountCredentialRepository interface {
	GetByID(ctx context.Context, id string) (*models.AccountCredential, error)
	GetByOwner(ctx context.Context, ownerUserID string) ([]*models.AccountCredential, error)
	GetByOwnerAndEmail(ctx context.Context, ownerUserID, emailAddress string) (*models.AccountCredential, error)
	GetActiveByOwner(ctx context.Context, ownerUserID string) (*models.AccountCredential, error)
	Save(ctx context.Context, credential *models.AccountCredential) error

	// ActivateExclusive flips the target credential to active and all of
	// the owner's other credentials to inactive in one transaction.
	ActivateExclusive(ctx context.Context, ownerUserID, accountID string) error

	// Delete is idempotent; removing an absent row is a no-op.
	Delete(ctx context.Context, ownerUserID, accountID string) error

	GetOwnersWithDuplicates(ctx context.Context) ([]string, error)
}
