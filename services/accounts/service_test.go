package accounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamail/mailgate/dto"
	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/crypto"
	mailgate_errors "github.com/iamail/mailgate/internal/errors"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/models"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/utils"
)

type inMemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.AccountCredential
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{accounts: make(map[string]*models.AccountCredential)}
}

func (r *inMemoryRepository) GetByID(ctx context.Context, id string) (*models.AccountCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[id]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryRepository) GetByOwner(ctx context.Context, ownerUserID string) ([]*models.AccountCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.AccountCredential
	for _, account := range r.accounts {
		if account.OwnerUserID == ownerUserID {
			copied := *account
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *inMemoryRepository) GetByOwnerAndEmail(ctx context.Context, ownerUserID, emailAddress string) (*models.AccountCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.OwnerUserID == ownerUserID && account.EmailAddress == emailAddress {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryRepository) GetActiveByOwner(ctx context.Context, ownerUserID string) (*models.AccountCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.OwnerUserID == ownerUserID && account.IsActive {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryRepository) Save(ctx context.Context, credential *models.AccountCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if credential.ID == "" {
		credential.ID = utils.GenerateNanoIDWithPrefix("acct", 16)
	}
	copied := *credential
	r.accounts[credential.ID] = &copied
	return nil
}

func (r *inMemoryRepository) ActivateExclusive(ctx context.Context, ownerUserID, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.accounts[accountID]
	if !ok || target.OwnerUserID != ownerUserID {
		return mailgate_errors.ErrAccountNotFound
	}
	for _, account := range r.accounts {
		if account.OwnerUserID == ownerUserID {
			account.IsActive = account.ID == accountID
		}
	}
	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, ownerUserID, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[accountID]; ok && account.OwnerUserID == ownerUserID {
		delete(r.accounts, accountID)
	}
	return nil
}

func (r *inMemoryRepository) GetOwnersWithDuplicates(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]map[string]int)
	for _, account := range r.accounts {
		if counts[account.OwnerUserID] == nil {
			counts[account.OwnerUserID] = make(map[string]int)
		}
		counts[account.OwnerUserID][account.EmailAddress]++
	}
	var owners []string
	for owner, emails := range counts {
		for _, count := range emails {
			if count > 1 {
				owners = append(owners, owner)
				break
			}
		}
	}
	return owners, nil
}

type fakeTransport struct {
	verifyErr error
	folders   []string
}

func (t *fakeTransport) VerifyConnection(ctx context.Context, endpoint provider.Endpoint, username, secret string) error {
	return t.verifyErr
}

func (t *fakeTransport) ListFolders(ctx context.Context, endpoint provider.Endpoint, username, secret string) ([]string, error) {
	return t.folders, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []interfaces.AccountEventType
}

func (p *recordingPublisher) PublishAccountEvent(ctx context.Context, eventType interfaces.AccountEventType, account *models.AccountCredential) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

type fixture struct {
	service   interfaces.AccountService
	repo      *inMemoryRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := provider.DefaultCatalog()
	require.NoError(t, err)

	cipher, err := crypto.NewSecretCipher("test-passphrase", "test-salt")
	require.NoError(t, err)

	repo := newInMemoryRepository()
	publisher := &recordingPublisher{}
	log := getLogger()
	transport := &fakeTransport{folders: []string{"INBOX", "Sent"}}

	service := NewAccountService(
		log,
		repo,
		provider.NewResolver(catalog, log),
		cipher,
		transport,
		transport,
		publisher,
	)

	return &fixture{service: service, repo: repo, publisher: publisher}
}

func connectRequest(email string) *dto.ConnectAccountRequest {
	return &dto.ConnectAccountRequest{
		EmailAddress: email,
		Secret:       "app-password",
	}
}

func TestConnect_CreatesAndActivatesFirstAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "gmail", account.ProviderKey)
	assert.True(t, account.IsActive)
	assert.Equal(t, []string{"INBOX", "Sent"}, []string(account.SyncFolders))
	assert.NotEqual(t, "app-password", account.EncryptedSecret)
	assert.Equal(t, "someone@gmail.com", account.DisplayName)
	assert.Equal(t, false, account.DetectionMeta["fallback"])
	assert.Contains(t, f.publisher.events, interfaces.AccountConnected)
}

func TestConnect_SecondAccountStaysInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, "user-1", connectRequest("first@gmail.com"))
	require.NoError(t, err)

	second, err := f.service.Connect(ctx, "user-1", connectRequest("second@yahoo.com"))
	require.NoError(t, err)

	assert.True(t, first.IsActive)
	assert.False(t, second.IsActive)
	assert.Equal(t, "yahoo", second.ProviderKey)
}

func TestConnect_IsUpsertOnOwnerAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	request := connectRequest("Someone@Gmail.com")
	request.DisplayName = utils.Ptr("Work")
	second, err := f.service.Connect(ctx, "user-1", request)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Work", second.DisplayName)

	all, err := f.service.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConnect_SameEmailDifferentOwnersAreSeparate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, "user-1", connectRequest("shared@gmail.com"))
	require.NoError(t, err)

	second, err := f.service.Connect(ctx, "user-2", connectRequest("shared@gmail.com"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.IsActive)
}

func TestConnect_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Connect(ctx, "", connectRequest("someone@gmail.com"))
	assert.ErrorIs(t, err, mailgate_errors.ErrOwnerMissing)

	_, err = f.service.Connect(ctx, "user-1", connectRequest("not-an-email"))
	assert.Error(t, err)

	request := connectRequest("someone@gmail.com")
	request.Secret = ""
	_, err = f.service.Connect(ctx, "user-1", request)
	assert.Error(t, err)
}

func TestConnect_FailedVerificationDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	catalog, err := provider.DefaultCatalog()
	require.NoError(t, err)
	cipher, err := crypto.NewSecretCipher("test-passphrase", "test-salt")
	require.NoError(t, err)
	log := getLogger()

	failing := &fakeTransport{verifyErr: assert.AnError}
	service := NewAccountService(log, f.repo, provider.NewResolver(catalog, log), cipher, failing, failing, f.publisher)

	_, err = service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.Error(t, err)

	all, err := service.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSetActive_ExactlyOneActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, "user-1", connectRequest("first@gmail.com"))
	require.NoError(t, err)
	second, err := f.service.Connect(ctx, "user-1", connectRequest("second@yahoo.com"))
	require.NoError(t, err)

	require.NoError(t, f.service.SetActive(ctx, "user-1", second.ID))

	active, err := f.service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	refreshedFirst, err := f.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, refreshedFirst.IsActive)

	// Re-activating the already active account is a no-op.
	require.NoError(t, f.service.SetActive(ctx, "user-1", second.ID))
	active, err = f.service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestSetActive_UnknownOrForeignAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	err = f.service.SetActive(ctx, "user-1", "acct_missing")
	assert.ErrorIs(t, err, mailgate_errors.ErrAccountNotFound)

	// Another owner cannot activate this account.
	err = f.service.SetActive(ctx, "user-2", account.ID)
	assert.ErrorIs(t, err, mailgate_errors.ErrAccountNotFound)
}

func TestGetActive_NoAccounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetActive(context.Background(), "user-1")
	assert.ErrorIs(t, err, mailgate_errors.ErrAccountNotFound)
}

func TestGetDecryptedSecret_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	secret, err := f.service.GetDecryptedSecret(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "app-password", secret)

	_, err = f.service.GetDecryptedSecret(ctx, "acct_missing")
	assert.ErrorIs(t, err, mailgate_errors.ErrAccountNotFound)
}

func TestGetDecryptedSecret_CorruptCiphertext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	// A record written with a different passphrase cannot be decrypted and
	// must surface as a storage fault, not as a missing account.
	otherCipher, err := crypto.NewSecretCipher("rotated-passphrase", "test-salt")
	require.NoError(t, err)
	account.EncryptedSecret, err = otherCipher.Encrypt("app-password")
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(ctx, account))

	_, err = f.service.GetDecryptedSecret(ctx, account.ID)
	require.Error(t, err)
	assert.True(t, mailgate_errors.IsPersistence(err))
}

func TestRemove_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	require.NoError(t, f.service.Remove(ctx, "user-1", account.ID))
	require.NoError(t, f.service.Remove(ctx, "user-1", account.ID))

	all, err := f.service.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Contains(t, f.publisher.events, interfaces.AccountRemoved)
}

func TestDeduplicate_RemovesExtraRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)
	account.LastSyncedAt = utils.NowPtr()
	require.NoError(t, f.repo.Save(ctx, account))

	// A never-synced duplicate row slipped in behind the service's back.
	duplicate := &models.AccountCredential{
		OwnerUserID:     "user-1",
		EmailAddress:    "someone@gmail.com",
		ProviderKey:     "gmail",
		EncryptedSecret: account.EncryptedSecret,
	}
	require.NoError(t, f.repo.Save(ctx, duplicate))

	removed, err := f.service.Deduplicate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := f.service.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, account.ID, all[0].ID)
	assert.True(t, all[0].IsActive)
}

func TestDeduplicate_MostRecentlySyncedOutlivesStaleActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)
	require.True(t, account.IsActive)

	staleSync := utils.Now().Add(-24 * time.Hour)
	account.LastSyncedAt = &staleSync
	require.NoError(t, f.repo.Save(ctx, account))

	// Duplicate onboarding left a second row that kept syncing.
	duplicate := &models.AccountCredential{
		OwnerUserID:     "user-1",
		EmailAddress:    "someone@gmail.com",
		ProviderKey:     "gmail",
		EncryptedSecret: account.EncryptedSecret,
		LastSyncedAt:    utils.NowPtr(),
	}
	require.NoError(t, f.repo.Save(ctx, duplicate))

	removed, err := f.service.Deduplicate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := f.service.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, duplicate.ID, all[0].ID)
	// The removed row held the active flag, the survivor takes it over.
	assert.True(t, all[0].IsActive)
}

func TestDeduplicate_NothingToDo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Connect(ctx, "user-1", connectRequest("first@gmail.com"))
	require.NoError(t, err)
	_, err = f.service.Connect(ctx, "user-1", connectRequest("second@yahoo.com"))
	require.NoError(t, err)

	removed, err := f.service.Deduplicate(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRedetectProvider_UpdatesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@gmail.com"))
	require.NoError(t, err)

	// Simulate a stale provider snapshot.
	account.ProviderKey = "legacy"
	require.NoError(t, f.repo.Save(ctx, account))

	redetected, err := f.service.RedetectProvider(ctx, "user-1", account.ID)
	require.NoError(t, err)
	assert.Equal(t, "gmail", redetected.ProviderKey)

	_, err = f.service.RedetectProvider(ctx, "user-2", account.ID)
	assert.ErrorIs(t, err, mailgate_errors.ErrAccountNotFound)
}

func TestRedetectProvider_UnknownDomainFallsBackToBrandedDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Connect(ctx, "user-1", connectRequest("someone@selfhosted.example"))
	require.NoError(t, err)
	assert.Equal(t, provider.KeyBrandedDefault, account.ProviderKey)

	redetected, err := f.service.RedetectProvider(ctx, "user-1", account.ID)
	require.NoError(t, err)
	assert.Equal(t, provider.KeyBrandedDefault, redetected.ProviderKey)
}
