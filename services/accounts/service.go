package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/iamail/mailgate/dto"
	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/crypto"
	"github.com/iamail/mailgate/internal/enum"
	mailgate_errors "github.com/iamail/mailgate/internal/errors"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/models"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/tracing"
	"github.com/iamail/mailgate/internal/utils"
)

type accountService struct {
	log         logger.Logger
	repository  interfaces.AccountCredentialRepository
	resolver    *provider.Resolver
	cipher      *crypto.SecretCipher
	imapService interfaces.IMAPService
	smtpService interfaces.SMTPService
	publisher   interfaces.EventPublisher

	// Serializes writes per owner so activation and upserts cannot race
	// the exactly-one-active rule.
	ownerLocks sync.Map
}

func NewAccountService(
	log logger.Logger,
	repository interfaces.AccountCredentialRepository,
	resolver *provider.Resolver,
	cipher *crypto.SecretCipher,
	imapService interfaces.IMAPService,
	smtpService interfaces.SMTPService,
	publisher interfaces.EventPublisher,
) interfaces.AccountService {
	return &accountService{
		log:         log,
		repository:  repository,
		resolver:    resolver,
		cipher:      cipher,
		imapService: imapService,
		smtpService: smtpService,
		publisher:   publisher,
	}
}

func (s *accountService) lockOwner(ownerUserID string) func() {
	value, _ := s.ownerLocks.LoadOrStore(ownerUserID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *accountService) Connect(ctx context.Context, ownerUserID string, input *dto.ConnectAccountRequest) (*models.AccountCredential, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	if ownerUserID == "" {
		return nil, mailgate_errors.ErrOwnerMissing
	}
	if input == nil {
		return nil, errors.New("connect request cannot be nil")
	}

	emailAddress := utils.NormalizeEmailAddress(input.EmailAddress)
	validation := mailvalidate.ValidateEmailSyntax(emailAddress)
	if !validation.IsValid {
		err := errors.Errorf("invalid email address %s", emailAddress)
		tracing.TraceErr(span, err)
		return nil, err
	}
	if input.Secret == "" {
		return nil, errors.New("secret is required")
	}

	resolution := s.resolver.Resolve(emailAddress)
	tracing.TagProvider(span, resolution.ProviderKey)
	span.LogFields(tracingLog.Bool("provider.fallback", resolution.Fallback))

	imapEndpoint := effectiveEndpoint(resolution.Descriptor.IMAP, input.IMAPOverride)
	smtpEndpoint := effectiveEndpoint(resolution.Descriptor.SMTP, input.SMTPOverride)

	syncStatus := enum.AccountSyncPending
	var syncFolders []string
	if !input.SkipVerify {
		if err := s.imapService.VerifyConnection(ctx, imapEndpoint, emailAddress, input.Secret); err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "IMAP verification failed")
		}
		if err := s.smtpService.VerifyConnection(ctx, smtpEndpoint, emailAddress, input.Secret); err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "SMTP verification failed")
		}

		folders, err := s.imapService.ListFolders(ctx, imapEndpoint, emailAddress, input.Secret)
		if err != nil {
			// The account is usable without the folder list, sync picks
			// it up on its first pass.
			tracing.TraceErr(span, err)
			s.log.Warnf("could not list folders for %s: %v", emailAddress, err)
		} else {
			syncFolders = folders
		}
		syncStatus = enum.AccountSyncActive
	}

	encryptedSecret, err := s.cipher.Encrypt(input.Secret)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountService.Connect", err)
	}

	unlock := s.lockOwner(ownerUserID)
	defer unlock()

	existing, err := s.repository.GetByOwnerAndEmail(ctx, ownerUserID, emailAddress)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	credential := existing
	if credential == nil {
		credential = &models.AccountCredential{
			OwnerUserID:  ownerUserID,
			EmailAddress: emailAddress,
			CreatedAt:    utils.Now(),
		}
	}

	credential.ProviderKey = resolution.ProviderKey
	credential.EncryptedSecret = encryptedSecret
	credential.IMAPOverride = input.IMAPOverride
	credential.SMTPOverride = input.SMTPOverride
	credential.DisplayName = utils.GetOrDefault(input.DisplayName, emailAddress)
	credential.DetectionMeta = detectionMeta(resolution)
	credential.SyncStatus = syncStatus
	if syncFolders != nil {
		credential.SyncFolders = pq.StringArray(syncFolders)
	}

	// The owner's first account becomes active right away.
	if existing == nil {
		active, err := s.repository.GetActiveByOwner(ctx, ownerUserID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		credential.IsActive = active == nil
	}

	if err := s.repository.Save(ctx, credential); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.publishEvent(ctx, interfaces.AccountConnected, credential)

	span.LogFields(tracingLog.Bool("result.created", existing == nil))
	tracing.TagEntity(span, credential.ID)
	return credential, nil
}

func (s *accountService) List(ctx context.Context, ownerUserID string) ([]*models.AccountCredential, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.List")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	if ownerUserID == "" {
		return nil, mailgate_errors.ErrOwnerMissing
	}

	return s.repository.GetByOwner(ctx, ownerUserID)
}

func (s *accountService) GetActive(ctx context.Context, ownerUserID string) (*models.AccountCredential, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.GetActive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	if ownerUserID == "" {
		return nil, mailgate_errors.ErrOwnerMissing
	}

	active, err := s.repository.GetActiveByOwner(ctx, ownerUserID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if active == nil {
		return nil, mailgate_errors.ErrAccountNotFound
	}
	return active, nil
}

func (s *accountService) SetActive(ctx context.Context, ownerUserID, accountID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.SetActive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	tracing.TagEntity(span, accountID)

	if ownerUserID == "" {
		return mailgate_errors.ErrOwnerMissing
	}

	unlock := s.lockOwner(ownerUserID)
	defer unlock()

	if err := s.repository.ActivateExclusive(ctx, ownerUserID, accountID); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	account, err := s.repository.GetByID(ctx, accountID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if account != nil {
		s.publishEvent(ctx, interfaces.AccountActivated, account)
	}

	return nil
}

func (s *accountService) GetDecryptedSecret(ctx context.Context, accountID string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.GetDecryptedSecret")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, accountID)

	account, err := s.repository.GetByID(ctx, accountID)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if account == nil {
		return "", mailgate_errors.ErrAccountNotFound
	}

	secret, err := s.cipher.Decrypt(account.EncryptedSecret)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", mailgate_errors.WrapPersistence("AccountService.GetDecryptedSecret", err)
	}
	return secret, nil
}

func (s *accountService) Remove(ctx context.Context, ownerUserID, accountID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.Remove")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	tracing.TagEntity(span, accountID)

	if ownerUserID == "" {
		return mailgate_errors.ErrOwnerMissing
	}

	unlock := s.lockOwner(ownerUserID)
	defer unlock()

	account, err := s.repository.GetByID(ctx, accountID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.repository.Delete(ctx, ownerUserID, accountID); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	// Removing an absent account is a no-op, no event either.
	if account != nil && account.OwnerUserID == ownerUserID {
		s.publishEvent(ctx, interfaces.AccountRemoved, account)
	}

	return nil
}

func (s *accountService) Deduplicate(ctx context.Context, ownerUserID string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.Deduplicate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	if ownerUserID == "" {
		return 0, mailgate_errors.ErrOwnerMissing
	}

	unlock := s.lockOwner(ownerUserID)
	defer unlock()

	accounts, err := s.repository.GetByOwner(ctx, ownerUserID)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	// Group per address and keep the best survivor of each group.
	byEmail := make(map[string][]*models.AccountCredential)
	for _, account := range accounts {
		email := utils.NormalizeEmailAddress(account.EmailAddress)
		byEmail[email] = append(byEmail[email], account)
	}

	removed := 0
	for _, group := range byEmail {
		if len(group) < 2 {
			continue
		}

		survivor := pickSurvivor(group)
		for _, account := range group {
			if account.ID == survivor.ID {
				continue
			}
			if err := s.repository.Delete(ctx, ownerUserID, account.ID); err != nil {
				tracing.TraceErr(span, err)
				return removed, err
			}
			removed++
		}

		// A dedupe pass must never leave the owner without an active
		// account when the group held the active one.
		if !survivor.IsActive && groupHeldActive(group, survivor) {
			if err := s.repository.ActivateExclusive(ctx, ownerUserID, survivor.ID); err != nil {
				tracing.TraceErr(span, err)
				return removed, err
			}
		}
	}

	span.LogFields(tracingLog.Int("result.removed", removed))
	return removed, nil
}

func (s *accountService) RedetectProvider(ctx context.Context, ownerUserID, accountID string) (*models.AccountCredential, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AccountService.RedetectProvider")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	tracing.TagEntity(span, accountID)

	if ownerUserID == "" {
		return nil, mailgate_errors.ErrOwnerMissing
	}

	unlock := s.lockOwner(ownerUserID)
	defer unlock()

	account, err := s.repository.GetByID(ctx, accountID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if account == nil || account.OwnerUserID != ownerUserID {
		return nil, mailgate_errors.ErrAccountNotFound
	}

	resolution := s.resolver.Resolve(account.EmailAddress)
	tracing.TagProvider(span, resolution.ProviderKey)

	if account.ProviderKey == resolution.ProviderKey {
		return account, nil
	}

	s.log.Infof("redetected provider for account %s: %s -> %s", account.ID, account.ProviderKey, resolution.ProviderKey)
	account.ProviderKey = resolution.ProviderKey
	account.DetectionMeta = detectionMeta(resolution)
	if err := s.repository.Save(ctx, account); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return account, nil
}

func (s *accountService) publishEvent(ctx context.Context, eventType interfaces.AccountEventType, account *models.AccountCredential) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAccountEvent(ctx, eventType, account); err != nil {
		s.log.Errorf("failed to publish %s event for account %s: %v", eventType, account.ID, err)
	}
}

func detectionMeta(resolution provider.Resolution) models.JSONMap {
	return models.JSONMap{
		"providerKey": resolution.ProviderKey,
		"fallback":    resolution.Fallback,
		"detectedAt":  utils.Now().Format(time.RFC3339),
	}
}

func effectiveEndpoint(base provider.Endpoint, override *models.EndpointOverride) provider.Endpoint {
	if override == nil {
		return base
	}
	return provider.Endpoint{
		Host:     override.Host,
		Port:     override.Port,
		Security: override.Security,
	}
}

// pickSurvivor keeps the most recently synced credential, ties broken by
// the most recent update. The active flag does not influence the choice,
// Deduplicate re-activates the survivor when a removed row held it.
func pickSurvivor(group []*models.AccountCredential) *models.AccountCredential {
	survivor := group[0]
	for _, candidate := range group[1:] {
		if !equalSyncRecency(candidate, survivor) {
			if moreRecentlySynced(candidate, survivor) {
				survivor = candidate
			}
			continue
		}
		if candidate.UpdatedAt.After(survivor.UpdatedAt) {
			survivor = candidate
		}
	}
	return survivor
}

func equalSyncRecency(a, b *models.AccountCredential) bool {
	if a.LastSyncedAt == nil && b.LastSyncedAt == nil {
		return true
	}
	if a.LastSyncedAt == nil || b.LastSyncedAt == nil {
		return false
	}
	return a.LastSyncedAt.Equal(*b.LastSyncedAt)
}

func moreRecentlySynced(a, b *models.AccountCredential) bool {
	if a.LastSyncedAt == nil {
		return false
	}
	if b.LastSyncedAt == nil {
		return true
	}
	return a.LastSyncedAt.After(*b.LastSyncedAt)
}

func groupHeldActive(group []*models.AccountCredential, survivor *models.AccountCredential) bool {
	for _, account := range group {
		if account.ID != survivor.ID && account.IsActive {
			return true
		}
	}
	return false
}
