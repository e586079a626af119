package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/iamail/mailgate/interfaces"
	mailgate_errors "github.com/iamail/mailgate/internal/errors"
	"github.com/iamail/mailgate/internal/models"
	"github.com/iamail/mailgate/internal/tracing"
	"github.com/iamail/mailgate/internal/utils"
)

type accountCredentialRepository struct {
	gormDb *gorm.DB
}

func NewAccountCredentialRepository(db *gorm.DB) interfaces.AccountCredentialRepository {
	return &accountCredentialRepository{gormDb: db}
}

func (r *accountCredentialRepository) GetByID(ctx context.Context, id string) (*models.AccountCredential, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var result models.AccountCredential
	err := r.gormDb.WithContext(ctx).
		Where("id = ?", id).
		First(&result).
		Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountCredentialRepository.GetByID", err)
	}

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		span.LogFields(tracingLog.Bool("result.found", false))
		return nil, nil
	}

	span.LogFields(tracingLog.Bool("result.found", true))
	return &result, nil
}

func (r *accountCredentialRepository) GetByOwner(ctx context.Context, ownerUserID string) ([]*models.AccountCredential, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.GetByOwner")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	var result []*models.AccountCredential
	err := r.gormDb.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at asc").
		Find(&result).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountCredentialRepository.GetByOwner", err)
	}

	span.LogFields(tracingLog.Int("result.count", len(result)))
	return result, nil
}

func (r *accountCredentialRepository) GetByOwnerAndEmail(ctx context.Context, ownerUserID, emailAddress string) (*models.AccountCredential, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.GetByOwnerAndEmail")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	span.LogFields(tracingLog.String("emailAddress", emailAddress))

	var result models.AccountCredential
	err := r.gormDb.WithContext(ctx).
		Where("owner_user_id = ? and email_address = ?", ownerUserID, emailAddress).
		Order("last_synced_at desc nulls last, updated_at desc").
		First(&result).
		Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountCredentialRepository.GetByOwnerAndEmail", err)
	}

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		span.LogFields(tracingLog.Bool("result.found", false))
		return nil, nil
	}

	span.LogFields(tracingLog.Bool("result.found", true))
	return &result, nil
}

func (r *accountCredentialRepository) GetActiveByOwner(ctx context.Context, ownerUserID string) (*models.AccountCredential, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.GetActiveByOwner")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)

	var result models.AccountCredential
	err := r.gormDb.WithContext(ctx).
		Where("owner_user_id = ? and is_active = ?", ownerUserID, true).
		First(&result).
		Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountCredentialRepository.GetActiveByOwner", err)
	}

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		span.LogFields(tracingLog.Bool("result.found", false))
		return nil, nil
	}

	span.LogFields(tracingLog.Bool("result.found", true))
	return &result, nil
}

func (r *accountCredentialRepository) Save(ctx context.Context, credential *models.AccountCredential) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.Save")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, credential.ID)

	credential.UpdatedAt = utils.Now()

	err := r.gormDb.WithContext(ctx).Save(credential).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return mailgate_errors.WrapPersistence("AccountCredentialRepository.Save", err)
	}
	return nil
}

func (r *accountCredentialRepository) ActivateExclusive(ctx context.Context, ownerUserID, accountID string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.ActivateExclusive")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	tracing.TagEntity(span, accountID)

	err := r.gormDb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.AccountCredential
		err := tx.Where("owner_user_id = ? and id = ?", ownerUserID, accountID).
			First(&target).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return mailgate_errors.ErrAccountNotFound
			}
			return mailgate_errors.WrapPersistence("AccountCredentialRepository.ActivateExclusive", err)
		}

		err = tx.Model(&models.AccountCredential{}).
			Where("owner_user_id = ? and id <> ?", ownerUserID, accountID).
			UpdateColumns(map[string]interface{}{
				"is_active":  false,
				"updated_at": utils.Now(),
			}).Error
		if err != nil {
			return mailgate_errors.WrapPersistence("AccountCredentialRepository.ActivateExclusive", err)
		}

		err = tx.Model(&models.AccountCredential{}).
			Where("owner_user_id = ? and id = ?", ownerUserID, accountID).
			UpdateColumns(map[string]interface{}{
				"is_active":  true,
				"updated_at": utils.Now(),
			}).Error
		if err != nil {
			return mailgate_errors.WrapPersistence("AccountCredentialRepository.ActivateExclusive", err)
		}

		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

func (r *accountCredentialRepository) Delete(ctx context.Context, ownerUserID, accountID string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.Delete")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagOwner(span, ownerUserID)
	tracing.TagEntity(span, accountID)

	result := r.gormDb.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Delete(&models.AccountCredential{}, "id = ?", accountID)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return mailgate_errors.WrapPersistence("AccountCredentialRepository.Delete", result.Error)
	}

	span.LogFields(tracingLog.Int64("result.rowsAffected", result.RowsAffected))
	return nil
}

func (r *accountCredentialRepository) GetOwnersWithDuplicates(ctx context.Context) ([]string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AccountCredentialRepository.GetOwnersWithDuplicates")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	// Distinct keeps an owner with several duplicated addresses from
	// showing up once per address.
	var owners []string
	err := r.gormDb.WithContext(ctx).
		Model(&models.AccountCredential{}).
		Distinct("owner_user_id").
		Group("owner_user_id, email_address").
		Having("count(*) > 1").
		Find(&owners).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailgate_errors.WrapPersistence("AccountCredentialRepository.GetOwnersWithDuplicates", err)
	}

	span.LogFields(tracingLog.Int("result.count", len(owners)))
	return owners, nil
}
