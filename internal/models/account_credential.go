package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/iamail/mailgate/internal/enum"
	"github.com/iamail/mailgate/internal/utils"
)

type AccountCredential struct {
	ID           string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	OwnerUserID  string `gorm:"column:owner_user_id;type:varchar(50);index;not null" json:"ownerUserId"`
	EmailAddress string `gorm:"column:email_address;type:varchar(255);index;not null" json:"emailAddress"`
	// Provider routing, snapshot at creation time. Re-resolved only on an
	// explicit redetect request so a catalog change cannot silently move an
	// account to a different provider.
	ProviderKey string `gorm:"column:provider_key;type:varchar(50);index;not null" json:"providerKey"`
	// Endpoint overrides for custom servers; when present they take
	// precedence over the provider descriptor.
	IMAPOverride *EndpointOverride `gorm:"column:imap_override;type:jsonb" json:"imapOverride,omitempty"`
	SMTPOverride *EndpointOverride `gorm:"column:smtp_override;type:jsonb" json:"smtpOverride,omitempty"`
	// DetectionMeta records how the provider key was determined, for
	// support tooling.
	DetectionMeta JSONMap `gorm:"column:detection_meta;type:jsonb" json:"detectionMeta,omitempty"`
	// Encrypted at rest, never serialized to clients.
	EncryptedSecret string `gorm:"column:encrypted_secret;type:text;not null" json:"-"`
	// Exactly one active credential per owner.
	IsActive bool `gorm:"column:is_active;not null;default:false" json:"isActive"`
	// Other Configuration
	DisplayName string                 `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	SyncFolders pq.StringArray         `gorm:"column:sync_folders;type:text[]" json:"syncFolders"`
	SyncStatus  enum.AccountSyncStatus `gorm:"column:sync_status;type:varchar(50)" json:"syncStatus"`
	// Status Information
	LastSyncedAt *time.Time `gorm:"column:last_synced_at;type:timestamp" json:"lastSyncedAt"`
	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

// TableName sets the table name
func (AccountCredential) TableName() string {
	return "account_credentials"
}

func (a *AccountCredential) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateNanoIDWithPrefix("acct", 16)
	}
	return nil
}
