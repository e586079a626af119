package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/iamail/mailgate/interfaces"
	"github.com/iamail/mailgate/internal/models"
)

type Repositories struct {
	AccountCredentialRepository interfaces.AccountCredentialRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		AccountCredentialRepository: NewAccountCredentialRepository(db),
	}
}

func MigrateDB(maxIdleConn, maxConn, connMaxLifetimeMinutes int, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.AccountCredential{},
	)
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(maxIdleConn)
	sqlDB.SetMaxOpenConns(maxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetimeMinutes) * time.Minute)

	return nil
}
