package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/tracing"
)

type Config struct {
	AppConfig              *AppConfig
	Logger                 *logger.Config
	Tracing                *tracing.JaegerConfig
	MailgateDatabaseConfig *MailgateDatabaseConfig
	EncryptionConfig       *EncryptionConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:              &AppConfig{},
		Logger:                 &logger.Config{},
		Tracing:                &tracing.JaegerConfig{},
		MailgateDatabaseConfig: &MailgateDatabaseConfig{},
		EncryptionConfig:       &EncryptionConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
