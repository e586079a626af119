package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"11333"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type MailgateDatabaseConfig struct {
	Host            string `env:"IAMAIL_POSTGRES_HOST,required"`
	Port            string `env:"IAMAIL_POSTGRES_PORT,required"`
	User            string `env:"IAMAIL_POSTGRES_USER,required"`
	DBName          string `env:"IAMAIL_POSTGRES_DB_NAME,required"`
	Password        string `env:"IAMAIL_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"IAMAIL_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"IAMAIL_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"IAMAIL_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"IAMAIL_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"IAMAIL_POSTGRES_SSL_MODE" envDefault:"require"`
}

type EncryptionConfig struct {
	Passphrase string `env:"CREDENTIAL_ENCRYPTION_PASSPHRASE,required"`
	Salt       string `env:"CREDENTIAL_ENCRYPTION_SALT" envDefault:"iamail-mailgate"`
}
