package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Duplicate credential sweep, daily at midnight
	CronScheduleDeduplicateAccounts string `env:"CRON_SCHEDULE_DEDUPLICATE_ACCOUNTS" envDefault:"0 0 0 * * *"`
}
