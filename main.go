package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/iamail/mailgate/config"
	"github.com/iamail/mailgate/internal/database"
	"github.com/iamail/mailgate/internal/repository"
	"github.com/iamail/mailgate/server"
)

func main() {
	app := &cli.App{
		Name:  "mailgate",
		Usage: "i.AM Mail account gateway",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(c *cli.Context) error {
					cfg, db, err := setup()
					if err != nil {
						return err
					}

					err = repository.MigrateDB(
						cfg.MailgateDatabaseConfig.MaxIdleConn,
						cfg.MailgateDatabaseConfig.MaxConn,
						cfg.MailgateDatabaseConfig.ConnMaxLifetime,
						db,
					)
					if err != nil {
						return err
					}

					log.Println("Database migration completed successfully")
					return nil
				},
			},
			{
				Name:  "server",
				Usage: "Start the application server",
				Action: func(c *cli.Context) error {
					cfg, db, err := setup()
					if err != nil {
						return err
					}

					log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
					log.Println("MailGate starting up...")

					srv, err := server.NewServer(cfg, db)
					if err != nil {
						return err
					}

					return srv.Run()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewConnection(&database.DatabaseConfig{
		DBName:          cfg.MailgateDatabaseConfig.DBName,
		Host:            cfg.MailgateDatabaseConfig.Host,
		Port:            cfg.MailgateDatabaseConfig.Port,
		User:            cfg.MailgateDatabaseConfig.User,
		Password:        cfg.MailgateDatabaseConfig.Password,
		MaxConn:         cfg.MailgateDatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.MailgateDatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.MailgateDatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.MailgateDatabaseConfig.LogLevel,
		SSLMode:         cfg.MailgateDatabaseConfig.SSLMode,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}
