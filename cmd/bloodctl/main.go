package main

import (
	"context"
	"errors"
	"os"

	"bloodlink/internal/config"
	"bloodlink/internal/database"
	"bloodlink/internal/logging"
	"bloodlink/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the dependencies shared by every command
type App struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
	ctx    context.Context
}

var (
	env         string
	databaseURL string
	app         *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "bloodctl",
		Short:        "BloodLink operations CLI",
		Long:         `Provision admins, seed hospitals and run one-off jobs against the BloodLink database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.db != nil {
					database.Close(app.db)
				}
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, production, test)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (defaults to DATABASE_URL or DB_* variables)")

	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(hospitalsCmd())
	rootCmd.AddCommand(remindersCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and database
func initApp(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	logger, err := logging.New(env)
	if err != nil {
		return err
	}
	app = &App{logger: logger, ctx: ctx}

	dsn := databaseURL
	if dsn == "" {
		dsn = config.DatabaseURLFromEnv(os.Getenv)
	}
	if dsn == "" {
		return errors.New("no database configured: pass --database-url or set DATABASE_URL")
	}

	app.db, err = database.Open(ctx, dsn, logger.Named("db"), env == "production")
	if err != nil {
		return err
	}
	app.repos = repository.New(app.db)
	return nil
}
