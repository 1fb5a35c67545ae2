// Package commands implements the fintrackctl command line.
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/services"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Administer a fintrack database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newExportCommand(),
		newImportCommand(),
		newDashboardCommand(),
	)

	return rootCmd
}

// openDatabase loads configuration and connects to the configured database.
// Callers must Close the returned manager.
func openDatabase() (*config.Config, *database.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	mgr, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, mgr, nil
}

// resolveUser maps the --user flag (an email address) to a user id.
func resolveUser(db *gorm.DB, email string) (string, error) {
	user, err := services.NewUserService(db).GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("looking up user %s: %w", email, err)
	}
	return user.ID, nil
}

// nowFunc is the clock used by commands.
var nowFunc = time.Now

type serviceSet struct {
	transfer  services.TransferServicer
	dashboard services.DashboardServicer
}

func newServiceSet(db *gorm.DB) serviceSet {
	transactions := services.NewTransactionService(db)
	goals := services.NewGoalService(db, transactions, nowFunc)
	budgets := services.NewBudgetService(db)
	return serviceSet{
		transfer:  services.NewTransferService(transactions, goals),
		dashboard: services.NewDashboardService(transactions, goals, budgets, nowFunc),
	}
}
