package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/multielectric/mesupply/internal/config"
	"github.com/multielectric/mesupply/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Applies the schema: products, customers, orders, order_items,
order_sequences and employees tables plus their indexes. Every
statement is idempotent, so re-running on an existing database is safe.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Migrating database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("📋 Applying schema...")
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	fmt.Println("✅ Migration complete!")
	return nil
}
