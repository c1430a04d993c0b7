package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/multielectric/mesupply/internal/auth"
	"github.com/multielectric/mesupply/internal/config"
	"github.com/multielectric/mesupply/internal/database"
	"github.com/multielectric/mesupply/internal/models"
	"github.com/multielectric/mesupply/internal/store"
)

var catalogOnly bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with the sample catalog and admin user",
	Long: `Inserts a starter catalog of electrical supplies and bootstraps the
initial admin account from auth.admin_email / auth.admin_password.

Products are keyed by SKU and the admin by email, so re-running never
duplicates rows or overwrites edits made through the portal.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().BoolVar(&catalogOnly, "catalog-only", false, "Seed the product catalog only, skip the admin account")
}

func runSeed(cmd *cobra.Command, args []string) error {
	fmt.Println("🌱 Seeding database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("   📦 Creating products...")
	if err := seedProducts(db); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if !catalogOnly {
		fmt.Println("   👤 Creating admin account...")
		if err := seedAdmin(cmd.Context(), db, cfg); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	fmt.Println("✅ Seed complete!")
	return nil
}

func seedProducts(db *database.DB) error {
	products := []struct {
		sku, name, description, category string
		priceCents                       int64
		stock                            int
	}{
		{"CBL-THHN-12-500", "THHN Wire 12 AWG, 500ft", "Stranded copper building wire, 600V, black", "cable", 8950, 40},
		{"CBL-ROMEX-14-250", "NM-B Romex 14/2, 250ft", "Non-metallic sheathed cable with ground", "cable", 7800, 25},
		{"CBL-MC-12-100", "MC Cable 12/2, 100ft", "Metal clad cable, aluminum armor", "cable", 11200, 18},
		{"BRK-SP-20A", "Single Pole Breaker 20A", "Plug-on circuit breaker, 120V", "breakers", 1250, 120},
		{"BRK-DP-50A", "Double Pole Breaker 50A", "Plug-on circuit breaker, 240V", "breakers", 3400, 60},
		{"BRK-GFCI-20A", "GFCI Breaker 20A", "Ground fault circuit interrupter breaker", "breakers", 5600, 35},
		{"PNL-100A-20", "Load Center 100A, 20 Space", "Main breaker panel, indoor, NEMA 1", "panels", 14900, 12},
		{"PNL-200A-40", "Load Center 200A, 40 Space", "Main breaker panel, indoor, NEMA 1", "panels", 28500, 8},
		{"LGT-HB-150W", "LED High Bay 150W", "Warehouse high bay fixture, 5000K, 21000lm", "lighting", 9800, 30},
		{"LGT-WP-40W", "LED Wall Pack 40W", "Outdoor wall pack with photocell, 5000K", "lighting", 5200, 45},
		{"LGT-TUBE-4FT", "LED Tube 4ft, 18W", "Type B ballast-bypass tube, 4000K, 25-pack", "lighting", 6700, 80},
		{"OUT-DUP-20A", "Duplex Receptacle 20A", "Commercial grade tamper resistant, 10-pack", "devices", 3200, 150},
		{"OUT-GFCI-20A", "GFCI Receptacle 20A", "Self-test GFCI with wall plate", "devices", 2100, 90},
		{"SW-3WAY-15A", "3-Way Switch 15A", "Commercial grade toggle switch, 10-pack", "devices", 2800, 110},
		{"CND-EMT-34-10", "EMT Conduit 3/4in, 10ft", "Electrical metallic tubing, galvanized", "conduit", 1150, 200},
		{"CND-PVC-1-10", "PVC Conduit 1in, 10ft", "Schedule 40 rigid conduit", "conduit", 850, 160},
	}

	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (sku, name, description, category, price_cents, currency, stock)
			VALUES ($1, $2, $3, $4, $5, 'usd', $6)
			ON CONFLICT (sku) DO NOTHING`,
			p.sku, p.name, p.description, p.category, p.priceCents, p.stock)
		if err != nil {
			return err
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, db *database.DB, cfg *config.Config) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		fmt.Println("   ⚠️  auth.admin_email / auth.admin_password not set, skipping admin account")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return store.New(db).EnsureEmployee(ctx, store.EmployeeParams{
		Name:         "Administrator",
		Email:        cfg.Auth.AdminEmail,
		Role:         string(auth.RoleAdmin),
		Status:       models.UserStatusActive,
		PasswordHash: string(hash),
	})
}
