package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/multielectric/mesupply/internal/auth"
	"github.com/multielectric/mesupply/internal/config"
	"github.com/multielectric/mesupply/internal/database"
	"github.com/multielectric/mesupply/internal/events"
	"github.com/multielectric/mesupply/internal/payments"
	"github.com/multielectric/mesupply/internal/server"
	"github.com/multielectric/mesupply/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Multi Electric Supply server",
	Long: `Start the HTTP server which provides:
- Public storefront API (catalog, checkout sessions, Stripe webhooks)
- Employee portal API (orders, inventory, clients, users)
- Live order updates over server-sent events`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Multi Electric Supply Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("🔌 Connecting to database...")
	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("✅ Database connected successfully")

	fmt.Println("⚙️  Setting up server...")
	st := store.New(db)
	hub := events.NewHub()
	provider := payments.NewStripeProvider(&cfg.Stripe, cfg.Server.AppURL)
	checkout := payments.NewCheckoutService(st, provider)
	ingestor := payments.NewIngestor(st, provider, hub)
	tokens := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := server.NewServer(cfg, db, st, hub, checkout, ingestor, tokens)

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
