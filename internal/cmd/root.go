package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mesupply",
	Short: "Multi Electric Supply - storefront and employee portal backend",
	Long: `Multi Electric Supply backend serves the public storefront API
(catalog browsing and Stripe checkout) and the employee portal API
(orders, inventory, clients and user management) with live order
updates over SSE.

Run "mesupply serve" to start the HTTP server, or use the migrate and
seed commands to prepare a fresh database.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
