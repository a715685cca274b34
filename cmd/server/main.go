package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pizzatrack",
	Short: "PizzaTrack storefront and delivery backend",
	Long:  "PizzaTrack serves the storefront, the admin console, the delivery view and public order tracking.",
}

func init() {
	// running without a subcommand starts the server
	rootCmd.RunE = serveCmd.RunE
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm dropping every table")
}
