package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Payment reconciliation service",
	Long:  "Reconciles payment-gateway webhook events with booking, subscription, and swipe-purchase records.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
