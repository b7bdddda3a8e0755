/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/gateway"
	"github.com/corefellowship/backend/internal/logging"
	"github.com/spf13/cobra"
)

// gatewayCmd represents the gateway command
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Starts the API gateway",
	Long: `Starts the API gateway. Usage:

	backend gateway
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		log := logging.NewDefault("gateway")

		srv, err := gateway.New(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start gateway: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
}
