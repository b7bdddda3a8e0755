/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backend",
	Short: "Fellowship platform backend services",
	Long: `Fellowship platform backend services. Usage:

	backend gateway       start the API gateway
	backend identity      start the identity service
	backend applications  start the applications service
	backend worker        start the submission-event worker
	backend migrate up    apply database migrations
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
