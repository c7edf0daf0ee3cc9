package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "chemsite",
	Short:         "Nordvale Chemicals website backend",
	Long:          "Serves the contact form, the chat assistant proxy, translations and the product catalog.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}
