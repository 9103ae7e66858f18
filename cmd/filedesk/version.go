package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/filedesk/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать версию",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "filedesk %s\n", config.Version)
	},
}
