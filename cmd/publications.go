package main

import (
	"github.com/spf13/cobra"
)

var publicationsCmd = &cobra.Command{
	Use:   "publications",
	Short: "Extract and flatten per-organization publication lists",
	Long: `The applicants snapshot carries only each entity's top patents. The
publications subcommands fetch the complete per-organization publication
lists from the EPO publications API and flatten them to one CSV row per
publication.`,
}

func init() {
	rootCmd.AddCommand(publicationsCmd)
}
