package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gcalphotos application
var rootCmd = &cobra.Command{
	Use:   "gcalphotos",
	Short: "MCP server for Google Calendar and Google Photos",
	Long: `gcalphotos is a Model Context Protocol (MCP) server that lets AI
assistants manage Google Calendar events and browse the Google Photos
library of a single authorized account.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gcalphotos version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
