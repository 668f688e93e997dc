package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the meetbook application
var rootCmd = &cobra.Command{
	Use:   "meetbook",
	Short: "Books Google Meet meetings on a shared calendar",
	Long: `meetbook checks a shared Google Calendar for open slots and books video
meetings on it, refusing double bookings, past times and the restricted
night hours.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A CLI for checking availability and booking from the terminal`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	configPath string
	debugMode  bool
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetbook version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: meetbook.yaml). Settings can also come from MEETBOOK_ environment variables.")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAvailabilityCmd())
	rootCmd.AddCommand(newBookCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "meetbook version %s\n", version)
		},
	}
}
