package cli

import (
	"github.com/spf13/cobra"
)

// Execute builds and runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "access-log-analyzer",
		Short: "Batch analysis of Apache/Nginx access logs",
		Long: `access-log-analyzer reads a web-server access log once and writes one
summary report per analysis:

  ip-counts    occurrences of every IPv4 address
  unique-ips   the set of client addresses
  ip-window    requests per client within a window after its first request
  user-agents  user agents by browser/bot/tool category
  endpoints    requests per method and path

Reports are written as text, markdown or JSON to files, stdout, a SQLite
archive or Elasticsearch. Lines that do not match are skipped and can be
recorded in a diagnostics file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml, then $XDG_CONFIG_HOME/access-log-analyzer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		NewAnalyzeCmd(&cfgFile, &logLevel),
		NewValidateCmd(&cfgFile),
		NewVersionCmd(),
	)

	return rootCmd
}
