package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/analyzer"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/pipeline"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd(cfgFile, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze an access log and write the reports",
		Long: `Analyze reads the access log given as argument (or the configured input,
"-" for stdin) in a single pass and writes one report per enabled analysis.`,
		Example: `  access-log-analyzer analyze /var/log/nginx/access.log
  access-log-analyzer analyze access.log -o reports -f markdown
  cat access.log | access-log-analyzer analyze - --stdout --no-files --only endpoints`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, cfgFile, logLevel)
		},
	}

	// Report flags
	cmd.Flags().StringP("output-dir", "o", "", "directory for report files")
	cmd.Flags().StringP("format", "f", "", "report format (text, markdown, json)")
	cmd.Flags().Bool("stdout", false, "also write reports to stdout")
	cmd.Flags().Bool("no-files", false, "do not write report files")
	cmd.Flags().String("sqlite", "", "archive reports in this SQLite database")

	// Analysis flags
	cmd.Flags().StringSlice("only", nil, "run only these analyses ("+strings.Join(analyzer.Names, ", ")+")")
	cmd.Flags().Duration("window", 0, "ip-window length (e.g. 10s)")
	cmd.Flags().StringSlice("exclude", nil, "endpoint glob patterns to ignore (e.g. /static/**)")

	// Pipeline flags
	cmd.Flags().IntP("workers", "w", 0, "number of parallel analysis workers")
	cmd.Flags().String("diagnostics", "", "write skipped lines to this file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, cfgFile, logLevel *string) error {
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyCLIOverrides(cmd, args, cfg); err != nil {
		return err
	}

	level := *logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	log := SetupLogging(level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	log.Infof("starting analysis: input=%s analyses=%d emitters=%d",
		inputName(cfg.Input), cfg.Analyses.EnabledCount(), p.EmitterCount())

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for _, s := range summary.Stats {
		log.Infof("analysis %s: matched=%d skipped=%d", s.Name, s.Matched, s.Skipped)
	}
	if cfg.Diagnostics.Enabled {
		log.Infof("skipped lines recorded: count=%d path=%s", summary.Skipped, cfg.Diagnostics.Path)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func inputName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}

// applyCLIOverrides copies explicitly set flags over the loaded configuration.
func applyCLIOverrides(cmd *cobra.Command, args []string, cfg *config.Config) error {
	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.Input = args[0]
	}

	if v, _ := flags.GetString("output-dir"); v != "" {
		cfg.Emitters.File.OutputDir = v
	}
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Report.Format = v
	}
	if v, _ := flags.GetBool("stdout"); v {
		cfg.Emitters.Stdout.Enabled = true
	}
	if v, _ := flags.GetBool("no-files"); v {
		cfg.Emitters.File.Enabled = false
	}
	if v, _ := flags.GetString("sqlite"); v != "" {
		cfg.Emitters.SQLite.Enabled = true
		cfg.Emitters.SQLite.Path = v
	}

	if only, _ := flags.GetStringSlice("only"); len(only) > 0 {
		if err := selectAnalyses(&cfg.Analyses, only); err != nil {
			return err
		}
	}
	if flags.Changed("window") {
		cfg.Analyses.IPWindow.Window, _ = flags.GetDuration("window")
	}
	if exclude, _ := flags.GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Analyses.Endpoints.Exclude = append(cfg.Analyses.Endpoints.Exclude, exclude...)
	}

	if flags.Changed("workers") {
		cfg.Pipeline.Workers, _ = flags.GetInt("workers")
	}
	if v, _ := flags.GetString("diagnostics"); v != "" {
		cfg.Diagnostics.Enabled = true
		cfg.Diagnostics.Path = v
	}

	return nil
}

// selectAnalyses enables exactly the named analyses.
func selectAnalyses(a *config.AnalysesConfig, names []string) error {
	for _, n := range names {
		if !slices.Contains(analyzer.Names, n) {
			return fmt.Errorf("unknown analysis %q (available: %s)", n, strings.Join(analyzer.Names, ", "))
		}
	}

	a.IPCounts.Enabled = slices.Contains(names, analyzer.NameIPCounts)
	a.UniqueIPs.Enabled = slices.Contains(names, analyzer.NameUniqueIPs)
	a.IPWindow.Enabled = slices.Contains(names, analyzer.NameIPWindow)
	a.UserAgents.Enabled = slices.Contains(names, analyzer.NameUserAgents)
	a.Endpoints.Enabled = slices.Contains(names, analyzer.NameEndpoints)
	return nil
}
