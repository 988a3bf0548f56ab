package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/observability"
	"github.com/IshaanNene/NewsDentist/internal/storage"
	"github.com/IshaanNene/NewsDentist/internal/types"
	"github.com/IshaanNene/NewsDentist/pkg/newsdentist"
)

var (
	cfgFile      string
	verbose      bool
	pageDepth    int
	minWords     int
	concurrency  int
	outputPath   string
	storageType  string
	extractor    string
	fetcherType  string
	exemption    string
	metricsOn    bool
	artifactName string
)

// errBlocked is returned when a run stops on a captcha challenge so the
// process exits non-zero without printing a usage message.
var errBlocked = errors.New("search blocked by captcha challenge")

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsdentist",
		Short: "NewsDentist: news link harvester and text extractor",
		Long: `NewsDentist searches a news index for a query, downloads every article
it links to, keeps only the lines that look like body prose, and writes
them to a single text artifact.

Run "newsdentist stats" on an artifact to see its most common words.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(harvestCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(linkifyCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBlocked) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// harvestCmd creates the "harvest" subcommand.
func harvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest QUERY",
		Short: "Harvest article text for a news query",
		Long: `Search the news index for QUERY, follow every article link on the first
--depth result pages and write the accepted lines to one artifact.

If the search endpoint answers with a captcha, the run stops, the artifact
keeps its placeholder and the captcha URL is printed. Solve it in a browser
and pass the resulting GOOGLE_ABUSE_EXEMPTION value with --exemption.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runHarvest,
	}

	cmd.Flags().IntVarP(&pageDepth, "depth", "d", 0, "number of result pages to walk (default from config)")
	cmd.Flags().IntVarP(&minWords, "min-words", "m", 0, "minimum words for a line to be kept (default from config)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "concurrent article downloads (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "artifact directory")
	cmd.Flags().StringVar(&storageType, "storage", "", "artifact storage: file, mongodb")
	cmd.Flags().StringVar(&extractor, "extractor", "", "article text extractor: text_nodes, readability")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "article fetcher: http, browser")
	cmd.Flags().StringVar(&exemption, "exemption", "", "GOOGLE_ABUSE_EXEMPTION cookie value from a solved captcha")
	cmd.Flags().BoolVar(&metricsOn, "metrics", false, "serve Prometheus metrics while harvesting")
	cmd.Flags().StringVar(&artifactName, "name", "", "artifact name (default derived from query and start time)")

	return cmd
}

// runHarvest executes the harvest command.
func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := setupLogger(cfg)

	query := types.NewSearchQuery(strings.Join(args, " "), cfg.Harvest.PageDepth)
	query.MinLineWords = cfg.Article.MinLineWords
	if err := query.Validate(); err != nil {
		return err
	}

	name := artifactName
	if name == "" {
		name = storage.ArtifactName(query.Text, time.Now())
	}
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		metrics.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	client, err := newsdentist.New(
		newsdentist.WithConfig(cfg),
		newsdentist.WithLogger(logger),
		newsdentist.WithMetrics(metrics),
		newsdentist.WithExemption(exemption),
	)
	if err != nil {
		return err
	}

	logger.Info("starting harvest",
		"query", query.Text,
		"depth", query.PageDepth,
		"min_words", query.MinLineWords,
		"concurrency", cfg.Harvest.Concurrency,
		"extractor", cfg.Article.Extractor,
		"fetcher", cfg.Fetcher.Type,
		"storage", cfg.Storage.Type,
		"artifact", name,
	)

	res, err := client.HarvestTo(ctx, query.Text, name)
	if err != nil {
		return err
	}

	snap := metrics.Snapshot()
	logger.Info("harvest finished",
		"run_id", res.RunID,
		"blocked", res.Blocked,
		"pages", res.Pages,
		"urls", res.Articles,
		"failed", res.Failed,
		"lines", res.Lines,
		"bytes", snap["bytes_downloaded"],
		"elapsed", res.Elapsed,
	)

	if res.Blocked {
		fmt.Printf("\n⛔ Search blocked on page %d. Solve the captcha at:\n   %s\n", res.Pages-1, res.CaptchaURL)
		fmt.Printf("   then re-run with --exemption <GOOGLE_ABUSE_EXEMPTION>\n")
		fmt.Printf("   Artifact %s keeps its placeholder.\n", name)
		return errBlocked
	}

	fmt.Printf("\n✅ Harvest complete in %s\n", res.Elapsed.Round(time.Millisecond))
	fmt.Printf("   Pages:     %d\n", res.Pages)
	fmt.Printf("   Articles:  %d fetched, %d failed\n", res.Articles, res.Failed)
	fmt.Printf("   Lines:     %d (%v rejected)\n", res.Lines, snap["lines_rejected"])
	fmt.Printf("   Data:      %v bytes downloaded\n", snap["bytes_downloaded"])
	fmt.Printf("   Artifact:  %s\n", name)
	return nil
}

// linkifyCmd creates the "linkify" subcommand.
func linkifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "linkify QUERY",
		Short: "Print the timestamp-free artifact name for a query",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(storage.Linkify(strings.Join(args, " ")))
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("NewsDentist %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
// Numeric flags are copied whenever they were given so that out-of-range
// values reach validation instead of falling back to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Harvest.PageDepth = pageDepth
	}
	if flags.Changed("min-words") {
		cfg.Article.MinLineWords = minWords
	}
	if flags.Changed("concurrency") {
		cfg.Harvest.Concurrency = concurrency
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if storageType != "" {
		cfg.Storage.Type = strings.ToLower(storageType)
	}
	if extractor != "" {
		cfg.Article.Extractor = strings.ToLower(extractor)
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if metricsOn {
		cfg.Metrics.Enabled = true
	}
}
