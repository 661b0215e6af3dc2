package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/contentcrawler/internal/ai"
	"github.com/nao1215/contentcrawler/internal/config"
	"github.com/nao1215/contentcrawler/internal/crawler"
	"github.com/nao1215/contentcrawler/internal/database"
	"github.com/nao1215/contentcrawler/internal/fetch"
	"github.com/nao1215/contentcrawler/internal/log"
	"github.com/nao1215/contentcrawler/internal/model"
	"github.com/nao1215/contentcrawler/internal/report"
	"github.com/nao1215/contentcrawler/internal/search"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [topic]",
		Short: "Crawl the web for fresh content about a topic",
		Long: `Crawl discovers and collects recent web content about the given topic.

It issues programmable search queries, fetches candidate pages, asks an LLM
to judge relevance and extract structured content, and produces a
deduplicated digest ranked by relevance and recency. When the frontier runs
dry it generates follow-up queries that deepen (if content was found) or
broaden (if not) the search.

Required credentials (environment variables or config file):
  OPENAI_API_KEY      OpenAI API key for relevance judgment and extraction
  GOOGLE_CSE_API_KEY  Google Custom Search API key
  GOOGLE_CSE_ID       Google Custom Search Engine ID

Examples:
  # Crawl for a topic
  contentcrawler crawl "quantum computing"

  # Stop after 10 accepted articles, at most 2 per domain
  contentcrawler crawl --max-content 10 --max-per-domain 2 "rust async runtimes"

  # Write a Markdown report to a file
  contentcrawler crawl --markdown -o report.md "LLM inference optimization"

  # Use a custom configuration file and skip the database
  contentcrawler crawl -c myconfig.yaml --no-db "edge computing"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-content", "n", config.DefaultMaxContent,
		"Number of accepted content items to stop at")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to visit")
	cmd.Flags().IntP("max-per-domain", "D", config.DefaultMaxPerDomain,
		"Maximum accepted content items per domain")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"HTTP timeout for each page fetch")
	cmd.Flags().String("model", config.DefaultLLMModel,
		"Chat model used for relevance judgment and extraction")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contentcrawler in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite database (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false,
		"Do not save results to the database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags, config file, and environment
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Prompt interactively when no topic was given on the command line
	if cfg.Topic == "" {
		reader := bufio.NewReader(cmd.InOrStdin())

		cfg.Topic, err = promptTopic(reader, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("max-per-domain") {
			cfg.MaxPerDomain = promptMaxPerDomain(reader, cmd.OutOrStdout(), cfg.MaxPerDomain)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential sanitization
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// promptTopic asks the user for a topic, re-prompting on empty input
// until input runs out.
func promptTopic(reader *bufio.Reader, out io.Writer) (string, error) {
	for {
		fmt.Fprint(out, "Enter a topic to crawl: ")

		line, err := reader.ReadString('\n')
		topic := strings.TrimSpace(line)
		if topic != "" {
			return topic, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errors.New("no topic provided")
			}
			return "", fmt.Errorf("failed to read topic: %w", err)
		}
	}
}

// promptMaxPerDomain asks for the per-domain content cap. Empty or
// invalid input falls back to the default.
func promptMaxPerDomain(reader *bufio.Reader, out io.Writer, defaultCap int) int {
	fmt.Fprintf(out, "Max content items per domain [%d]: ", defaultCap)

	line, _ := reader.ReadString('\n')
	value, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || value <= 0 {
		return defaultCap
	}
	return value
}

// buildConfig creates a Config from cobra command flags, the config file,
// and environment variables. Precedence: flags > environment > file > defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file first so flags and environment can override it.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Environment variables beat config file values
	cfg.ApplyEnv()

	// Flags beat everything. Only override when the user set the flag so
	// config file values survive for unset flags.
	if cmd.Flags().Changed("max-content") {
		cfg.MaxContent, err = cmd.Flags().GetInt("max-content")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-per-domain") {
		cfg.MaxPerDomain, err = cmd.Flags().GetInt("max-per-domain")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("model") {
		cfg.LLMModel, err = cmd.Flags().GetString("model")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments form the topic
	cfg.Topic = strings.TrimSpace(strings.Join(args, " "))

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"topic", cfg.Topic,
		"maxContent", cfg.MaxContent,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	// One limiter shared by the generative and search clients so pacing
	// and backoff state stay consistent across the whole run.
	limiter := crawler.NewLimiter(crawler.WithLimiterLogger(logger))

	aiClient := ai.NewClient(cfg.OpenAIAPIKey, limiter,
		ai.WithModel(cfg.LLMModel),
		ai.WithLogger(logger),
	)

	fetcher := fetch.NewFetcher(
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)

	searchClient := search.NewGoogleClient(cfg.GoogleAPIKey, cfg.GoogleCSEID, cfg.Topic, limiter,
		search.WithRanker(aiClient),
		search.WithLogger(logger),
	)

	// Open database connection if saving is enabled
	var (
		db        *database.ContentDB
		sessionID string
		store     crawler.Store
	)
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		sessionID, err = db.StartSession(ctx, cfg.Topic)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		store = database.NewSessionStore(db, sessionID)
	} else {
		store = database.NewMemoryStore()
	}

	orchestrator := crawler.NewOrchestrator(fetcher, searchClient, aiClient, store,
		crawler.WithLogger(logger),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxContent(cfg.MaxContent),
		crawler.WithMaxPerDomain(cfg.MaxPerDomain),
		crawler.WithSimilarityThreshold(cfg.SimilarityThreshold),
	)

	fmt.Printf("Crawling for %q...\n", cfg.Topic)
	startTime := time.Now()

	result, err := orchestrator.Run(ctx, cfg.Topic)
	if err != nil {
		var svcErr *crawler.ExternalServiceError
		if errors.As(err, &svcErr) {
			return fmt.Errorf("external %s service is unavailable after %d attempts: %w",
				svcErr.Class, svcErr.Attempts, svcErr.Err)
		}
		return fmt.Errorf("crawl failed: %w", err)
	}
	result.SessionID = sessionID

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Record final statistics for the session
	if db != nil {
		if err := db.FinishSession(ctx, sessionID, result); err != nil {
			logger.Error("failed to finish session", "session_id", sessionID, "error", err)
		}
	}

	return outputReport(cfg, result)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}
