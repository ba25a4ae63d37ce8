package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jshaughn618/story-search/ai"
	"github.com/jshaughn618/story-search/ai/openai"
	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/ingest"
	"github.com/jshaughn618/story-search/storage/badger"
	"github.com/jshaughn618/story-search/storage/sqlite"
)

func main() {
	app := &cli.App{
		Name:  "storyindex",
		Usage: "Build a deduplicated, embedded story corpus from document files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Index all documents under a directory",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Directory to scan for documents",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the SQLite database file",
						Value:   "storyindex.db",
					},
					&cli.StringFlag{
						Name:    "blobs",
						Aliases: []string{"b"},
						Usage:   "Path to the blob/vector database directory",
						Value:   "storyindex-blobs",
					},
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Reprocess every file, ignoring stored raw hashes",
					},
					&cli.BoolFlag{
						Name:  "allow-model-change",
						Usage: "Proceed even if the embedding model/dimension differs from the stored corpus settings",
					},
					&cli.StringFlag{
						Name:  "reports",
						Usage: "Directory for run reports (empty disables report files)",
						Value: "reports",
					},
					&cli.BoolFlag{
						Name:  "profile",
						Usage: "Include a per-stage timing profile in reports",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk target size in characters",
						Value: 1800,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between consecutive chunks in characters",
						Value: 280,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "metadata-host",
						Usage: "Metadata service host URL (defaults to embedding-host)",
					},
					&cli.StringFlag{
						Name:     "metadata-model",
						Usage:    "Metadata model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "embedding-batch-size",
						Usage: "Number of texts per embedding call",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 2 * time.Second,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Worker pool size for raw-hash prefetch",
						Value: 4,
					},
					&cli.Int64Flag{
						Name:  "max-file-size",
						Usage: "Largest file in bytes discovery will pick up",
						Value: 64 * 1024 * 1024,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Report corpus-level counts and settings",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the SQLite database file",
						Value:   "storyindex.db",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	relational, err := sqlite.NewStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer relational.Close()

	backend, err := badger.OpenBackend(c.String("blobs"), false)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	defer backend.Close()

	metadataHost := c.String("metadata-host")
	if metadataHost == "" {
		metadataHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithMetadataHost(metadataHost),
		ai.WithMetadataModel(c.String("metadata-model")),
		ai.WithEmbeddingBatchSize(c.Int("embedding-batch-size")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	pipeline := ingest.NewPipeline(
		relational,
		badger.NewObjectStore(backend),
		badger.NewVectorIndex(backend),
		provider,
		slog.Default(),
		ingest.WithFullReprocess(c.Bool("full")),
		ingest.WithAllowModelChange(c.Bool("allow-model-change")),
		ingest.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingest.WithConcurrency(c.Int("concurrency")),
		ingest.WithMaxFileBytes(c.Int64("max-file-size")),
		ingest.WithReportsDir(c.String("reports")),
		ingest.WithProfiling(c.Bool("profile")),
	)

	report, err := pipeline.Run(ctx, c.String("input"))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Run %s finished in %dms\n", report.RunID, report.DurationMS)
	fmt.Printf("  scanned: %d  indexed: %d  deduped: %d  skipped: %d  failed: %d\n",
		report.Scanned, report.Indexed, report.Deduped, report.Skipped, report.Failed)
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	relational, err := sqlite.NewStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer relational.Close()

	stories, err := relational.CountStories(ctx)
	if err != nil {
		return err
	}
	sources, err := relational.CountAllSources(ctx)
	if err != nil {
		return err
	}
	statusCounts, err := relational.StatusCounts(ctx)
	if err != nil {
		return err
	}
	settings, err := relational.GetSettings(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Stories: %d\n", stories)
	fmt.Printf("Sources: %d\n", sources)

	statuses := make([]string, 0, len(statusCounts))
	for status := range statusCounts {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Printf("  %-20s %d\n", status, statusCounts[core.QualityStatus(status)])
	}

	if settings.EmbeddingModel != "" {
		fmt.Printf("Embedding model: %s (%d dims)\n", settings.EmbeddingModel, settings.EmbeddingDim)
		fmt.Printf("Last indexed: %s\n", settings.LastIndexedAt.Format(time.RFC3339))
	} else {
		fmt.Println("Embedding model: not set (no completed runs)")
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
