// Copyright 2025 Lorica Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/loricahq/corpus"
	"github.com/loricahq/corpus/ai"
	"github.com/loricahq/corpus/config"
	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/extract"
	"github.com/loricahq/corpus/ingest"
)

func main() {
	app := &cli.App{
		Name:  "corpus",
		Usage: "Document ingestion and role-filtered semantic retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "config.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents into the corpus",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "access-level",
						Aliases:  []string{"a"},
						Usage:    "Access level for the documents (employee, manager, admin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "department",
						Usage: "Department tag for the documents (empty means visible to all departments)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (defaults to the file name; single file only)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the corpus",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "role",
						Aliases: []string{"r"},
						Usage:   "Caller role (employee, manager, admin)",
						Value:   "employee",
					},
					&cli.StringFlag{
						Name:  "department",
						Usage: "Caller department",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and all its indexed chunks",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
				Flags:     storeFlags(),
			},
			{
				Name:      "status",
				Usage:     "Show ingestion status of documents",
				ArgsUsage: "[DOCUMENT_ID]",
				Action:    statusCommand,
				Flags:     storeFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the database directory (overrides config)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (overrides config)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (overrides config)",
		},
		&cli.IntFlag{
			Name:  "embedding-dimension",
			Usage: "Embedding vector dimension (overrides config)",
		},
	}
}

// loadConfig merges the YAML config with command-line overrides.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v := c.String("db"); v != "" {
		cfg.Store.Path = v
	}
	if v := c.String("embedding-host"); v != "" {
		cfg.Embedder.Host = v
	}
	if v := c.String("embedding-model"); v != "" {
		cfg.Embedder.Model = v
	}
	if v := c.Int("embedding-dimension"); v != 0 {
		cfg.Embedder.Dimension = v
	}
	return cfg, nil
}

func openDatabase(cfg *config.AppConfig) (*corpus.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.Embedder.Host),
		ai.WithModel(cfg.Embedder.Model),
		ai.WithDimension(cfg.Embedder.Dimension),
		ai.WithAPIKey(cfg.Embedder.APIKey()),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedder configuration: %w", err)
	}

	return corpus.NewDatabase(cfg.Store.Path,
		corpus.WithAIConfig(aiConfig),
		corpus.WithChunking(cfg.Chunker.Size, cfg.Chunker.OverlapValue()),
		corpus.WithGatewayOptions(ai.WithBatchSize(cfg.Embedder.BatchSize)),
	)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if c.String("title") != "" && c.NArg() > 1 {
		return fmt.Errorf("--title can only be used with a single file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingest.WithConcurrency(cfg.Ingest.Concurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	var reqs []*ingest.Request
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		title := c.String("title")
		if title == "" {
			title = filepath.Base(path)
		}
		reqs = append(reqs, &ingest.Request{
			Title:       title,
			SourceName:  filepath.Base(path),
			FileType:    extract.NormalizeFileType(filepath.Ext(path)),
			AccessLevel: core.AccessLevel(c.String("access-level")),
			Department:  c.String("department"),
			Data:        data,
		})
	}

	results := pipeline.IngestAll(context.Background(), reqs)

	failed := 0
	for i, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", c.Args().Get(i), result.Err)
			continue
		}
		fmt.Printf("%s: document %d indexed, %d chunks\n",
			c.Args().Get(i), result.DocumentId, result.ChunksCreated)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query argument is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	limit := c.Int("limit")
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Retrieve(context.Background(),
		c.Args().First(), c.String("role"), c.String("department"), limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		md := r.Record.Metadata
		fmt.Printf("%d. [%.3f] document %d chunk %d/%d (%s)\n",
			i+1, r.Relevance, md.DocumentId, md.ChunkIndex+1, md.TotalChunks, md.SourceName)
		fmt.Printf("   %s\n", snippet(r.Record.Text, 200))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document ID argument is required")
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document ID %q", c.Args().First())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	docID := core.ID(id)

	if err := db.VectorStore().DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete indexed chunks: %w", err)
	}
	if err := db.DocumentRepository().DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("document %d deleted\n", docID)
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	var docs []*core.Document
	if c.NArg() == 1 {
		id, err := strconv.ParseUint(c.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document ID %q", c.Args().First())
		}
		doc, err := db.DocumentRepository().GetDocument(ctx, core.ID(id))
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		docs = append(docs, doc)
	} else {
		docs, err = db.DocumentRepository().ListDocuments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
	}

	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, doc := range docs {
		line := fmt.Sprintf("%d  %-10s  chunks=%-4d  %s  level=%s",
			doc.Id, doc.State, doc.ChunkCount, doc.Title, doc.AccessLevel)
		if doc.Department != "" {
			line += "  department=" + doc.Department
		}
		if doc.State == core.StateFailed {
			line += fmt.Sprintf("  failed_stage=%s reason=%q", doc.FailedStage, doc.FailureReason)
		}
		fmt.Println(line)
	}
	return nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
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
