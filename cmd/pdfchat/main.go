// Package main is the pdfchat CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/agent"
	"github.com/Soham2704/Pdf-chat/internal/chunkstore"
	"github.com/Soham2704/Pdf-chat/internal/cli"
	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/embedding"
	"github.com/Soham2704/Pdf-chat/internal/extract"
	"github.com/Soham2704/Pdf-chat/internal/indexer"
	"github.com/Soham2704/Pdf-chat/internal/llm"
	"github.com/Soham2704/Pdf-chat/internal/locator"
	"github.com/Soham2704/Pdf-chat/internal/models"
	"github.com/Soham2704/Pdf-chat/internal/server"
	"github.com/Soham2704/Pdf-chat/internal/storage"
	"github.com/Soham2704/Pdf-chat/internal/watcher"
	"github.com/Soham2704/Pdf-chat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/pdfchat/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "highlight":
		runHighlight()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("pdfchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Reload the previous corpus so questions work before the first rebuild.
	if n, err := components.Indexer.Restore(context.Background()); err != nil {
		logger.Warn("corpus restore skipped", zap.Error(err))
	} else if n > 0 {
		logger.Info("corpus restored", zap.Int("chunks", n))
	}

	idx := components.Indexer
	rebuild := func() {
		paths, err := watcher.ListPDFs(cfg.Watch.Directories)
		if err != nil {
			logger.Warn("drop directory scan failed", zap.Error(err))
			return
		}
		if len(paths) == 0 {
			return
		}
		if _, err := idx.IngestFiles(context.Background(), paths); err != nil {
			logger.Warn("watch rebuild failed", zap.Error(err))
		}
	}
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(cfg.Watch.Directories, rebuild, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		if components.Store.Size() == 0 {
			rebuild()
		}
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Indexer,
		components.Locator,
		components.Store,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" {
		if err := components.Store.SaveIndex(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchSvc.Stop()
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// questionArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func questionArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	args := questionArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = answer in-process)")
	files := fs.String("files", "", "comma-separated source documents to restrict retrieval to")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdfchat ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: pdfchat ask [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var candidateFiles []string
	if *files != "" {
		for _, f := range strings.Split(*files, ",") {
			if f = strings.TrimSpace(f); f != "" {
				candidateFiles = append(candidateFiles, f)
			}
		}
	}

	var answer *models.Answer
	if *serverURL != "" {
		answer, err = askViaHTTP(*serverURL, question, candidateFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		if _, err := components.Indexer.Restore(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Corpus restore failed: %v\n", err)
			os.Exit(1)
		}
		if len(candidateFiles) == 0 {
			candidateFiles = components.Store.Sources()
		}
		answer, err = components.Pipeline.Answer(context.Background(), question, candidateFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

type askHTTPRequest struct {
	Question string   `json:"question"`
	Files    []string `json:"files,omitempty"`
}

type askHTTPResponse struct {
	Intent   string `json:"intent"`
	Answer   string `json:"answer"`
	Chained  bool   `json:"chained"`
	Evidence []struct {
		ID             string  `json:"id"`
		SourceDocument string  `json:"sourceDocument"`
		PageNumber     int     `json:"pageNumber"`
		Snippet        string  `json:"snippet"`
		Relevance      float64 `json:"relevance"`
	} `json:"evidence"`
}

func askViaHTTP(serverURL, question string, files []string) (*models.Answer, error) {
	body, err := json.Marshal(askHTTPRequest{Question: question, Files: files})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var decoded askHTTPResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	answer := &models.Answer{
		Intent:  models.Intent(decoded.Intent),
		Text:    decoded.Answer,
		Chained: decoded.Chained,
	}
	for _, ev := range decoded.Evidence {
		answer.Evidence = append(answer.Evidence, &models.Evidence{
			Chunk: &models.Chunk{
				ID:             ev.ID,
				SourceDocument: ev.SourceDocument,
				PageNumber:     ev.PageNumber,
				Text:           ev.Snippet,
			},
			Score: 1 - ev.Relevance,
		})
	}
	return answer, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths, err = watcher.ListPDFs(cfg.Watch.Directories)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pdfchat ingest [flags] <file.pdf>... (or configure watch directories)")
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	summary, err := components.Indexer.IngestFiles(context.Background(), paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d documents (%d pages, %d chunks", summary.Documents, summary.Pages, summary.Chunks)
	if summary.Skipped > 0 {
		fmt.Printf(", %d skipped", summary.Skipped)
	}
	fmt.Println(")")
}

func runHighlight() {
	fs := flag.NewFlagSet("highlight", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	source := fs.String("source", "", "source document name (as ingested)")
	page := fs.Int("page", 1, "1-based page number")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	snippet := buildQuestion(fs.Args())
	if *source == "" || snippet == "" {
		fmt.Fprintln(os.Stderr, "Usage: pdfchat highlight -source <file.pdf> -page <n> <snippet>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	loc := locator.NewLocator(documentOpener(db))
	rects, err := loc.Locate(context.Background(), *source, *page, snippet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Highlight failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHighlights(os.Stdout, rects, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(status)
}

// documentOpener resolves a registered document name to its PDF on disk.
func documentOpener(db storage.Storage) locator.OpenFunc {
	return func(sourceDocument string) (locator.PageSearcher, error) {
		doc, err := db.GetDocument(context.Background(), sourceDocument)
		if err != nil {
			return nil, err
		}
		return extract.OpenFile(doc.Path)
	}
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Store    *chunkstore.Store
	Indexer  *indexer.Indexer
	Pipeline *agent.Pipeline
	Locator  *locator.Locator
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewOpenAIEmbedder(&cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	generator, err := llm.NewOpenAIGenerator(&cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	storeOpts := []chunkstore.StoreOption{}
	pipeOpts := []agent.PipelineOption{}
	idxOpts := []indexer.Option{}
	locOpts := []locator.Option{}
	if debug && logger != nil {
		storeOpts = append(storeOpts, chunkstore.WithLogger(logger))
		pipeOpts = append(pipeOpts, agent.WithLogger(logger))
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
		locOpts = append(locOpts, locator.WithLogger(logger))
	}

	store := chunkstore.NewStore(embedder, &cfg.Ingest, storeOpts...)
	idx := indexer.NewIndexer(store, db, cfg.Storage.VectorIndexPath, idxOpts...)
	pipeline := agent.NewPipeline(store, generator, &cfg.Retrieval, pipeOpts...)
	loc := locator.NewLocator(documentOpener(db), locOpts...)

	return &Components{
		Storage:  db,
		Embedder: embedder,
		Store:    store,
		Indexer:  idx,
		Pipeline: pipeline,
		Locator:  loc,
	}, nil
}

func printUsage() {
	fmt.Println(`pdfchat - question answering over your PDF documents

Usage:
  pdfchat server [flags]                         Start the HTTP server
  pdfchat ask [flags] <question>                 Ask a question over the corpus
  pdfchat ingest [flags] [<file.pdf>...]         Rebuild the corpus from PDFs
  pdfchat highlight -source <pdf> -page <n> <snippet>
                                                 Locate a snippet on a page
  pdfchat status [flags]                         Show corpus status
  pdfchat version                                Show version

Flags (per command):
  -config <path>   config file path (default ` + defaultConfigPath + `)
  -server <url>    server URL for ask/status; empty runs in-process
  -output <fmt>    text or json`)
}
