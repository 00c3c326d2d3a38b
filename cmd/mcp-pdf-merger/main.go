package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-merger/internal/config"
	"github.com/a3tai/mcp-pdf-merger/internal/logger"
	"github.com/a3tai/mcp-pdf-merger/internal/mcp"
	"github.com/a3tai/mcp-pdf-merger/internal/merge"
	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if cfg.IsDebug() {
		log.Debug().Str("config", cfg.String()).Msg("starting")
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create PDF service")
	}

	// Cancel on SIGINT/SIGTERM so an in-flight merge stops cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsCLIMode() {
		runCLIMode(ctx, cfg, pdfService)
		return
	}

	runStdioMode(ctx, cfg, pdfService)
}

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) error {
	return logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Pretty: cfg.IsCLIMode(),
		// In stdio mode stdout carries the MCP protocol; keep the
		// console silent unless debugging
		Quiet: cfg.IsStdioMode() && !cfg.IsDebug(),
	})
}

// runStdioMode serves MCP tools over stdio until the parent closes the stream
func runStdioMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service) {
	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create MCP server")
	}

	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

// runCLIMode performs a one-shot merge from the command line flags
func runCLIMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service) {
	items, err := collectInputs(cfg, pdfService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.DryRun {
		runDryRun(items, cfg, pdfService)
		return
	}

	plan, err := merge.NewPlan(items, cfg.OutputPath, cfg.DefaultSelection, cfg.Overwrite)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runner := merge.NewRunner(pdfService, pdfService)
	result, err := runner.Run(ctx, plan, func(p merge.Progress) {
		if p.FileCount > 0 && p.FileIndex < p.FileCount {
			fmt.Printf("[%d/%d] %s\n", p.FileIndex+1, p.FileCount, filepath.Base(p.Path))
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Merge failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully merged %d file(s) into %s (%d pages, %d bytes)\n",
		result.InputCount, result.OutputPath, result.PageCount, result.OutputSize)
}

// runDryRun resolves every selection and reports the outcome without merging
func runDryRun(items []merge.Item, cfg *config.Config, pdfService *pdf.Service) {
	plan, err := merge.NewPlan(items, "dry-run.pdf", cfg.DefaultSelection, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resolved, err := merge.Resolve(plan, pdfService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, item := range resolved.Items {
		fmt.Printf("%d. %s (%d pages) selection %q -> %d page(s)\n",
			i+1, filepath.Base(item.Path), item.PageCount, item.Selection, len(item.Pages))
	}
	fmt.Printf("Total: %d page(s) from %d file(s)\n", resolved.TotalPages, len(resolved.Items))
}

// collectInputs builds the ordered input list from --input specs, or by
// listing the configured directory when no explicit inputs were given
func collectInputs(cfg *config.Config, pdfService *pdf.Service) ([]merge.Item, error) {
	if len(cfg.Inputs) > 0 {
		return parseInputSpecs(cfg.Inputs)
	}

	listing, err := pdfService.PDFListDirectory(pdf.PDFListDirectoryRequest{
		Directory: cfg.PDFDirectory,
		SortOrder: cfg.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	if listing.TotalCount == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", listing.Directory)
	}

	items := make([]merge.Item, len(listing.Files))
	for i, f := range listing.Files {
		items[i] = merge.Item{Path: f.Path}
	}
	return items, nil
}

// parseInputSpecs parses --input values of the form "path" or "path=selection"
func parseInputSpecs(specs []string) ([]merge.Item, error) {
	items := make([]merge.Item, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			return nil, fmt.Errorf("input spec cannot be empty")
		}

		path, sel := spec, ""
		if i := strings.Index(spec, "="); i >= 0 {
			path, sel = strings.TrimSpace(spec[:i]), strings.TrimSpace(spec[i+1:])
		}
		if path == "" {
			return nil, fmt.Errorf("input spec %q has no path", spec)
		}

		items = append(items, merge.Item{Path: path, Selection: sel})
	}
	return items, nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Merger\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
