// Package mcp exposes the merge operations as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-merger/internal/config"
	"github.com/a3tai/mcp-pdf-merger/internal/merge"
	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	runner     *merge.Runner
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		runner:     merge.NewRunner(pdfService, pdfService),
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfMergeTool := mcp.NewTool(
		"pdf_merge",
		mcp.WithDescription("Merge pages from multiple PDF files into a single output document. "+
			"Each file may carry a page selection such as '1,3,5-7' (include), '-1' (exclude page 1) "+
			"or 'all'; files are assembled in the order given."),
		mcp.WithArray("files",
			mcp.Required(),
			mcp.Description("Input files in output order. Each entry is either a path string or "+
				"an object {\"path\": ..., \"selection\": ...}"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Path for the merged output PDF"),
		),
		mcp.WithString("default_selection",
			mcp.Description("Selection applied to files without their own (default: all pages)"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Overwrite the output file if it already exists"),
		),
	)
	s.mcpServer.AddTool(pdfMergeTool, s.handlePDFMerge)

	pdfResolveSelectionTool := mcp.NewTool(
		"pdf_resolve_selection",
		mcp.WithDescription("Evaluate a page selection expression against a PDF and return the "+
			"exact pages it picks, without merging anything"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("selection",
			mcp.Required(),
			mcp.Description("Selection expression, e.g. '1,3,5-7', '-1', '-1-3', 'all'"),
		),
	)
	s.mcpServer.AddTool(pdfResolveSelectionTool, s.handlePDFResolveSelection)

	pdfPageCountTool := mcp.NewTool(
		"pdf_page_count",
		mcp.WithDescription("Get the number of pages in a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfPageCountTool, s.handlePDFPageCount)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Check whether a file is a PDF the merger can read"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfListDirectoryTool := mcp.NewTool(
		"pdf_list_directory",
		mcp.WithDescription("List PDF merge candidates in a directory, optionally sorted "+
			"alphabetically or by the first number in each filename"),
		mcp.WithString("directory",
			mcp.Description("Directory to list (uses the configured directory if empty)"),
		),
		mcp.WithString("sort",
			mcp.Description("Ordering: 'none', 'alpha' or 'numeric'"),
		),
	)
	s.mcpServer.AddTool(pdfListDirectoryTool, s.handlePDFListDirectory)

	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription("Get server information, available tools and selection syntax guidance"),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions

func (s *Server) handlePDFMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	items, err := parseFileArguments(args["files"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	defaultSelection := s.config.DefaultSelection
	if sel, ok := args["default_selection"].(string); ok && sel != "" {
		defaultSelection = sel
	}

	overwrite := s.config.Overwrite
	if ow, ok := args["overwrite"].(bool); ok {
		overwrite = ow
	}

	plan, err := merge.NewPlan(items, output, defaultSelection, overwrite)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.runner.Run(ctx, plan, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Successfully merged %d file(s) into %s\n", result.InputCount, result.OutputPath)
	responseText += fmt.Sprintf("Pages: %d\n", result.PageCount)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.OutputSize)

	return mcp.NewToolResultText(responseText), nil
}

// parseFileArguments accepts the "files" tool argument: an array whose
// entries are path strings or {path, selection} objects
func parseFileArguments(raw any) ([]merge.Item, error) {
	entries, ok := raw.([]any)
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("files must be a non-empty array")
	}

	items := make([]merge.Item, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("files[%d]: path cannot be empty", i)
			}
			items = append(items, merge.Item{Path: v})
		case map[string]any:
			path, _ := v["path"].(string)
			if strings.TrimSpace(path) == "" {
				return nil, fmt.Errorf("files[%d]: path cannot be empty", i)
			}
			sel, _ := v["selection"].(string)
			items = append(items, merge.Item{Path: path, Selection: sel})
		default:
			return nil, fmt.Errorf("files[%d]: expected a path string or {path, selection} object", i)
		}
	}

	return items, nil
}

func (s *Server) handlePDFResolveSelection(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := request.RequireString("selection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFResolveSelectionRequest{Path: path, Selection: sel}
	result, err := s.pdfService.PDFResolveSelection(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Selection %q against %s (%d pages)\n",
		result.Selection, filepath.Base(result.Path), result.PageCount)
	responseText += fmt.Sprintf("Resolved pages (%d): %s\n", len(result.Pages), formatPages(result.Pages))

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFPageCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFPageCountRequest{Path: path}
	result, err := s.pdfService.PDFPageCount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s has %d page(s)", result.Path, result.Pages)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and mergeable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFListDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	sortOrder := s.config.SortOrder
	if so, ok := args["sort"].(string); ok && so != "" {
		sortOrder = so
	}

	req := pdf.PDFListDirectoryRequest{
		Directory: directory,
		SortOrder: sortOrder,
	}

	result, err := s.pdfService.PDFListDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", result.Directory)), nil
	}

	return mcp.NewToolResultText(s.formatListDirectoryResult(result)), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods

func (s *Server) formatListDirectoryResult(result *pdf.PDFListDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SortOrder != pdf.SortNone {
		text += fmt.Sprintf("Sort order: %s\n", result.SortOrder)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		if file.Pages > 0 {
			text += fmt.Sprintf("   Pages: %d\n", file.Pages)
		}
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("%s v%s - PDF Merge Server\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Configured directory: %s\n", s.config.PDFDirectory)
	text += fmt.Sprintf("Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Default selection: %s\n", s.config.DefaultSelection)

	text += `
Selection syntax (1-based page numbers):
  empty or "all"  every page
  1,3,5-7         include pages 1, 3 and 5 through 7
  -1,-3           every page except 1 and 3
  -1-3            every page except 1 through 3
Include tokens define the candidate pages; exclude tokens always prune
them. The resolved pages are emitted in ascending order.

Workflow:
1. DISCOVER: use 'pdf_list_directory' to find candidate files, sorted
   the way they should be merged ('alpha' or 'numeric').
2. CHECK: use 'pdf_validate_file' and 'pdf_page_count' on each input.
3. PREVIEW: use 'pdf_resolve_selection' to see exactly which pages a
   selection expression picks before merging.
4. MERGE: call 'pdf_merge' with the files in output order. One invalid
   file or selection fails the whole merge; no partial output is written.
`

	return text
}

// Run starts the MCP server over stdio
func (s *Server) Run(_ context.Context) error {
	log.Debug().
		Str("directory", s.config.PDFDirectory).
		Msg("starting PDF merge MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func formatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
