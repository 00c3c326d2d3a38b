// Package pdf implements the PDF side of the merge tool: validating
// inputs, reading page counts, resolving selection expressions and
// writing the merged output.
package pdf

import (
	"context"
	"fmt"

	"github.com/a3tai/mcp-pdf-merger/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-merger/internal/selection"
)

// Service handles PDF merge operations by orchestrating the PDF components
type Service struct {
	maxFileSize   int64
	validator     *Validator
	inspector     *Inspector
	merger        *Merger
	discovery     *Discovery
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64, configuredDirectory string) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		validator:     NewValidator(maxFileSize),
		inspector:     NewInspector(maxFileSize),
		merger:        NewMerger(maxFileSize),
		discovery:     NewDiscovery(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// PDFValidateFile performs validation on a merge input file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// PDFPageCount returns the number of pages in a file
func (s *Service) PDFPageCount(req PDFPageCountRequest) (*PDFPageCountResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.inspector.GetPageCount(req)
}

// PDFFileStats returns size, page count and metadata for a file
func (s *Service) PDFFileStats(req PDFFileStatsRequest) (*PDFFileStatsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.inspector.GetFileStats(req)
}

// PDFListDirectory lists merge candidates in a directory
func (s *Service) PDFListDirectory(req PDFListDirectoryRequest) (*PDFListDirectoryResult, error) {
	// If no directory specified, use configured directory
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.discovery.ListDirectory(req)
}

// PDFResolveSelection evaluates a selection expression against a file's
// page count and returns the concrete pages it picks. The page count is
// read fresh on every call.
func (s *Service) PDFResolveSelection(req PDFResolveSelectionRequest) (*PDFResolveSelectionResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	pageCount, err := s.inspector.PageCount(req.Path)
	if err != nil {
		return nil, err
	}

	pages, err := selection.Resolve(req.Selection, pageCount)
	if err != nil {
		return nil, err
	}

	return &PDFResolveSelectionResult{
		Path:      req.Path,
		Selection: req.Selection,
		PageCount: pageCount,
		Pages:     pages,
	}, nil
}

// PDFMerge merges the selected pages of the given inputs, in order, into
// a single output document
func (s *Service) PDFMerge(ctx context.Context, req PDFMergeRequest, progress ProgressFunc) (*PDFMergeResult, error) {
	for _, in := range req.Inputs {
		if err := s.pathValidator.ValidatePath(in.Path); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	if err := s.pathValidator.ValidatePath(req.OutputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.merger.Merge(ctx, req, progress)
}

// PageCount implements the merge planner's page counter
func (s *Service) PageCount(path string) (int, error) {
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return 0, fmt.Errorf("security validation failed: %w", err)
	}
	return s.inspector.PageCount(path)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}
