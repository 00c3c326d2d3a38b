package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Inspector reads page counts and document properties from PDF files.
// Page counts drive selection resolution, so they are always read fresh
// from the file rather than cached.
type Inspector struct {
	maxFileSize int64
	validator   *Validator
}

// NewInspector creates a new PDF inspector with the specified constraints
func NewInspector(maxFileSize int64) *Inspector {
	return &Inspector{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// PageCount returns the number of pages in the PDF at path
func (i *Inspector) PageCount(path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot access file: %w", err)
	}

	if err := i.validator.ValidateFileInfo(path, fileInfo); err != nil {
		return 0, err
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot determine page count for %s: %w", path, err)
	}
	if pages < 1 {
		return 0, fmt.Errorf("document has no pages: %s", path)
	}

	return pages, nil
}

// GetPageCount returns the page count for a request
func (i *Inspector) GetPageCount(req PDFPageCountRequest) (*PDFPageCountResult, error) {
	pages, err := i.PageCount(req.Path)
	if err != nil {
		return nil, err
	}

	return &PDFPageCountResult{
		Path:  req.Path,
		Pages: pages,
	}, nil
}

// GetFileStats returns size, page count and document metadata for a file
func (i *Inspector) GetFileStats(req PDFFileStatsRequest) (*PDFFileStatsResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := i.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	pages, err := i.PageCount(req.Path)
	if err != nil {
		return nil, err
	}

	result := &PDFFileStatsResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        pages,
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
	}

	i.extractMetadata(req.Path, result)

	return result, nil
}

// extractMetadata fills in document info entries where present. Metadata
// is cosmetic for a merge tool, so any failure here is swallowed.
func (i *Inspector) extractMetadata(path string, result *PDFFileStatsResult) {
	defer func() {
		// ledongthuc/pdf can panic on malformed trailer dictionaries
		_ = recover()
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		result.Title = strings.TrimSpace(title.String())
	}
	if author := info.Key("Author"); !author.IsNull() {
		result.Author = strings.TrimSpace(author.String())
	}
	if subject := info.Key("Subject"); !subject.IsNull() {
		result.Subject = strings.TrimSpace(subject.String())
	}
	if producer := info.Key("Producer"); !producer.IsNull() {
		result.Producer = strings.TrimSpace(producer.String())
	}
	if created := info.Key("CreationDate"); !created.IsNull() {
		result.CreatedDate = strings.TrimSpace(created.String())
	}
}
