package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator checks that a file is a PDF the merger can actually read
type Validator struct {
	maxFileSize int64
	conf        *model.Configuration
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Validator{
		maxFileSize: maxFileSize,
		conf:        conf,
	}
}

// ValidateFile performs full validation on a merge input file. A failed
// validation is reported in the result, not as a processing error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.validateMergeInput(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failures belong in the result
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// validateMergeInput runs all checks on one input file and returns its page count
func (v *Validator) validateMergeInput(filePath string) (int, error) {
	fileInfo, err := v.statFile(filePath)
	if err != nil {
		return 0, err
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, err
	}

	// A structural pass with pdfcpu catches corrupt and encrypted
	// documents before the merge starts, so the batch fails up front
	// instead of partway through.
	if err := api.ValidateFile(filePath, v.conf); err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}

	pages, err := api.PageCountFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("cannot determine page count: %w", err)
	}
	if pages < 1 {
		return 0, fmt.Errorf("document has no pages: %s", filePath)
	}

	return pages, nil
}

func (v *Validator) statFile(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	return fileInfo, nil
}

// IsValidPDF performs a quick check to see if a file is a usable merge input
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.validateMergeInput(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
