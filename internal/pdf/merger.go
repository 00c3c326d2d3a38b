package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ProgressFunc receives per-file progress while a merge is running.
// fileIndex is the zero-based index of the input about to be processed.
type ProgressFunc func(fileIndex, fileCount int, path string)

// Merger assembles selected pages from multiple PDF files into one
// output document using pdfcpu.
type Merger struct {
	maxFileSize int64
	validator   *Validator
	conf        *model.Configuration
}

// NewMerger creates a new PDF merger with the specified constraints
func NewMerger(maxFileSize int64) *Merger {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Merger{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		conf:        conf,
	}
}

// Merge copies the requested pages out of each input in order and writes
// a single merged document to req.OutputPath. The output appears
// atomically: it is assembled in a staging directory and renamed into
// place only after every input succeeded. Any failure leaves no partial
// output behind.
func (m *Merger) Merge(ctx context.Context, req PDFMergeRequest, progress ProgressFunc) (*PDFMergeResult, error) {
	start := time.Now()

	outputPath, err := m.prepareOutputPath(req)
	if err != nil {
		return nil, err
	}

	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("no input files to merge")
	}
	for idx, in := range req.Inputs {
		if len(in.Pages) == 0 {
			return nil, fmt.Errorf("input %d (%s) selects no pages", idx+1, in.Path)
		}
	}

	stagingDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".pdfmerge-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	collected := make([]string, 0, len(req.Inputs))
	totalPages := 0

	for idx, in := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("merge cancelled: %w", err)
		}

		if progress != nil {
			progress(idx, len(req.Inputs), in.Path)
		}

		part := filepath.Join(stagingDir, fmt.Sprintf("part-%04d.pdf", idx))
		if err := m.collectPages(in, part); err != nil {
			return nil, fmt.Errorf("error processing %s: %w", filepath.Base(in.Path), err)
		}

		collected = append(collected, part)
		totalPages += len(in.Pages)
	}

	staged := filepath.Join(stagingDir, "merged.pdf")
	if len(collected) == 1 {
		staged = collected[0]
	} else if err := api.MergeCreateFile(collected, staged, false, m.conf); err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}

	if err := os.Rename(staged, outputPath); err != nil {
		return nil, fmt.Errorf("cannot write output file: %w", err)
	}

	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("cannot stat output file: %w", err)
	}

	return &PDFMergeResult{
		OutputPath:  outputPath,
		InputCount:  len(req.Inputs),
		PageCount:   totalPages,
		OutputSize:  outInfo.Size(),
		ElapsedMsec: time.Since(start).Milliseconds(),
	}, nil
}

// collectPages validates one input and writes its selected pages, in
// selection order, to partPath.
func (m *Merger) collectPages(in MergeInput, partPath string) error {
	pages, err := m.validator.validateMergeInput(in.Path)
	if err != nil {
		return err
	}

	selected := make([]string, 0, len(in.Pages))
	for _, p := range in.Pages {
		if p < 1 || p > pages {
			return fmt.Errorf("page %d is outside the document (1-%d)", p, pages)
		}
		selected = append(selected, strconv.Itoa(p))
	}

	if err := api.CollectFile(in.Path, partPath, selected, m.conf); err != nil {
		return fmt.Errorf("cannot collect pages: %w", err)
	}

	return nil
}

// NormalizeOutputPath returns the canonical spelling of a merge output
// path: absolute, cleaned, with a .pdf extension appended when missing.
// Every component that keys on the output path must use this spelling,
// so two plans naming the same file cannot slip past each other.
func NormalizeOutputPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}

	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		path += ".pdf"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve output path: %w", err)
	}

	return absPath, nil
}

// prepareOutputPath normalizes and checks the output location
func (m *Merger) prepareOutputPath(req PDFMergeRequest) (string, error) {
	absPath, err := NormalizeOutputPath(req.OutputPath)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(absPath); err == nil {
		if !req.Overwrite {
			return "", fmt.Errorf("output file already exists: %s", absPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("cannot access output path: %w", err)
	}

	if info, err := os.Stat(filepath.Dir(absPath)); err != nil {
		return "", fmt.Errorf("output directory does not exist: %s", filepath.Dir(absPath))
	} else if !info.IsDir() {
		return "", fmt.Errorf("output directory is not a directory: %s", filepath.Dir(absPath))
	}

	return absPath, nil
}
