package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var firstNumber = regexp.MustCompile(`\d+`)

// Discovery finds merge candidates in a directory and orders them the
// way the merge plan will consume them.
type Discovery struct {
	maxFileSize int64
	validator   *Validator
}

// NewDiscovery creates a new input discovery handler with the specified constraints
func NewDiscovery(maxFileSize int64) *Discovery {
	return &Discovery{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// ListDirectory returns the PDF files directly inside req.Directory,
// ordered per req.SortOrder. Subdirectories are not descended into;
// merge inputs are a flat, explicit list.
func (d *Discovery) ListDirectory(req PDFListDirectoryRequest) (*PDFListDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	sortOrder := req.SortOrder
	if sortOrder == "" {
		sortOrder = SortNone
	}
	if sortOrder != SortNone && sortOrder != SortAlphabetical && sortOrder != SortNumeric {
		return nil, fmt.Errorf("unknown sort order: %s", sortOrder)
	}

	absDirectory, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	entries, err := os.ReadDir(absDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
		}
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(absDirectory, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		// Skip files the merger would reject, but keep scanning
		if err := d.validator.ValidateFileInfo(path, info); err != nil {
			continue
		}

		fileInfo := FileInfo{
			Path:         path,
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		}
		if pages, err := api.PageCountFile(path); err == nil {
			fileInfo.Pages = pages
		}

		files = append(files, fileInfo)
	}

	SortFiles(files, sortOrder)

	return &PDFListDirectoryResult{
		Files:      files,
		TotalCount: len(files),
		Directory:  absDirectory,
		SortOrder:  sortOrder,
	}, nil
}

// SortFiles orders files in place according to sortOrder. SortNone keeps
// the given order. Sorts are stable so equal keys keep their relative
// positions.
func SortFiles(files []FileInfo, sortOrder string) {
	switch sortOrder {
	case SortAlphabetical:
		sort.SliceStable(files, func(i, j int) bool {
			return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
		})
	case SortNumeric:
		sort.SliceStable(files, func(i, j int) bool {
			return extractNumber(files[i].Name) < extractNumber(files[j].Name)
		})
	}
}

// extractNumber returns the first integer embedded in a filename, or 0
// when the name carries none. "chapter-12.pdf" sorts by 12.
func extractNumber(name string) int {
	match := firstNumber.FindString(name)
	if match == "" {
		return 0
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
