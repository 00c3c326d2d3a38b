package pdf

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages,omitempty"`
	ModifiedTime string `json:"modified_time"`
}

// MergeInput is one source document together with the concrete, already
// resolved 1-based page indices to copy from it, in output order.
type MergeInput struct {
	Path  string `json:"path"`
	Pages []int  `json:"pages"`
}

// Sort orders supported when listing input candidates
const (
	SortNone         = "none"
	SortAlphabetical = "alpha"
	SortNumeric      = "numeric"
)

// Request Types

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFPageCountRequest represents a request for a file's page count
type PDFPageCountRequest struct {
	Path string `json:"path"`
}

// PDFFileStatsRequest represents a request for file statistics
type PDFFileStatsRequest struct {
	Path string `json:"path"`
}

// PDFListDirectoryRequest represents a request to list merge candidates in a directory
type PDFListDirectoryRequest struct {
	Directory string `json:"directory"`
	SortOrder string `json:"sort_order"` // "none", "alpha" or "numeric"
}

// PDFResolveSelectionRequest represents a request to resolve a selection
// expression against a file's page count
type PDFResolveSelectionRequest struct {
	Path      string `json:"path"`
	Selection string `json:"selection"`
}

// PDFMergeRequest represents a request to merge pages from multiple files
// into a single output document. Inputs are assembled in slice order.
type PDFMergeRequest struct {
	Inputs     []MergeInput `json:"inputs"`
	OutputPath string       `json:"output_path"`
	Overwrite  bool         `json:"overwrite"`
}

// Response Types

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// PDFPageCountResult represents the result of a page count operation
type PDFPageCountResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
}

// PDFFileStatsResult represents the result of a file stats operation
type PDFFileStatsResult struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	CreatedDate  string `json:"created_date,omitempty"`
	ModifiedDate string `json:"modified_date"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
}

// PDFResolveSelectionResult represents the concrete page indices a
// selection expression picked from a file
type PDFResolveSelectionResult struct {
	Path      string `json:"path"`
	Selection string `json:"selection"`
	PageCount int    `json:"page_count"`
	Pages     []int  `json:"pages"`
}

// PDFListDirectoryResult represents the result of a directory listing
type PDFListDirectoryResult struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
	Directory  string     `json:"directory"`
	SortOrder  string     `json:"sort_order"`
}

// PDFMergeResult represents the result of a merge operation
type PDFMergeResult struct {
	OutputPath  string `json:"output_path"`
	InputCount  int    `json:"input_count"`
	PageCount   int    `json:"page_count"`
	OutputSize  int64  `json:"output_size"`
	ElapsedMsec int64  `json:"elapsed_msec"`
}
