package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMerger_MergeRejectsBadRequests(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "existing.pdf")
	if err := os.WriteFile(existing, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("Failed to create existing file: %v", err)
	}

	input := MergeInput{Path: filepath.Join(tempDir, "in.pdf"), Pages: []int{1}}
	merger := NewMerger(testMaxFileSize)

	tests := []struct {
		name      string
		req       PDFMergeRequest
		wantError string
	}{
		{
			name:      "empty output path",
			req:       PDFMergeRequest{Inputs: []MergeInput{input}},
			wantError: "output path cannot be empty",
		},
		{
			name: "no inputs",
			req: PDFMergeRequest{
				OutputPath: filepath.Join(tempDir, "out.pdf"),
			},
			wantError: "no input files",
		},
		{
			name: "input selecting no pages",
			req: PDFMergeRequest{
				Inputs: []MergeInput{
					input,
					{Path: filepath.Join(tempDir, "second.pdf")},
				},
				OutputPath: filepath.Join(tempDir, "out.pdf"),
			},
			wantError: "selects no pages",
		},
		{
			name: "output exists without overwrite",
			req: PDFMergeRequest{
				Inputs:     []MergeInput{input},
				OutputPath: existing,
			},
			wantError: "already exists",
		},
		{
			name: "output directory missing",
			req: PDFMergeRequest{
				Inputs:     []MergeInput{input},
				OutputPath: filepath.Join(tempDir, "missing-dir", "out.pdf"),
			},
			wantError: "output directory does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := merger.Merge(context.Background(), tt.req, nil)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantError, err)
			}
		})
	}
}

func TestMerger_MergeHonorsCancellation(t *testing.T) {
	tempDir := t.TempDir()

	inputPath := filepath.Join(tempDir, "in.pdf")
	if err := os.WriteFile(inputPath, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("Failed to create input file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	merger := NewMerger(testMaxFileSize)
	_, err := merger.Merge(ctx, PDFMergeRequest{
		Inputs:     []MergeInput{{Path: inputPath, Pages: []int{1}}},
		OutputPath: filepath.Join(tempDir, "out.pdf"),
	}, nil)
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("Expected cancellation error, got: %v", err)
	}
}

func TestMerger_MergeFailsOnCorruptInputWithoutPartialOutput(t *testing.T) {
	tempDir := t.TempDir()

	garbage := filepath.Join(tempDir, "garbage.pdf")
	if err := os.WriteFile(garbage, []byte("not a pdf at all"), 0o600); err != nil {
		t.Fatalf("Failed to create garbage input: %v", err)
	}

	outputPath := filepath.Join(tempDir, "out.pdf")
	merger := NewMerger(testMaxFileSize)

	var updates int
	progress := func(fileIndex, fileCount int, path string) {
		updates++
	}

	_, err := merger.Merge(context.Background(), PDFMergeRequest{
		Inputs:     []MergeInput{{Path: garbage, Pages: []int{1}}},
		OutputPath: outputPath,
	}, progress)
	if err == nil {
		t.Fatal("Expected error for corrupt input")
	}
	if !strings.Contains(err.Error(), "garbage.pdf") {
		t.Errorf("Expected error naming the failing input, got: %v", err)
	}

	// A failed merge leaves neither the output nor a staging directory behind
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("Expected no output file after failed merge")
	}
	entries, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("Failed to read temp dir: %v", readErr)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".pdfmerge-") {
			t.Errorf("Staging directory %s left behind", entry.Name())
		}
	}

	if updates != 1 {
		t.Errorf("Expected one progress update before the failure, got %d", updates)
	}
}

func TestNormalizeOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		want      string
		wantError bool
	}{
		{
			name: "extension appended",
			path: "/docs/out",
			want: "/docs/out.pdf",
		},
		{
			name: "extension kept",
			path: "/docs/out.pdf",
			want: "/docs/out.pdf",
		},
		{
			name: "uppercase extension kept",
			path: "/docs/OUT.PDF",
			want: "/docs/OUT.PDF",
		},
		{
			name: "parent components cleaned",
			path: "/docs/../docs/out.pdf",
			want: "/docs/out.pdf",
		},
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOutputPath(tt.path)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMerger_PrepareOutputPath(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "existing.pdf")
	if err := os.WriteFile(existing, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("Failed to create existing file: %v", err)
	}

	merger := NewMerger(testMaxFileSize)

	tests := []struct {
		name      string
		req       PDFMergeRequest
		want      string
		wantError bool
	}{
		{
			name: "pdf extension appended",
			req:  PDFMergeRequest{OutputPath: filepath.Join(tempDir, "merged")},
			want: filepath.Join(tempDir, "merged.pdf"),
		},
		{
			name: "explicit extension kept",
			req:  PDFMergeRequest{OutputPath: filepath.Join(tempDir, "merged.pdf")},
			want: filepath.Join(tempDir, "merged.pdf"),
		},
		{
			name: "existing output with overwrite",
			req:  PDFMergeRequest{OutputPath: existing, Overwrite: true},
			want: existing,
		},
		{
			name:      "existing output without overwrite",
			req:       PDFMergeRequest{OutputPath: existing},
			wantError: true,
		},
		{
			name:      "empty output path",
			req:       PDFMergeRequest{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := merger.prepareOutputPath(tt.req)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
