package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{
			name:      "valid directory",
			dir:       tempDir,
			wantError: false,
		},
		{
			name:      "empty directory",
			dir:       "",
			wantError: true,
		},
		{
			name: "non-existent directory",
			dir:  filepath.Join(tempDir, "not-created-yet"),
			// Allowed: the directory is created later by config validation
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if validator == nil {
				t.Error("Expected validator but got nil")
			}
		})
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	if err := os.Mkdir(subDir, 0o750); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	validFile := filepath.Join(tempDir, "valid.pdf")
	subFile := filepath.Join(subDir, "sub.pdf")
	for _, path := range []string{validFile, subFile} {
		if err := os.WriteFile(path, []byte("test"), 0o600); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
		{
			name:      "file in root",
			path:      validFile,
			wantError: false,
		},
		{
			name:      "file in subdirectory",
			path:      subFile,
			wantError: false,
		},
		{
			name:      "file outside directory",
			path:      "/etc/passwd",
			wantError: true,
		},
		{
			name:      "parent directory traversal",
			path:      filepath.Join(tempDir, "..", "outside.pdf"),
			wantError: true,
		},
		{
			name:      "path with current-dir component",
			path:      filepath.Join(tempDir, ".", "valid.pdf"),
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestPathValidator_ValidatePathMissingDirectory(t *testing.T) {
	// When the configured directory does not exist yet, validation is a
	// no-op: the directory gets created by config validation at startup.
	missing := filepath.Join(t.TempDir(), "not-created-yet")
	validator, err := NewPathValidator(missing)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if err := validator.ValidatePath("/anywhere/file.pdf"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPathValidator_IsPathWithinDirectory(t *testing.T) {
	tempDir := t.TempDir()

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	targetFile := filepath.Join(tempDir, "target.pdf")
	insideLink := filepath.Join(tempDir, "inside-link.pdf")
	if err := os.WriteFile(targetFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create target file: %v", err)
	}
	symlinksSupported := true
	if err := os.Symlink(targetFile, insideLink); err != nil {
		symlinksSupported = false
		t.Logf("Symlinks not supported, skipping symlink cases: %v", err)
	}

	outsideDir := t.TempDir()
	outsideFile := filepath.Join(outsideDir, "secret.pdf")
	escapeLink := filepath.Join(tempDir, "escape-link.pdf")
	if symlinksSupported {
		if err := os.WriteFile(outsideFile, []byte("secret"), 0o600); err != nil {
			t.Fatalf("Failed to create outside file: %v", err)
		}
		if err := os.Symlink(outsideFile, escapeLink); err != nil {
			t.Fatalf("Failed to create escape symlink: %v", err)
		}
	}

	tests := []struct {
		name        string
		path        string
		expected    bool
		needSymlink bool
	}{
		{
			name:     "path within directory",
			path:     filepath.Join(tempDir, "test.pdf"),
			expected: true,
		},
		{
			name:     "directory itself",
			path:     tempDir,
			expected: true,
		},
		{
			name:     "path outside directory",
			path:     "/tmp/outside.pdf",
			expected: false,
		},
		{
			name:     "parent directory traversal",
			path:     filepath.Join(tempDir, "..", "outside.pdf"),
			expected: false,
		},
		{
			name:        "symlink to file within directory",
			path:        insideLink,
			expected:    true,
			needSymlink: true,
		},
		{
			name:        "symlink escaping the directory",
			path:        escapeLink,
			expected:    false,
			needSymlink: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.needSymlink && !symlinksSupported {
				t.Skip("symlinks not supported on this platform")
			}
			result, err := validator.IsPathWithinDirectory(tt.path)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %v but got %v", tt.expected, result)
			}
		})
	}
}

func TestPathValidator_NormalizePath(t *testing.T) {
	tempDir := t.TempDir()

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
		{
			name:      "relative path",
			path:      "test.pdf",
			wantError: false,
		},
		{
			name:      "absolute path within directory",
			path:      filepath.Join(tempDir, "test.pdf"),
			wantError: false,
		},
		{
			name:      "relative path escaping directory",
			path:      "../outside.pdf",
			wantError: true,
		},
		{
			name:      "relative path with current-dir component",
			path:      "./test.pdf",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.NormalizePath(tt.path)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(result) {
				t.Errorf("Expected absolute path but got: %s", result)
			}
			if !strings.HasPrefix(result, tempDir) {
				t.Errorf("Expected path within %s but got: %s", tempDir, result)
			}
		})
	}
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	if err := os.Mkdir(subDir, 0o750); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "valid subdirectory",
			path:      subDir,
			wantError: false,
		},
		{
			name:      "file instead of directory",
			path:      testFile,
			wantError: true,
		},
		{
			name: "non-existent subdirectory",
			path: filepath.Join(tempDir, "nonexistent"),
			// Allowed: it may be created before first use
			wantError: false,
		},
		{
			name:      "directory outside bounds",
			path:      "/tmp",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDirectory(tt.path)
			if tt.wantError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestPathValidator_GetConfiguredDirectory(t *testing.T) {
	tempDir := t.TempDir()

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if got := validator.GetConfiguredDirectory(); got != tempDir {
		t.Errorf("Expected %s but got %s", tempDir, got)
	}
}
