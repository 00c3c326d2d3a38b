package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
)

const (
	// Mode constants
	ModeStdio = "stdio"
	ModeCLI   = "cli"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultSelection   = "all"
	DefaultSortOrder   = pdf.SortNone

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF merge tool
type Config struct {
	// Run mode: "stdio" serves MCP tools, "cli" runs one merge and exits
	Mode string

	// Merge configuration
	PDFDirectory     string   // directory the tool is allowed to operate in
	OutputPath       string   // merged output file (cli mode)
	Inputs           []string // input specs, "path" or "path=selection" (cli mode)
	DefaultSelection string   // selection applied to inputs without their own
	SortOrder        string   // input ordering: "none", "alpha" or "numeric"
	Overwrite        bool     // replace an existing output file
	DryRun           bool     // resolve and report, but do not write output

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFile     string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		PDFDirectory:     currentDir,
		DefaultSelection: DefaultSelection,
		SortOrder:        DefaultSortOrder,
		Version:          "1.0.0",
		ServerName:       "mcp-pdf-merger",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("MCP_PDF_MERGER")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("output", cfg.OutputPath)
	viper.SetDefault("select", cfg.DefaultSelection)
	viper.SetDefault("sort", cfg.SortOrder)
	viper.SetDefault("overwrite", cfg.Overwrite)
	viper.SetDefault("dryrun", cfg.DryRun)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logfile", cfg.LogFile)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'cli' for a one-shot merge")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("output", cfg.OutputPath, "Output file for the merged PDF (cli mode)")
	pflag.StringSlice("input", nil, "Input PDF, optionally with selection as path=expr (repeatable, cli mode)")
	pflag.String("select", cfg.DefaultSelection,
		"Default page selection for inputs without one, e.g. 'all', '1,3,5-7', '-1'")
	pflag.String("sort", cfg.SortOrder, "Input ordering: 'none', 'alpha' or 'numeric'")
	pflag.Bool("overwrite", cfg.Overwrite, "Overwrite the output file if it exists")
	pflag.Bool("dryrun", cfg.DryRun, "Resolve selections and report, but do not merge")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logfile", cfg.LogFile, "Log file path (rotated); empty logs to stderr only")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("output", pflag.Lookup("output"))
	_ = viper.BindPFlag("input", pflag.Lookup("input"))
	_ = viper.BindPFlag("select", pflag.Lookup("select"))
	_ = viper.BindPFlag("sort", pflag.Lookup("sort"))
	_ = viper.BindPFlag("overwrite", pflag.Lookup("overwrite"))
	_ = viper.BindPFlag("dryrun", pflag.Lookup("dryrun"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("logfile", pflag.Lookup("logfile"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Merger - merge and rearrange PDF files with page selection\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSelection syntax (1-based pages):\n")
		fmt.Fprintf(os.Stderr, "  all or empty   every page\n")
		fmt.Fprintf(os.Stderr, "  1,3,5-7        pages 1, 3 and 5 through 7\n")
		fmt.Fprintf(os.Stderr, "  -1,-3          every page except 1 and 3\n")
		fmt.Fprintf(os.Stderr, "  -1-3           every page except 1 through 3\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # MCP stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=cli --input=a.pdf --input=b.pdf --output=out.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=cli --input='a.pdf=-1' --input=b.pdf --output=out.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=cli --dir=/path/to/pdfs --sort=numeric --output=out.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_MERGER_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_MERGER_DIR          PDF directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_MERGER_SELECT       Default page selection\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_MERGER_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_MERGER_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.OutputPath = viper.GetString("output")
	cfg.Inputs = viper.GetStringSlice("input")
	cfg.DefaultSelection = viper.GetString("select")
	cfg.SortOrder = viper.GetString("sort")
	cfg.Overwrite = viper.GetBool("overwrite")
	cfg.DryRun = viper.GetBool("dryrun")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFile = viper.GetString("logfile")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeCLI {
		return errors.New("mode must be either 'stdio' or 'cli'")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.Mode == ModeCLI && c.OutputPath == "" && !c.DryRun {
		return errors.New("cli mode requires an output path")
	}

	switch c.SortOrder {
	case pdf.SortNone, pdf.SortAlphabetical, pdf.SortNumeric:
	default:
		return fmt.Errorf("invalid sort order: %s (must be one of: none, alpha, numeric)", c.SortOrder)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, OutputPath: %s, DefaultSelection: %s, "+
		"SortOrder: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.PDFDirectory, c.OutputPath, c.DefaultSelection, c.SortOrder, c.LogLevel, c.MaxFileSize)
}

// IsCLIMode returns true if the tool runs a one-shot merge
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsStdioMode returns true if the tool serves MCP over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
