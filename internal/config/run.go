// Package config holds the run configuration shared by the irr subcommands.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

const (
	DefaultDataDir           = "data"
	DefaultOutputDir         = "output"
	DefaultListenAddr        = "localhost:8090"
	DefaultReadHeaderTimeout = 5 * time.Second

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// RunConfig configures an analysis run and the archive server. Every field
// is optional; the Get* methods supply defaults, so partial files are safe.
// Command-line flags override values loaded from a file.
type RunConfig struct {
	DataDir   *string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	InputFile *string `json:"input_file,omitempty" yaml:"input_file,omitempty"`
	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	IDColumn  *string `json:"id_column,omitempty" yaml:"id_column,omitempty"`

	// DBPath enables the sqlite run archive when set.
	DBPath *string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	Charts *bool `json:"charts,omitempty" yaml:"charts,omitempty"`
	Plot   *bool `json:"plot,omitempty" yaml:"plot,omitempty"`

	ListenAddr        *string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	ReadHeaderTimeout *string `json:"read_header_timeout,omitempty" yaml:"read_header_timeout,omitempty"` // duration string like "5s"

	// Vignettes replaces the compiled-in classification when non-empty.
	Vignettes []vignette.Vignette `json:"vignettes,omitempty" yaml:"vignettes,omitempty"`
}

// Load reads a RunConfig from a .json, .yaml or .yml file and validates it.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *RunConfig) Validate() error {
	if c.IDColumn != nil && strings.TrimSpace(*c.IDColumn) == "" {
		return fmt.Errorf("id_column must not be blank")
	}
	if c.ListenAddr != nil {
		if _, _, err := net.SplitHostPort(*c.ListenAddr); err != nil {
			return fmt.Errorf("invalid listen_addr '%s': %w", *c.ListenAddr, err)
		}
	}
	if c.ReadHeaderTimeout != nil && *c.ReadHeaderTimeout != "" {
		d, err := time.ParseDuration(*c.ReadHeaderTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_header_timeout '%s': %w", *c.ReadHeaderTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("read_header_timeout must be positive, got %s", d)
		}
	}
	if len(c.Vignettes) > 0 {
		if _, err := vignette.NewTable(c.Vignettes); err != nil {
			return fmt.Errorf("invalid vignettes: %w", err)
		}
		for _, v := range c.Vignettes {
			if v.QuestionID > vignette.MaxQuestionID {
				return fmt.Errorf("invalid vignettes: question %d exceeds the survey's %d questions", v.QuestionID, vignette.MaxQuestionID)
			}
		}
	}
	return nil
}

// GetDataDir returns the data directory or "data".
func (c *RunConfig) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return DefaultDataDir
	}
	return *c.DataDir
}

// GetInputFile returns the survey export path, defaulting to
// survey_results.csv inside the data directory.
func (c *RunConfig) GetInputFile() string {
	if c.InputFile == nil || *c.InputFile == "" {
		return filepath.Join(c.GetDataDir(), survey.DefaultFileName)
	}
	return *c.InputFile
}

// GetOutputDir returns the report directory or "output".
func (c *RunConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetIDColumn returns the physician identifier column.
func (c *RunConfig) GetIDColumn() string {
	if c.IDColumn == nil {
		return survey.DefaultIDColumn
	}
	return strings.TrimSpace(*c.IDColumn)
}

// GetDBPath returns the archive path; empty disables archiving.
func (c *RunConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetCharts reports whether the HTML chart page is written. Default true.
func (c *RunConfig) GetCharts() bool {
	if c.Charts == nil {
		return true
	}
	return *c.Charts
}

// GetPlot reports whether the kappa PNG is written. Default false.
func (c *RunConfig) GetPlot() bool {
	if c.Plot == nil {
		return false
	}
	return *c.Plot
}

// GetListenAddr returns the serve address.
func (c *RunConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return *c.ListenAddr
}

// GetReadHeaderTimeout parses ReadHeaderTimeout, falling back to 5s.
func (c *RunConfig) GetReadHeaderTimeout() time.Duration {
	if c.ReadHeaderTimeout == nil || *c.ReadHeaderTimeout == "" {
		return DefaultReadHeaderTimeout
	}
	d, err := time.ParseDuration(*c.ReadHeaderTimeout)
	if err != nil || d <= 0 {
		return DefaultReadHeaderTimeout
	}
	return d
}

// VignetteTable returns the configured classification, or vignette.Default
// when none is configured.
func (c *RunConfig) VignetteTable() (*vignette.Table, error) {
	if len(c.Vignettes) == 0 {
		return vignette.Default(), nil
	}
	return vignette.NewTable(c.Vignettes)
}

// Set helpers used by the CLI to apply flag overrides.
func (c *RunConfig) SetDataDir(v string)   { c.DataDir = &v }
func (c *RunConfig) SetInputFile(v string) { c.InputFile = &v }
func (c *RunConfig) SetOutputDir(v string) { c.OutputDir = &v }
func (c *RunConfig) SetIDColumn(v string)  { c.IDColumn = &v }
func (c *RunConfig) SetDBPath(v string)    { c.DBPath = &v }
func (c *RunConfig) SetCharts(v bool)      { c.Charts = &v }
func (c *RunConfig) SetPlot(v bool)        { c.Plot = &v }
func (c *RunConfig) SetListenAddr(v string) {
	c.ListenAddr = &v
}
