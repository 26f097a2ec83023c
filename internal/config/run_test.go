package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := &RunConfig{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.GetDataDir())
	assert.Equal(t, filepath.Join("data", survey.DefaultFileName), cfg.GetInputFile())
	assert.Equal(t, "output", cfg.GetOutputDir())
	assert.Equal(t, survey.DefaultIDColumn, cfg.GetIDColumn())
	assert.Empty(t, cfg.GetDBPath())
	assert.True(t, cfg.GetCharts())
	assert.False(t, cfg.GetPlot())
	assert.Equal(t, DefaultListenAddr, cfg.GetListenAddr())
	assert.Equal(t, 5*time.Second, cfg.GetReadHeaderTimeout())

	tbl, err := cfg.VignetteTable()
	require.NoError(t, err)
	assert.Same(t, vignette.Default(), tbl)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "irr.json", `{
		"data_dir": "/srv/survey",
		"output_dir": "/srv/results",
		"db_path": "/srv/irr.db",
		"charts": false,
		"read_header_timeout": "2s"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/survey/survey_results.csv", cfg.GetInputFile())
	assert.Equal(t, "/srv/results", cfg.GetOutputDir())
	assert.Equal(t, "/srv/irr.db", cfg.GetDBPath())
	assert.False(t, cfg.GetCharts())
	assert.Equal(t, 2*time.Second, cfg.GetReadHeaderTimeout())
}

func TestLoad_YAMLWithVignettes(t *testing.T) {
	path := writeConfig(t, "irr.yaml", `
input_file: exports/round2.csv
id_column: Participant
plot: true
vignettes:
  - question: 1
    question_type: Clear Medevac
    vignette_class: A
  - question: 2
    question_type: Any Option
    vignette_class: C
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "exports/round2.csv", cfg.GetInputFile())
	assert.Equal(t, "Participant", cfg.GetIDColumn())
	assert.True(t, cfg.GetPlot())

	tbl, err := cfg.VignetteTable()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, vignette.Unknown, tbl.Resolve(3).VignetteClass)
	assert.Equal(t, "C", tbl.Resolve(2).VignetteClass)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"extension", "irr.toml", `data_dir = "x"`},
		{"bad json", "irr.json", `{"data_dir": `},
		{"bad yaml", "irr.yml", "charts: [unterminated"},
		{"blank id column", "irr.json", `{"id_column": "  "}`},
		{"listen addr", "irr.json", `{"listen_addr": "8090"}`},
		{"timeout", "irr.json", `{"read_header_timeout": "soon"}`},
		{"negative timeout", "irr.json", `{"read_header_timeout": "-1s"}`},
		{"duplicate vignette", "irr.yaml", "vignettes:\n  - question: 1\n  - question: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate_VignetteBeyondSurvey(t *testing.T) {
	_, err := Load(writeConfig(t, "irr.yaml", "vignettes:\n  - question: 20\n  - question: 21\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 21")

	_, err = Load(writeConfig(t, "irr.yaml", "vignettes:\n  - question: 20\n"))
	assert.NoError(t, err)
}

func TestSetters(t *testing.T) {
	cfg := &RunConfig{}
	cfg.SetDataDir("in")
	cfg.SetOutputDir("out")
	cfg.SetIDColumn(" Record ID ")
	cfg.SetDBPath("runs.db")
	cfg.SetCharts(false)
	cfg.SetPlot(true)
	cfg.SetListenAddr(":9000")
	cfg.SetInputFile("in/custom.csv")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "in/custom.csv", cfg.GetInputFile())
	assert.Equal(t, "Record ID", cfg.GetIDColumn())
	assert.Equal(t, ":9000", cfg.GetListenAddr())
	assert.False(t, cfg.GetCharts())
	assert.True(t, cfg.GetPlot())
	assert.Equal(t, "runs.db", cfg.GetDBPath())
}
