package api

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/testutil"
	"github.com/banshee-data/medevac-irr/internal/timeutil"
)

const fixtureRunID = "run-fixture"

var (
	apiTestTemplatePath string
	fixtureCreatedAt    = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
)

// templateMain builds the shared template DB before running the tests.
type templateMain struct {
	m *testing.M
}

func (t templateMain) Run() int {
	tmpDir, err := os.MkdirTemp("", "irr-api-template-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create API test template directory: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmpDir)

	apiTestTemplatePath = filepath.Join(tmpDir, "template.db")
	if err := buildTemplate(apiTestTemplatePath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize API test template DB: %v\n", err)
		return 1
	}
	return t.m.Run()
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(templateMain{m})
}

func buildTemplate(path string) error {
	templateDB, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer templateDB.Close()

	p := analysis.Pipeline{
		Clock:    timeutil.NewMockClock(fixtureCreatedAt),
		NewRunID: func() string { return fixtureRunID },
	}
	res, err := p.Run(testutil.ThreeRaterFixture().Table(), "survey_results.csv")
	if err != nil {
		return err
	}
	if err := templateDB.SaveResult(context.Background(), res); err != nil {
		return err
	}
	if _, err := templateDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint template: %w", err)
	}
	return nil
}

func cloneAPITestDB(t *testing.T) *db.DB {
	t.Helper()

	if apiTestTemplatePath == "" {
		t.Fatal("API test template DB not initialized")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := copyFile(apiTestTemplatePath, dbPath); err != nil {
		t.Fatalf("failed to clone API test DB template: %v", err)
	}
	d, err := db.NewDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open cloned DB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
