package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the export name expected inside a data directory.
const DefaultFileName = "survey_results.csv"

const utf8BOM = "\uFEFF"

// ReadCSV parses a survey export. The first record is the header row.
// An input with a header but no data rows is returned as an empty table;
// callers decide whether that is fatal.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return NewTable(headers, rows), nil
}

// LoadFile reads a survey export from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrTableNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open survey data: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadDir reads DefaultFileName from dataDir.
func LoadDir(dataDir string) (*Table, error) {
	return LoadFile(filepath.Join(dataDir, DefaultFileName))
}
