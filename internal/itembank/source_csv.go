package itembank

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource reads the item bank from a local CSV file, typically an
// exported snapshot of the maintained spreadsheet.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSVSource for the given file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) FetchAllRows(_ context.Context) ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open item bank csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // malformed rows are the bank's problem, not the reader's

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read item bank csv: %w", err)
	}
	return rows, nil
}
