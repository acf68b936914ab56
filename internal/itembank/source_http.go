package itembank

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"
)

// HTTPSource reads the item bank from a CSV export URL, e.g. a Google
// Sheet published with output=csv. The sheet stays the single maintained
// store; this bot only ever reads it.
type HTTPSource struct {
	URL    string
	client *http.Client
}

// NewHTTPSource creates an HTTPSource for the given CSV export URL.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) FetchAllRows(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build item bank request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item bank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch item bank: unexpected status %d", resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse item bank csv: %w", err)
	}
	return rows, nil
}
