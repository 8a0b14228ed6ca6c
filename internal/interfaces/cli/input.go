package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/indogap/indogap/internal/domain/company"
)

// loadRecords reads company records from a JSON file.  The file may hold a
// single object or an array.
func loadRecords(path string) ([]company.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []company.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single company.Record
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse %s: expected a company record or an array of records: %w", path, err)
	}
	return []company.Record{single}, nil
}
