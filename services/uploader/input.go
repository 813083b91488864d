package uploader

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecords reads an export file produced by the converter: a JSON array of
// flat objects.
func LoadRecords(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%s must be a JSON array of objects: %w", path, err)
	}
	return rows, nil
}
