package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// extractJSON flattens a JSON object's values into one space-joined string.
// Keys are walked in sorted order so the output is deterministic.
func extractJSON(content []byte) (string, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return "", fmt.Errorf("parse JSON: %w", err)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(data))
	for _, k := range keys {
		parts = append(parts, flattenValue(data[k])...)
	}
	return strings.Join(parts, " "), nil
}

func flattenValue(v interface{}) []string {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, flattenValue(val[k])...)
		}
		return out
	case []interface{}:
		var out []string
		for _, item := range val {
			out = append(out, flattenValue(item)...)
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}

// extractCSV joins every cell of the file into one space-separated string,
// row by row.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse CSV: %w", err)
	}

	var parts []string
	for _, row := range rows {
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				parts = append(parts, cell)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
