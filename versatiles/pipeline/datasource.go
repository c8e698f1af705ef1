package pipeline

import (
	"encoding/csv"
	"io"

	"github.com/versatiles-org/go-versatiles/versatiles"
)

// loadCSVRows reads a CSV file (header row + data rows) into a slice of
// column->value maps, in the teacher's stdlib-first style: no third-party
// CSV library appears anywhere in the retrieval pack (see DESIGN.md), so
// encoding/csv is the grounded choice.
func loadCSVRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildPropertiesMap turns CSV rows into a map keyed by the row's
// idFieldData column, converting the rest of the columns to a generic
// property map. includeID controls whether the key column itself survives
// into the output map, applied once at load time (spec.md §4.10 /
// SPEC_FULL.md Supplemented Features).
func buildPropertiesMap(rows []map[string]string, idFieldData string, includeID bool) (map[string]map[string]interface{}, error) {
	out := make(map[string]map[string]interface{}, len(rows))
	for _, row := range rows {
		key, ok := row[idFieldData]
		if !ok {
			return nil, &versatiles.MissingCsvKeyError{Field: idFieldData}
		}
		props := make(map[string]interface{}, len(row))
		for col, val := range row {
			if col == idFieldData && !includeID {
				continue
			}
			props[col] = val
		}
		out[key] = props
	}
	return out, nil
}
