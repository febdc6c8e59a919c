package record

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses interview records from a CSV stream. The first row is the
// header; every following row becomes one Record. Cells are coerced into
// typed scalars with CoerceCell.
func ReadCSV(r io.Reader, separator rune) ([]Record, error) {
	reader := csv.NewReader(r)
	if separator != 0 {
		reader.Comma = separator
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			rec[headers[i]] = CoerceCell(cell)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no data rows")
	}
	return records, nil
}

// ReadJSON parses a single record from a JSON object stream. json.Number is
// used so integers survive without float rounding.
func ReadJSON(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	rec := make(Record, len(raw))
	for k, v := range raw {
		rec[k] = normalizeJSON(v)
	}
	return rec, nil
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeJSON(e)
		}
		return out
	}
	return v
}

// LoadFile reads records from a .csv or .json file.
func LoadFile(path string, separator rune) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		rec, err := ReadJSON(f)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	}
	return ReadCSV(f, separator)
}
