// Package stream reads value streams for accumulation: CSV columns and
// JSON-lines fields, from files or stdin.
package stream

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultField is the JSON field read when none is specified.
const DefaultField = "value"

// ReadCSV extracts one float64 column from CSV input. The column is
// selected by zero-based index, or by name when the first record is a
// header row. A header row is detected by the selected cell failing to
// parse as a number.
func ReadCSV(r io.Reader, column string) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	idx := 0
	byName := false
	if column != "" {
		if n, err := strconv.Atoi(column); err == nil {
			if n < 0 {
				return nil, fmt.Errorf("column index %d out of range", n)
			}
			idx = n
		} else {
			byName = true
		}
	}

	var out []float64
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++

		if row == 1 && byName {
			found := false
			for i, name := range record {
				if strings.TrimSpace(name) == column {
					idx = i
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("column %q not found in header", column)
			}
			continue
		}

		if idx >= len(record) {
			return nil, fmt.Errorf("row %d: column %d out of range (%d fields)", row, idx, len(record))
		}
		cell := strings.TrimSpace(record[idx])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// Tolerate a non-numeric first row as a header.
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid value %q: %w", row, cell, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadJSONL extracts one float64 field per line of JSON-lines input.
// Lines holding a bare number are accepted as-is; blank lines are
// skipped. The field defaults to DefaultField.
func ReadJSONL(r io.Reader, field string) ([]float64, error) {
	if field == "" {
		field = DefaultField
	}

	var out []float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		// Bare number lines are the degenerate one-value object.
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			out = append(out, v)
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		raw, ok := obj[field]
		if !ok {
			return nil, fmt.Errorf("line %d: field %q not present", line, field)
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("line %d: field %q is not a number: %w", line, field, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return out, nil
}

// ParseValues parses a comma-separated list of floats, as accepted on
// the command line and in API payload shorthand.
func ParseValues(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
