package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a headed CSV file into a Dataset. A column is numeric when
// every non-empty cell parses as a float; otherwise it is categorical. Empty
// cells become NaN or "" respectively.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, errors.New("dataset: CSV file is empty")
	}

	header := records[0]
	body := records[1:]

	cols := make([]Column, len(header))
	for c, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("dataset: column %d has an empty header", c)
		}

		raw := make([]string, len(body))
		numeric := true
		for r, record := range body {
			cell := strings.TrimSpace(record[c])
			raw[r] = cell
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
			}
		}

		if numeric {
			values := make([]float64, len(raw))
			for r, cell := range raw {
				if cell == "" {
					values[r] = math.NaN()
					continue
				}
				values[r], _ = strconv.ParseFloat(cell, 64)
			}
			cols[c] = NumericColumn(name, values)
		} else {
			cols[c] = CategoricalColumn(name, raw)
		}
	}

	return New(cols...)
}
