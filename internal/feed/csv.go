// Package feed loads raw asset tables from CSV files or a Postgres table.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"grid-asset-prioritizer/internal/asset"
)

// Canonical column names of the asset table.
const (
	ColumnID         = "id"
	ColumnSAIDI      = "saidi"
	ColumnSAIFI      = "saifi"
	ColumnHealth     = "hi"
	ColumnCost       = "cost"
	ColumnGroup      = "group"
	ColumnCategory   = "category"
	ColumnInvestment = "yb"
)

// headerAliases maps accepted header spellings to canonical column names.
var headerAliases = map[string]string{
	"id":            ColumnID,
	"asset_id":      ColumnID,
	"şebeke unsuru": ColumnID,
	"saidi":         ColumnSAIDI,
	"saifi":         ColumnSAIFI,
	"hi":            ColumnHealth,
	"health_index":  ColumnHealth,
	"cost":          ColumnCost,
	"maliyet":       ColumnCost,
	"group":         ColumnGroup,
	"grup":          ColumnGroup,
	"type":          ColumnGroup,
	"category":      ColumnCategory,
	"kategori":      ColumnCategory,
	"is_public":     ColumnCategory,
	"yb":            ColumnInvestment,
	"investment":    ColumnInvestment,
}

var requiredColumns = []string{ColumnID, ColumnHealth}

// LoadCSV reads an asset table from a CSV file. Rows that cannot be parsed
// are skipped and reported as warnings; a missing required column is fatal.
func LoadCSV(path string) ([]asset.Record, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open CSV: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses an asset table from r.
func ReadCSV(r io.Reader) ([]asset.Record, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read header: %w", err)
	}
	index := mapHeaders(header)

	missing := missingHeaders(requiredColumns, index)
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}

	records := []asset.Record{}
	var warnings []string
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		rec, warn := parseRecord(row, index, line)
		if warn != "" {
			warnings = append(warnings, warn)
			continue
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

func mapHeaders(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			key = canonical
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	return index
}

func missingHeaders(required []string, index map[string]int) []string {
	var missing []string
	for _, key := range required {
		if _, ok := index[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func parseRecord(row []string, index map[string]int, line int) (asset.Record, string) {
	get := func(key string) string {
		pos, ok := index[key]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	id := get(ColumnID)
	if id == "" {
		return asset.Record{}, fmt.Sprintf("line %d: missing id", line)
	}
	rec := asset.Record{ID: id}

	floats := []struct {
		column string
		dst    **float64
	}{
		{ColumnSAIDI, &rec.SAIDI},
		{ColumnSAIFI, &rec.SAIFI},
		{ColumnHealth, &rec.Health},
		{ColumnCost, &rec.Cost},
	}
	for _, field := range floats {
		value, err := parseOptionalFloat(get(field.column))
		if err != nil {
			return asset.Record{}, fmt.Sprintf("line %d: invalid %s", line, field.column)
		}
		*field.dst = value
	}

	flags := []struct {
		column string
		dst    **int
	}{
		{ColumnCategory, &rec.Category},
		{ColumnInvestment, &rec.Investment},
	}
	for _, field := range flags {
		value, err := parseOptionalFlag(get(field.column))
		if err != nil {
			return asset.Record{}, fmt.Sprintf("line %d: invalid %s", line, field.column)
		}
		*field.dst = value
	}

	if group := get(ColumnGroup); group != "" {
		rec.Group = &group
	}
	return rec, ""
}

func parseOptionalFloat(raw string) (*float64, error) {
	if isBlank(raw) {
		return nil, nil
	}
	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return nil, err
	}
	if !finite(value) {
		return nil, errNotFinite
	}
	return &value, nil
}

// parseOptionalFlag accepts integer flags as well as spreadsheet-style "1.0" or "1,0".
func parseOptionalFlag(raw string) (*int, error) {
	value, err := parseOptionalFloat(raw)
	if err != nil || value == nil {
		return nil, err
	}
	if *value != math.Trunc(*value) {
		return nil, fmt.Errorf("%v is not a whole number", *value)
	}
	flag := int(*value)
	return &flag, nil
}

var errNotFinite = errors.New("value is not finite")

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isBlank(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "nan", "null", "na", "n/a":
		return true
	}
	return false
}
