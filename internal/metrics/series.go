package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadSeries reads one numeric column from a CSV file with a header row.
// Blank cells are returned as NaN so Summarize drops them.
func LoadSeries(path, column string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pnl series: %w", err)
	}
	defer f.Close()

	s, err := ParseSeries(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSeries reads one numeric column from CSV.
func ParseSeries(r io.Reader, column string) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}

	var out []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		raw := ""
		if col < len(rec) {
			raw = strings.TrimSpace(rec[col])
		}
		if raw == "" {
			out = append(out, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, column, err)
		}
		out = append(out, v)
	}
	return out, nil
}
