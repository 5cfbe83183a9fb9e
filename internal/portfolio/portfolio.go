// Package portfolio loads portfolio positions from CSV.
//
// Optional sensitivity columns default to zero and a blank bucket defaults to
// models.DefaultBucket here, at load time, so downstream code never deals
// with absent fields.
package portfolio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seenimoa/openstress/pkg/models"
)

// Column names recognised in the portfolio header.
const (
	ColAsset     = "asset"
	ColMV        = "mv"
	ColDuration  = "duration"
	ColConvexity = "convexity"
	ColSpreadDur = "spread_dur"
	ColBucket    = "bucket"
)

// RequiredColumns must be present in every portfolio file.
var RequiredColumns = []string{ColAsset, ColMV}

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("portfolio missing columns")

// ParseError reports a cell that could not be read as a number.
type ParseError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("portfolio row %d column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a portfolio CSV file.
func Load(path string) ([]models.AssetPosition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer f.Close()

	positions, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return positions, nil
}

// Parse reads portfolio rows from CSV with a header line.
func Parse(r io.Reader) ([]models.AssetPosition, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var positions []models.AssetPosition
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if blankRecord(rec) {
			continue
		}

		p, err := parseRecord(rec, idx, row)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

func parseRecord(rec []string, idx map[string]int, row int) (models.AssetPosition, error) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	num := func(col string, required bool) (float64, error) {
		raw := cell(col)
		if raw == "" {
			if required {
				return 0, &ParseError{Row: row, Column: col, Value: raw, Err: errors.New("value required")}
			}
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &ParseError{Row: row, Column: col, Value: raw, Err: err}
		}
		return v, nil
	}

	var (
		p   models.AssetPosition
		err error
	)
	p.Asset = cell(ColAsset)
	p.Bucket = models.NormalizeBucket(cell(ColBucket))
	if p.MV, err = num(ColMV, true); err != nil {
		return p, err
	}
	if p.Duration, err = num(ColDuration, false); err != nil {
		return p, err
	}
	if p.Convexity, err = num(ColConvexity, false); err != nil {
		return p, err
	}
	if p.SpreadDur, err = num(ColSpreadDur, false); err != nil {
		return p, err
	}
	return p, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Normalize applies the load-time defaults to positions built in memory,
// e.g. decoded from JSON. It returns a new slice.
func Normalize(positions []models.AssetPosition) []models.AssetPosition {
	out := make([]models.AssetPosition, len(positions))
	for i, p := range positions {
		p.Asset = strings.TrimSpace(p.Asset)
		p.Bucket = models.NormalizeBucket(p.Bucket)
		out[i] = p
	}
	return out
}
