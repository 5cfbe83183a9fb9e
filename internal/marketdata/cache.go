package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/openstress/pkg/models"
)

// CacheFile is the file name of the history cache inside the cache directory.
const CacheFile = "fred_timeseries.csv"

const dateColumn = "date"

// ErrCacheNotFound is returned by Load when no cache has been written yet.
var ErrCacheNotFound = errors.New("market data cache not found")

// CachePath returns the cache file path for cacheDir.
func CachePath(cacheDir string) string {
	return filepath.Join(cacheDir, CacheFile)
}

// Load reads the cached history from cacheDir.
func Load(cacheDir string) (*models.TimeSeries, error) {
	path := CachePath(cacheDir)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run `openstress fetch` first)", ErrCacheNotFound, path)
		}
		return nil, fmt.Errorf("open market data cache: %w", err)
	}
	defer f.Close()

	ts, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// Read parses a history CSV: a date column followed by one column per
// series. Blank cells are missing observations.
func Read(r io.Reader) (*models.TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty market data file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateIdx := -1
	cols := make([]string, len(header))
	ts := &models.TimeSeries{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[i] = h
		if strings.EqualFold(h, dateColumn) {
			dateIdx = i
			continue
		}
		ts.Columns = append(ts.Columns, h)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("missing %q column", dateColumn)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if dateIdx >= len(rec) || strings.TrimSpace(rec[dateIdx]) == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, rec[dateIdx])
		}
		obs := models.Observation{Date: d, Values: make(map[string]float64)}
		for i, raw := range rec {
			raw = strings.TrimSpace(raw)
			if i == dateIdx || i >= len(cols) || raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: invalid number %q", line, cols[i], raw)
			}
			obs.Values[cols[i]] = v
		}
		ts.Observations = append(ts.Observations, obs)
	}
	ts.SortByDate()
	return ts, nil
}

// Save writes ts to path, creating parent directories. The file is
// replaced atomically.
func Save(path string, ts *models.TimeSeries) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fred-*.csv")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, ts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Write encodes ts as CSV with a leading date column.
func Write(w io.Writer, ts *models.TimeSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{dateColumn}, ts.Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(ts.Columns)+1)
	for _, o := range ts.Observations {
		row[0] = o.Date.Format(time.DateOnly)
		for i, c := range ts.Columns {
			row[i+1] = ""
			if v, ok := o.Value(c); ok {
				row[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
