// Package marketdata downloads the Treasury yield and credit spread history
// used by historical scenarios and keeps it in a CSV cache on disk.
package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/openstress/internal/logger"
	"github.com/seenimoa/openstress/internal/provider"
	"github.com/seenimoa/openstress/internal/providers/fred"
	"github.com/seenimoa/openstress/pkg/models"
)

// Series maps a cache column to the FRED series it is downloaded from.
type Series struct {
	Column string
	FredID string
}

// DefaultSeries are the columns historical scenarios need, plus DGS2.
var DefaultSeries = []Series{
	{Column: models.ColDGS2, FredID: "DGS2"},
	{Column: models.ColDGS10, FredID: "DGS10"},
	{Column: models.ColIGOAS, FredID: "BAMLC0A0CM"},
	{Column: models.ColHYOAS, FredID: "BAMLH0A0HYM2"},
}

// FetchOptions bounds a download. Empty Start/End leave the range open.
type FetchOptions struct {
	Start  string // YYYY-MM-DD
	End    string // YYYY-MM-DD
	Series []Series
}

func (o FetchOptions) validate() error {
	for _, s := range []struct{ name, v string }{{"start", o.Start}, {"end", o.End}} {
		if s.v == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, s.v); err != nil {
			return fmt.Errorf("invalid %s date %q: want YYYY-MM-DD", s.name, s.v)
		}
	}
	return nil
}

// Fetch downloads every series concurrently and outer-joins them on date.
// The result is sorted ascending with columns in Series order.
func Fetch(ctx context.Context, f provider.Fetcher, opts FetchOptions, log *slog.Logger) (*models.TimeSeries, error) {
	log = logger.OrDiscard(log)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	series := opts.Series
	if len(series) == 0 {
		series = DefaultSeries
	}

	results := make([][]models.SeriesPoint, len(series))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range series {
		g.Go(func() error {
			params := provider.QueryParams{provider.ParamSymbol: s.FredID}
			if opts.Start != "" {
				params[provider.ParamStartDate] = opts.Start
			}
			if opts.End != "" {
				params[provider.ParamEndDate] = opts.End
			}

			start := time.Now()
			res, err := f.Fetch(gctx, params)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", s.Column, s.FredID, err)
			}
			pts, err := fred.Points(res)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", s.Column, s.FredID, err)
			}
			log.Debug("series downloaded", "column", s.Column, "series", s.FredID,
				"points", len(pts), "cached", res.Cached, "elapsed", time.Since(start))
			results[i] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ts := &models.TimeSeries{}
	for i, s := range series {
		points := make(map[time.Time]float64, len(results[i]))
		for _, p := range results[i] {
			points[p.Date] = p.Value
		}
		ts.Merge(s.Column, points)
	}
	ts.SortByDate()
	return ts, nil
}

// Download fetches the history and writes it to the cache under cacheDir.
// It returns the cache path.
func Download(ctx context.Context, f provider.Fetcher, cacheDir string, opts FetchOptions, log *slog.Logger) (string, *models.TimeSeries, error) {
	ts, err := Fetch(ctx, f, opts, log)
	if err != nil {
		return "", nil, err
	}
	path := CachePath(cacheDir)
	if err := Save(path, ts); err != nil {
		return "", nil, err
	}
	first, last, _ := ts.Span()
	logger.OrDiscard(log).Info("market data cached", "path", path, "rows", ts.Len(),
		"from", first.Format(time.DateOnly), "to", last.Format(time.DateOnly))
	return path, ts, nil
}
