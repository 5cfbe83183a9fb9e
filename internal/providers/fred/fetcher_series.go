package fred

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/openstress/internal/infra"
	"github.com/seenimoa/openstress/internal/provider"
	"github.com/seenimoa/openstress/pkg/models"
)

// seriesFetcher returns observations of one FRED series as []models.SeriesPoint.
type seriesFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newSeriesFetcher(api *apiClient, limiter *infra.RateLimiter) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFredSeries,
			"Get FRED time series observations by series ID",
			[]string{provider.ParamSymbol}, // series_id passed as symbol
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, limiter,
		),
		api: api,
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := provider.ValidateParams(params, f.RequiredParams()); err != nil {
		return nil, err
	}
	seriesID := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return f.result(cached, true), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	q := url.Values{"series_id": {seriesID}}
	if sd := params[provider.ParamStartDate]; sd != "" {
		q.Set("observation_start", sd)
	}
	if ed := params[provider.ParamEndDate]; ed != "" {
		q.Set("observation_end", ed)
	}
	if lim := params[provider.ParamLimit]; lim != "" {
		q.Set("limit", lim)
	}

	var resp observationsResponse
	if err := f.api.getJSON(ctx, "series/observations", q, &resp); err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}
	points, err := resp.points()
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	f.CacheSet(cacheKey, points)
	return f.result(points, false), nil
}

func (f *seriesFetcher) result(data any, cached bool) *provider.FetchResult {
	return &provider.FetchResult{
		Provider:  providerName,
		Model:     f.ModelType(),
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    cached,
	}
}

// Points extracts the series from a ModelFredSeries fetch result.
func Points(res *provider.FetchResult) ([]models.SeriesPoint, error) {
	if res == nil {
		return nil, fmt.Errorf("nil fetch result")
	}
	pts, ok := res.Data.([]models.SeriesPoint)
	if !ok {
		return nil, fmt.Errorf("unexpected %s payload %T", res.Model, res.Data)
	}
	return pts, nil
}
