// Package fred implements the FRED (Federal Reserve Economic Data) provider.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/openstress/internal/infra"
	"github.com/seenimoa/openstress/internal/provider"
)

const (
	providerName   = "fred"
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	CredAPIKey     = "api_key"
	defaultPerMin  = 120
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	api *apiClient
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	baseURL string
	perMin  int
}

// WithBaseURL points the provider at another FRED-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRateLimit sets the request budget per minute.
func WithRateLimit(perMin int) Option {
	return func(o *options) {
		if perMin > 0 {
			o.perMin = perMin
		}
	}
}

// New creates a FRED provider with its series fetcher registered.
// Call Init with the API key before fetching.
func New(opts ...Option) *Provider {
	o := options{baseURL: DefaultBaseURL, perMin: defaultPerMin}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data: Treasury yields and ICE BofA OAS",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        CredAPIKey,
					Description: "FRED API key from fred.stlouisfed.org",
					Required:    true,
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
		api: &apiClient{baseURL: o.baseURL},
	}
	p.RegisterFetcher(newSeriesFetcher(p.api, infra.PerMinute(o.perMin)))
	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.api.apiKey = credentials[CredAPIKey]
	return nil
}

// Ping checks connectivity to the FRED API by requesting series metadata.
func (p *Provider) Ping(ctx context.Context) error {
	var resp seriesInfoResponse
	if err := p.api.getJSON(ctx, "series", url.Values{"series_id": {"DGS10"}}, &resp); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

// apiClient holds the endpoint and key shared by all fetchers of a provider.
type apiClient struct {
	baseURL string
	apiKey  string
}

// url builds a full FRED API URL with api_key and file_type=json appended.
func (c *apiClient) url(endpoint string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	return c.baseURL + "/" + endpoint + "?" + q.Encode()
}

// getJSON performs a GET request to the FRED API and decodes JSON into dest.
func (c *apiClient) getJSON(ctx context.Context, endpoint string, q url.Values, dest any) error {
	if c.apiKey == "" {
		return &provider.ErrInvalidCredentials{Provider: providerName, Detail: "API key not set (set FRED_API_KEY)"}
	}
	body, _, err := infra.DoGet(ctx, c.url(endpoint, q), map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return fmt.Errorf("parse FRED JSON: %w", err)
	}
	return nil
}
