package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const modelTest ModelType = "TestModel"

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	BaseFetcher
}

func newMockFetcher(model ModelType, required []string) *mockFetcher {
	return &mockFetcher{
		BaseFetcher: NewBaseFetcher(model, "mock fetcher for "+string(model), required, nil),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if err := ValidateParams(params, m.RequiredParams()); err != nil {
		return nil, err
	}
	return &FetchResult{Model: m.ModelType(), Data: "mock-data", FetchedAt: time.Now()}, nil
}

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, models ...ModelType) *mockProvider {
	mp := &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", nil),
	}
	for _, m := range models {
		mp.RegisterFetcher(newMockFetcher(m, []string{ParamSymbol}))
	}
	return mp
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockProvider("test-provider", ModelFredSeries)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("expected name test-provider, got %s", got.Info().Name)
	}

	_, err = reg.Get("nonexistent")
	var nf *ErrProviderNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	if err := NewRegistry().Register(newMockProvider("")); err == nil {
		t.Error("expected error for empty provider name")
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("zeta", ModelFredSeries))
	_ = reg.Register(newMockProvider("alpha", modelTest))

	infos := reg.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("List not sorted: %s, %s", infos[0].Name, infos[1].Name)
	}
}

func TestRegistryFetcherDefault(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("first", ModelFredSeries))
	_ = reg.Register(newMockProvider("second", ModelFredSeries, modelTest))

	f, err := reg.Fetcher(ModelFredSeries)
	if err != nil {
		t.Fatalf("Fetcher: %v", err)
	}
	res, err := f.Fetch(context.Background(), QueryParams{ParamSymbol: "DGS10"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Model != ModelFredSeries {
		t.Errorf("Model: got %s", res.Model)
	}

	if _, err := reg.Fetcher(modelTest); err != nil {
		t.Errorf("second provider should serve %s: %v", modelTest, err)
	}

	_, err = reg.Fetcher(ModelType("Nope"))
	var ns *ErrModelNotSupported
	if !errors.As(err, &ns) {
		t.Errorf("expected ErrModelNotSupported, got %v", err)
	}
}

func TestFetchMissingParam(t *testing.T) {
	f := newMockFetcher(ModelFredSeries, []string{ParamSymbol})
	_, err := f.Fetch(context.Background(), QueryParams{})
	var mp *ErrMissingParam
	if !errors.As(err, &mp) || mp.Param != ParamSymbol {
		t.Errorf("expected ErrMissingParam for symbol, got %v", err)
	}
}

// --- Base Provider Tests ---

func TestBaseProviderInit(t *testing.T) {
	creds := []ProviderCredential{
		{Name: "api_key", Required: true, EnvVar: "TEST_KEY"},
	}
	bp := NewBaseProvider("test", "desc", "https://test.com", creds)

	err := bp.Init(map[string]string{})
	var ic *ErrInvalidCredentials
	if !errors.As(err, &ic) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !strings.Contains(err.Error(), "TEST_KEY") {
		t.Errorf("error should name the env var: %v", err)
	}

	if err := bp.Init(map[string]string{"api_key": "secret123"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if bp.Credential("api_key") != "secret123" {
		t.Error("credential not stored")
	}
}

func TestBaseProviderRegisterFetcher(t *testing.T) {
	bp := NewBaseProvider("test", "desc", "https://test.com", nil)
	bp.RegisterFetcher(newMockFetcher(ModelFredSeries, nil))

	if bp.Fetcher(ModelFredSeries) == nil {
		t.Error("fetcher not registered")
	}
	if bp.Fetcher(modelTest) != nil {
		t.Error("fetcher should be nil for unregistered model")
	}
	if len(bp.Info().Models) != 1 {
		t.Errorf("expected 1 supported model, got %d", len(bp.Info().Models))
	}
}

// --- BaseFetcher Tests ---

func TestBaseFetcherCache(t *testing.T) {
	f := newMockFetcher(ModelFredSeries, nil)
	if _, ok := f.CacheGet("k"); ok {
		t.Error("empty cache should miss")
	}
	f.CacheSet("k", []int{1})
	if v, ok := f.CacheGet("k"); !ok || len(v.([]int)) != 1 {
		t.Errorf("cache round trip failed: %v, %v", v, ok)
	}
	if err := f.RateLimit(context.Background()); err != nil {
		t.Errorf("RateLimit: %v", err)
	}
}

// --- CacheKey Tests ---

func TestCacheKey(t *testing.T) {
	params := QueryParams{
		ParamSymbol:    "DGS10",
		ParamStartDate: "2020-01-01",
		ParamProvider:  "fred",
		"_api_key":     "secret",
	}
	key := CacheKey(ModelFredSeries, params)

	want := "FredSeries:start_date=2020-01-01:symbol=DGS10"
	if key != want {
		t.Errorf("CacheKey: got %q, want %q", key, want)
	}
	if CacheKey(ModelFredSeries, QueryParams{ParamStartDate: "2020-01-01", ParamSymbol: "DGS10"}) != key {
		t.Error("CacheKey should not depend on map order or credentials")
	}
}

// --- ValidateParams Tests ---

func TestValidateParams(t *testing.T) {
	if err := ValidateParams(QueryParams{ParamSymbol: "DGS10"}, []string{ParamSymbol}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateParams(QueryParams{}, []string{ParamSymbol}); err == nil {
		t.Error("expected error for missing param")
	}
	if err := ValidateParams(QueryParams{ParamSymbol: ""}, []string{ParamSymbol}); err == nil {
		t.Error("expected error for empty param")
	}
}

func TestAllModels(t *testing.T) {
	all := AllModels()
	if len(all) != 1 || all[0] != ModelFredSeries {
		t.Errorf("AllModels: got %v", all)
	}
}
