// Package providers builds the registry of concrete data providers from
// configuration.
package providers

import (
	"github.com/seenimoa/openstress/internal/config"
	"github.com/seenimoa/openstress/internal/provider"
	"github.com/seenimoa/openstress/internal/providers/fred"
)

// NewRegistry creates a registry holding every provider openstress can use.
// With requireKeys a provider whose credentials are missing is an error;
// otherwise it is registered uninitialized so it can still be listed.
func NewRegistry(data config.DataConfig, requireKeys bool) (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, data, requireKeys); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterAllTo registers all providers to the given registry.
func RegisterAllTo(reg *provider.Registry, data config.DataConfig, requireKeys bool) error {
	var opts []fred.Option
	if data.FredBaseURL != "" {
		opts = append(opts, fred.WithBaseURL(data.FredBaseURL))
	}
	if data.RateLimitPerMin > 0 {
		opts = append(opts, fred.WithRateLimit(data.RateLimitPerMin))
	}
	fp := fred.New(opts...)
	if err := fp.Init(map[string]string{fred.CredAPIKey: data.FredAPIKey}); err != nil && requireKeys {
		return err
	}
	return reg.Register(fp)
}
