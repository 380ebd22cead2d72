// Package geocode resolves a property address to coordinates. Geocoding is
// decorative for a quote, so every failure degrades to "no coordinates".
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunterra/sunplan/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Result is a resolved coordinate pair.
type Result struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Provider resolves an address or eircode to coordinates. A nil result with a
// nil error means the address could not be resolved.
type Provider interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

var Module = fx.Module("geocode",
	fx.Provide(Provide),
)

// Provide picks the HTTP provider when a geocoder is configured, else a noop.
func Provide(cfg config.Config, log *zap.Logger) Provider {
	if cfg.GeocodeURL == "" {
		return noopProvider{}
	}
	return &httpProvider{
		log:     log.Named("geocode"),
		baseURL: strings.TrimRight(cfg.GeocodeURL, "/"),
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

type noopProvider struct{}

func (noopProvider) Geocode(context.Context, string) (*Result, error) { return nil, nil }

type httpProvider struct {
	log     *zap.Logger
	baseURL string
	client  *http.Client
}

func (p *httpProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/v1/search?q=%s&limit=1", p.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("geocode request failed", zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Warn("geocode request rejected", zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		p.log.Warn("geocode response invalid", zap.Error(err))
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}
