package flightscore

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/inbound"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgrouter"
)

type Dependency struct {
	Config pkgconfig.Config
	Router *pkgrouter.Router
}

func New(dep Dependency) error {
	prov, err := NewProvider(dep.Config)
	if err != nil {
		return err
	}

	loc, err := usecase.LoadTimezone(dep.Config.GetString("modules.flightscore.normalize.timezone"))
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Provider: prov,
		Location: loc,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, SearchDefaults(dep.Config))

	return nil
}

// NewProvider builds the flight data source selected by
// modules.flightscore.provider.mode.
func NewProvider(cfg pkgconfig.Config) (provider.Provider, error) {
	mode := cfg.GetString("modules.flightscore.provider.mode")
	switch mode {
	case "", "serpapi":
		apiKey := cfg.GetString("modules.flightscore.serpapi.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("SERPAPI_KEY")
		}
		if apiKey == "" {
			slog.Warn("serpapi api key is empty, upstream requests will be rejected")
		}

		timeout := 10 * time.Second
		if ms := cfg.GetInt("modules.flightscore.provider.timeout_ms"); ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}

		return provider.NewSerpAPIProvider(provider.SerpAPIConfig{
			BaseURL:  cfg.GetString("modules.flightscore.serpapi.base_url"),
			APIKey:   apiKey,
			Engine:   cfg.GetString("modules.flightscore.serpapi.engine"),
			Language: cfg.GetString("modules.flightscore.serpapi.hl"),
			Country:  cfg.GetString("modules.flightscore.serpapi.gl"),
			Timeout:  timeout,
		}), nil
	case "file":
		path := cfg.GetString("modules.flightscore.provider.file_path")
		if path == "" {
			path = "mocks/serpapi_search_response.json"
		}
		return provider.NewFileProvider(path), nil
	default:
		return nil, fmt.Errorf("unknown provider mode %q", mode)
	}
}

// SearchDefaults reads the values used for search parameters a request omits.
func SearchDefaults(cfg pkgconfig.Config) inbound.SearchDefaults {
	return inbound.SearchDefaults{
		DepartureID:  valueOr(cfg.GetString("modules.flightscore.search.departure_id"), "YYZ"),
		ArrivalID:    valueOr(cfg.GetString("modules.flightscore.search.arrival_id"), "LAS"),
		OutboundDate: valueOr(cfg.GetString("modules.flightscore.search.outbound_date"), "2024-08-12"),
		ReturnDate:   valueOr(cfg.GetString("modules.flightscore.search.return_date"), "2024-08-20"),
		Currency:     valueOr(cfg.GetString("modules.flightscore.search.currency"), "CAD"),
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
