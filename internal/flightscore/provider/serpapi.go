package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultSerpAPIURL = "https://serpapi.com/search"
	dateLayout        = "2006-01-02"
	maxPayloadBytes   = 8 << 20
)

type SerpAPIConfig struct {
	BaseURL  string
	APIKey   string
	Engine   string
	Language string
	Country  string
	Timeout  time.Duration
	Client   *http.Client
}

// SerpAPIProvider queries the SerpAPI Google Flights engine.
type SerpAPIProvider struct {
	baseURL  string
	apiKey   string
	engine   string
	language string
	country  string
	client   *http.Client
}

func NewSerpAPIProvider(cfg SerpAPIConfig) *SerpAPIProvider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSerpAPIURL
	}
	engine := cfg.Engine
	if engine == "" {
		engine = "google_flights"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	return &SerpAPIProvider{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		engine:   engine,
		language: language,
		country:  country,
		client:   client,
	}
}

func (s *SerpAPIProvider) Name() string {
	return "SerpAPI"
}

func (s *SerpAPIProvider) Search(ctx context.Context, req SearchRequest) ([]byte, error) {
	endpoint, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("serpapi base url: %w", err)
	}
	endpoint.RawQuery = s.query(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "serpapi responded",
		"status", resp.StatusCode,
		"departure_id", req.DepartureID,
		"arrival_id", req.ArrivalID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		//nolint:errcheck // draining so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &StatusError{Provider: s.Name(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("serpapi read body: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrPayloadTooLarge, maxPayloadBytes)
	}
	return data, nil
}

func (s *SerpAPIProvider) query(req SearchRequest) url.Values {
	q := url.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("engine", s.engine)
	q.Set("hl", s.language)
	q.Set("gl", s.country)
	q.Set("departure_id", req.DepartureID)
	q.Set("arrival_id", req.ArrivalID)
	q.Set("outbound_date", req.OutboundDate.Format(dateLayout))
	if req.ReturnDate != nil {
		q.Set("return_date", req.ReturnDate.Format(dateLayout))
	}
	q.Set("currency", req.Currency)
	return q
}
