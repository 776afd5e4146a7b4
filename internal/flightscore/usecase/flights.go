package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
)

var ErrMissingRoute = errors.New("departure and arrival ids are required")

type SearchInput struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate time.Time
	ReturnDate   *time.Time
	Currency     string
}

type SearchOutput struct {
	Provider string
	Payload  []byte
}

type ScoreInput struct {
	Payload     []byte
	DepartureID string
	ArrivalID   string
	Preferences entity.Preferences
}

type ScoreOutput struct {
	Result           *entity.ScoreResult
	Currency         string
	GoogleFlightsURL string
}

type FlightsInput struct {
	Search      SearchInput
	Preferences entity.Preferences
}

type FlightsOutput struct {
	SearchCriteria SearchCriteria
	ScoreOutput
}

type SearchCriteria struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   *string
	Currency     string
}

// Search runs one provider call and hands back the untouched payload. A
// non-200 answer surfaces as *provider.StatusError.
func (u *Usecase) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	start := time.Now()
	payload, err := u.provider.Search(ctx, provider.SearchRequest{
		DepartureID:  in.DepartureID,
		ArrivalID:    in.ArrivalID,
		OutboundDate: in.OutboundDate,
		ReturnDate:   in.ReturnDate,
		Currency:     in.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", u.provider.Name(), err)
	}

	slog.InfoContext(ctx, "flight search completed",
		"provider", u.provider.Name(),
		"departure_id", in.DepartureID,
		"arrival_id", in.ArrivalID,
		"payload_bytes", len(payload),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &SearchOutput{Provider: u.provider.Name(), Payload: payload}, nil
}

// Score normalizes a payload fetched earlier and ranks the matching flights.
// Empty route ids are taken from the payload's search parameters.
func (u *Usecase) Score(ctx context.Context, in ScoreInput) (*ScoreOutput, error) {
	raw, err := decodePayload(in.Payload)
	if err != nil {
		return nil, err
	}

	departureID, arrivalID := raw.route(in.DepartureID, in.ArrivalID)
	if departureID == "" || arrivalID == "" {
		return nil, ErrMissingRoute
	}

	flights, err := normalizePayload(raw, departureID, arrivalID, u.location)
	if err != nil {
		return nil, err
	}

	result, err := ScoreFlights(flights, in.Preferences)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "flights scored",
		"departure_id", departureID,
		"arrival_id", arrivalID,
		"flights", len(result.Flights),
		"avg_cost", result.AvgCost.String(),
		"avg_duration", result.AvgDuration,
	)

	return &ScoreOutput{
		Result:           result,
		Currency:         raw.optionalCurrency(),
		GoogleFlightsURL: raw.googleFlightsURL(),
	}, nil
}

// Flights searches, normalizes and scores in one pass.
func (u *Usecase) Flights(ctx context.Context, in FlightsInput) (*FlightsOutput, error) {
	search, err := u.Search(ctx, in.Search)
	if err != nil {
		return nil, err
	}

	scored, err := u.Score(ctx, ScoreInput{
		Payload:     search.Payload,
		DepartureID: in.Search.DepartureID,
		ArrivalID:   in.Search.ArrivalID,
		Preferences: in.Preferences,
	})
	if err != nil {
		return nil, err
	}

	criteria := SearchCriteria{
		DepartureID:  in.Search.DepartureID,
		ArrivalID:    in.Search.ArrivalID,
		OutboundDate: in.Search.OutboundDate.Format("2006-01-02"),
		Currency:     in.Search.Currency,
	}
	if in.Search.ReturnDate != nil {
		value := in.Search.ReturnDate.Format("2006-01-02")
		criteria.ReturnDate = &value
	}

	return &FlightsOutput{SearchCriteria: criteria, ScoreOutput: *scored}, nil
}
