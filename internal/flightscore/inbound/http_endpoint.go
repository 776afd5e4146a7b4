package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc       uc
	defaults SearchDefaults
}

func (h *HTTPEndpoint) Hello(context.Context, *http.Request) (any, error) {
	return HelloResponse{Message: "Hello from Flask!"}, nil
}

// Search proxies the upstream payload untouched. An upstream rejection is
// reported in the body with a 200 status, which existing clients rely on.
func (h *HTTPEndpoint) Search(ctx context.Context, r *http.Request) (any, error) {
	input, err := parseSearchInput(r.URL.Query(), h.defaults)
	if err != nil {
		return nil, err
	}

	output, err := h.uc.Search(ctx, input)
	if resp, ok := upstreamError(err); ok {
		return resp, nil
	}
	if err != nil {
		return nil, mapSearchError(err)
	}
	if !json.Valid(output.Payload) {
		return nil, fmt.Errorf("%s returned invalid json", output.Provider)
	}

	return json.RawMessage(output.Payload), nil
}

func (h *HTTPEndpoint) Score(ctx context.Context, r *http.Request) (any, error) {
	input, err := parseScoreInput(r)
	if err != nil {
		return nil, err
	}

	output, err := h.uc.Score(ctx, input)
	if err != nil {
		return nil, mapScoreError(err, true)
	}

	return NewScoreResponse(output), nil
}

func (h *HTTPEndpoint) Flights(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	search, err := parseSearchInput(q, h.defaults)
	if err != nil {
		return nil, err
	}
	prefs, err := parsePreferences(q, false)
	if err != nil {
		return nil, err
	}

	output, err := h.uc.Flights(ctx, usecase.FlightsInput{Search: search, Preferences: prefs})
	if resp, ok := upstreamError(err); ok {
		return pkgrouter.Response{Status: http.StatusBadGateway, Body: resp}, nil
	}
	if err != nil {
		return nil, mapScoreError(mapSearchError(err), false)
	}

	return FlightsResponse{
		SearchCriteria: SearchCriteriaResponse{
			DepartureID:  output.SearchCriteria.DepartureID,
			ArrivalID:    output.SearchCriteria.ArrivalID,
			OutboundDate: output.SearchCriteria.OutboundDate,
			ReturnDate:   output.SearchCriteria.ReturnDate,
			Currency:     output.SearchCriteria.Currency,
		},
		ScoreResponse: NewScoreResponse(&output.ScoreOutput),
	}, nil
}

func upstreamError(err error) (UpstreamErrorResponse, bool) {
	var statusErr *provider.StatusError
	if !errors.As(err, &statusErr) {
		return UpstreamErrorResponse{}, false
	}
	return UpstreamErrorResponse{
		Error:      "Failed to retrieve data from " + statusErr.Provider,
		StatusCode: statusErr.StatusCode,
	}, true
}

func mapSearchError(err error) error {
	if errors.Is(err, provider.ErrPayloadTooLarge) {
		return pkgerror.WrapBusiness(err, "flight provider response too large", pkgerror.CodeUpstream)
	}
	return err
}

// mapScoreError turns usecase failures into client errors. Payload defects
// are the caller's fault only when the caller supplied the payload.
func mapScoreError(err error, clientPayload bool) error {
	switch {
	case errors.Is(err, usecase.ErrInsufficientData):
		return pkgerror.WrapBusiness(err, "no flights found for the requested route", pkgerror.CodeUnprocessable)
	case errors.Is(err, usecase.ErrPreferenceOutOfRange):
		return pkgerror.WrapBusiness(err, "preference weights must be between -5 and 5", pkgerror.CodeInvalidInput)
	case errors.Is(err, usecase.ErrMissingRoute):
		return pkgerror.WrapBusiness(err, "departure_id and arrival_id are required", pkgerror.CodeInvalidInput)
	case !clientPayload:
		return err
	case errors.Is(err, usecase.ErrMalformedPayload),
		errors.Is(err, usecase.ErrMissingField),
		errors.Is(err, usecase.ErrInvalidTimestamp):
		return pkgerror.WrapBusiness(err, err.Error(), pkgerror.CodeUnprocessable)
	}
	return err
}

func NewScoreResponse(output *usecase.ScoreOutput) ScoreResponse {
	return ScoreResponse{
		Flights:          mapScoredFlights(output.Result.Flights),
		AvgCost:          output.Result.AvgCost.InexactFloat64(),
		AvgDuration:      output.Result.AvgDuration,
		Currency:         output.Currency,
		GoogleFlightsURL: output.GoogleFlightsURL,
	}
}

func NewFlightResponses(flights []entity.Flight) []FlightResponse {
	resp := make([]FlightResponse, 0, len(flights))
	for _, flight := range flights {
		resp = append(resp, mapFlight(flight))
	}
	return resp
}

func mapScoredFlights(flights []entity.ScoredFlight) []ScoredFlightResponse {
	resp := make([]ScoredFlightResponse, 0, len(flights))
	for _, flight := range flights {
		resp = append(resp, ScoredFlightResponse{
			FlightResponse: mapFlight(flight.Flight),
			BinScore:       flight.BinScore[:],
			Score:          flight.Score,
		})
	}
	return resp
}

func mapFlight(flight entity.Flight) FlightResponse {
	return FlightResponse{
		DepartureAirport: flight.DepartureAirport,
		ArrivalAirport:   flight.ArrivalAirport,
		DepartureTime:    flight.DepartureTime.Format(time.RFC3339),
		ArrivalTime:      flight.ArrivalTime.Format(time.RFC3339),
		Duration:         flight.DurationMinutes,
		Airline:          flight.Airline,
		AirlineLogo:      flight.AirlineLogo,
		FlightNumber:     flight.FlightNumber,
		Cost:             flight.Cost.InexactFloat64(),
		CostFormatted:    formatMoney(flight.Cost, flight.Currency),
		Currency:         flight.Currency,
		IsRedeye:         flight.IsRedeye,
	}
}
