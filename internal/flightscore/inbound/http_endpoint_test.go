package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkguid"
)

type fakeUsecase struct {
	searchOut *usecase.SearchOutput
	scoreOut  *usecase.ScoreOutput
	err       error

	gotSearch  usecase.SearchInput
	gotScore   usecase.ScoreInput
	gotFlights usecase.FlightsInput
}

func (f *fakeUsecase) Search(_ context.Context, in usecase.SearchInput) (*usecase.SearchOutput, error) {
	f.gotSearch = in
	if f.err != nil {
		return nil, f.err
	}
	return f.searchOut, nil
}

func (f *fakeUsecase) Score(_ context.Context, in usecase.ScoreInput) (*usecase.ScoreOutput, error) {
	f.gotScore = in
	if f.err != nil {
		return nil, f.err
	}
	return f.scoreOut, nil
}

func (f *fakeUsecase) Flights(_ context.Context, in usecase.FlightsInput) (*usecase.FlightsOutput, error) {
	f.gotFlights = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.FlightsOutput{
		SearchCriteria: usecase.SearchCriteria{
			DepartureID:  in.Search.DepartureID,
			ArrivalID:    in.Search.ArrivalID,
			OutboundDate: in.Search.OutboundDate.Format(dateLayout),
			Currency:     in.Search.Currency,
		},
		ScoreOutput: *f.scoreOut,
	}, nil
}

var defaults = SearchDefaults{
	DepartureID:  "YYZ",
	ArrivalID:    "LAS",
	OutboundDate: "2024-08-12",
	ReturnDate:   "2024-08-20",
	Currency:     "CAD",
}

func newTestRouter(uc uc) *pkgrouter.Router {
	r := pkgrouter.NewRouter(pkguid.NewUUID())
	RegisterHTTPEndpoint(r, uc, defaults)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func sampleScoreOutput(t *testing.T) *usecase.ScoreOutput {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	dep := time.Date(2024, 8, 12, 2, 30, 0, 0, loc)
	return &usecase.ScoreOutput{
		Result: &entity.ScoreResult{
			Flights: []entity.ScoredFlight{{
				Flight: entity.Flight{
					DepartureAirport: "Toronto Pearson International Airport",
					ArrivalAirport:   "Harry Reid International Airport",
					DepartureTime:    dep,
					ArrivalTime:      dep.Add(5 * time.Hour),
					DurationMinutes:  300,
					Airline:          "Air Canada",
					AirlineLogo:      "ac.png",
					FlightNumber:     "AC 1177",
					Cost:             decimal.NewFromInt(1234),
					Currency:         "CAD",
					IsRedeye:         true,
				},
				BinScore: entity.BinScore{1, -1, 1},
				Score:    60,
			}},
			AvgCost:     decimal.RequireFromString("1234.5"),
			AvgDuration: 300,
		},
		Currency:         "CAD",
		GoogleFlightsURL: "https://www.google.com/travel/flights?hl=en",
	}
}

func TestHello(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeUsecase{}), http.MethodGet, "/api/hello", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body["message"] != "Hello from Flask!" {
		t.Errorf("message: got %v", body["message"])
	}
}

func TestSearch_UsesDefaults(t *testing.T) {
	fake := &fakeUsecase{searchOut: &usecase.SearchOutput{Provider: "SerpAPI", Payload: []byte(`{"best_flights":[]}`)}}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/search", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := body["best_flights"]; !ok {
		t.Errorf("payload not passed through: %v", body)
	}
	got := fake.gotSearch
	if got.DepartureID != "YYZ" || got.ArrivalID != "LAS" || got.Currency != "CAD" {
		t.Errorf("defaults not applied: %+v", got)
	}
	if got.OutboundDate.Format(dateLayout) != "2024-08-12" {
		t.Errorf("outbound: got %v", got.OutboundDate)
	}
	if got.ReturnDate == nil || got.ReturnDate.Format(dateLayout) != "2024-08-20" {
		t.Errorf("return: got %v", got.ReturnDate)
	}
}

func TestSearch_QueryOverrides(t *testing.T) {
	fake := &fakeUsecase{searchOut: &usecase.SearchOutput{Payload: []byte(`{}`)}}
	q := url.Values{
		"departure_id":  {"jfk"},
		"arrival_id":    {"LAX"},
		"outbound_date": {"2024-09-01"},
		"return_date":   {""},
		"currency":      {"usd"},
	}

	rec, _ := do(t, newTestRouter(fake), http.MethodGet, "/api/search?"+q.Encode(), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	got := fake.gotSearch
	if got.DepartureID != "JFK" || got.ArrivalID != "LAX" || got.Currency != "USD" {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.ReturnDate != nil {
		t.Errorf("empty return_date should be one-way, got %v", got.ReturnDate)
	}
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "short airport", query: "departure_id=YY"},
		{name: "numeric airport", query: "arrival_id=L4S"},
		{name: "same airports", query: "departure_id=LAS"},
		{name: "bad outbound", query: "outbound_date=12-08-2024"},
		{name: "bad return", query: "return_date=2024-13-01"},
		{name: "return before outbound", query: "outbound_date=2024-08-20&return_date=2024-08-12"},
		{name: "bad currency", query: "currency=DOLLARS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsecase{}
			rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/search?"+tt.query, nil)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
			}
			if body["code"] != "INVALID_INPUT" {
				t.Errorf("code: got %v", body["code"])
			}
			if fake.gotSearch.DepartureID != "" {
				t.Error("usecase should not be called")
			}
		})
	}
}

func TestSearch_UpstreamStatus(t *testing.T) {
	fake := &fakeUsecase{err: fmt.Errorf("search SerpAPI: %w", &provider.StatusError{Provider: "SerpAPI", StatusCode: 401})}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/search", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body["error"] != "Failed to retrieve data from SerpAPI" {
		t.Errorf("error: got %v", body["error"])
	}
	if body["status_code"] != float64(401) {
		t.Errorf("status_code: got %v", body["status_code"])
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	fake := &fakeUsecase{err: errors.New("search SerpAPI: connection refused")}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/search", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body["error_id"] == "" || body["error_id"] == nil {
		t.Errorf("missing error_id: %v", body)
	}
}

func TestSearch_PayloadTooLarge(t *testing.T) {
	fake := &fakeUsecase{err: fmt.Errorf("search SerpAPI: %w", provider.ErrPayloadTooLarge)}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/search", nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if body["code"] != "UPSTREAM_FAILURE" {
		t.Errorf("code: got %v", body["code"])
	}
}

func TestSearch_InvalidUpstreamJSON(t *testing.T) {
	fake := &fakeUsecase{searchOut: &usecase.SearchOutput{Provider: "File", Payload: []byte(`not json`)}}

	rec, _ := do(t, newTestRouter(fake), http.MethodGet, "/api/search", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestScore_Post(t *testing.T) {
	fake := &fakeUsecase{scoreOut: sampleScoreOutput(t)}
	reqBody := []byte(`{
		"flight_data": {"best_flights": []},
		"departure_id": "YYZ",
		"arrival_id": "LAS",
		"cost_preference": 2,
		"duration_preference": -1.5,
		"redeye_preference": 0
	}`)

	rec, body := do(t, newTestRouter(fake), http.MethodPost, "/api/score", reqBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	got := fake.gotScore
	if got.DepartureID != "YYZ" || got.ArrivalID != "LAS" {
		t.Errorf("route: got %+v", got)
	}
	if got.Preferences != (entity.Preferences{Cost: 2, Duration: -1.5}) {
		t.Errorf("preferences: got %+v", got.Preferences)
	}
	if string(got.Payload) != `{"best_flights": []}` {
		t.Errorf("payload: got %s", got.Payload)
	}

	if body["avg_cost"] != 1234.5 || body["avg_duration"] != float64(300) {
		t.Errorf("averages: got %v %v", body["avg_cost"], body["avg_duration"])
	}
	if body["currency"] != "CAD" || body["google_flights_url"] == nil {
		t.Errorf("payload metadata missing: %v", body)
	}

	flights, ok := body["flights"].([]any)
	if !ok || len(flights) != 1 {
		t.Fatalf("flights: got %v", body["flights"])
	}
	flight := flights[0].(map[string]any)
	want := map[string]any{
		"departure_airport": "Toronto Pearson International Airport",
		"departure_time":    "2024-08-12T02:30:00-04:00",
		"arrival_time":      "2024-08-12T07:30:00-04:00",
		"duration":          float64(300),
		"flight_number":     "AC 1177",
		"cost":              float64(1234),
		"cost_formatted":    "CAD 1,234.00",
		"is_redeye":         true,
		"score":             float64(60),
	}
	for key, value := range want {
		if flight[key] != value {
			t.Errorf("%s: got %v want %v", key, flight[key], value)
		}
	}
	bins, _ := flight["bin_score"].([]any)
	if len(bins) != 3 || bins[0] != float64(1) || bins[1] != float64(-1) || bins[2] != float64(1) {
		t.Errorf("bin_score: got %v", flight["bin_score"])
	}
}

func TestScore_Get(t *testing.T) {
	fake := &fakeUsecase{scoreOut: sampleScoreOutput(t)}
	q := url.Values{
		"flight_data":         {`{"best_flights":[]}`},
		"cost_preference":     {"0"},
		"duration_preference": {"0"},
		"redeye_preference":   {"-3"},
	}

	rec, _ := do(t, newTestRouter(fake), http.MethodGet, "/api/score?"+q.Encode(), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if fake.gotScore.Preferences.Redeye != -3 {
		t.Errorf("redeye: got %v", fake.gotScore.Preferences.Redeye)
	}
	if fake.gotScore.DepartureID != "" {
		t.Errorf("departure should be left for the payload, got %q", fake.gotScore.DepartureID)
	}
}

func TestScore_GetRequiresPreferences(t *testing.T) {
	q := url.Values{
		"flight_data":       {`{"best_flights":[]}`},
		"cost_preference":   {"1"},
		"redeye_preference": {"1"},
	}
	fake := &fakeUsecase{}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/score?"+q.Encode(), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if body["error"] != "duration_preference is required" {
		t.Errorf("error: got %v", body["error"])
	}
	if fake.gotScore.Payload != nil {
		t.Error("usecase should not be called")
	}
}

func TestScore_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "empty body", body: ``},
		{name: "not json", body: `{`},
		{name: "missing flight_data", body: `{"departure_id":"YYZ"}`},
		{name: "null flight_data", body: `{"flight_data":null}`},
		{name: "weight too large", body: `{"flight_data":{},"cost_preference":6,"duration_preference":0,"redeye_preference":0}`},
		{name: "weight too small", body: `{"flight_data":{},"cost_preference":0,"duration_preference":0,"redeye_preference":-5.5}`},
		{
			name:    "missing cost_preference",
			body:    `{"flight_data":{"best_flights":[]},"departure_id":"YYZ","arrival_id":"LAS","duration_preference":1,"redeye_preference":1}`,
			wantMsg: "cost_preference is required",
		},
		{
			name:    "missing duration_preference",
			body:    `{"flight_data":{},"cost_preference":1,"redeye_preference":1}`,
			wantMsg: "duration_preference is required",
		},
		{
			name:    "missing redeye_preference",
			body:    `{"flight_data":{},"cost_preference":1,"duration_preference":1}`,
			wantMsg: "redeye_preference is required",
		},
		{
			name:    "no preferences",
			body:    `{"flight_data":{},"departure_id":"YYZ","arrival_id":"LAS"}`,
			wantMsg: "cost_preference is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsecase{}
			rec, body := do(t, newTestRouter(fake), http.MethodPost, "/api/score", []byte(tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
			}
			if body["code"] != "INVALID_INPUT" {
				t.Errorf("code: got %v", body["code"])
			}
			if tt.wantMsg != "" && body["error"] != tt.wantMsg {
				t.Errorf("error: got %v want %q", body["error"], tt.wantMsg)
			}
			if fake.gotScore.Payload != nil {
				t.Error("usecase should not be called")
			}
		})
	}
}

func TestScore_UsecaseErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "no flights", err: usecase.ErrInsufficientData, wantCode: http.StatusUnprocessableEntity},
		{name: "malformed payload", err: fmt.Errorf("%w: unexpected end of JSON input", usecase.ErrMalformedPayload), wantCode: http.StatusUnprocessableEntity},
		{name: "missing field", err: fmt.Errorf("%w: best_flights[0].price", usecase.ErrMissingField), wantCode: http.StatusUnprocessableEntity},
		{name: "bad timestamp", err: fmt.Errorf("%w: best_flights[0].flights[0]", usecase.ErrInvalidTimestamp), wantCode: http.StatusUnprocessableEntity},
		{name: "missing route", err: usecase.ErrMissingRoute, wantCode: http.StatusBadRequest},
		{name: "out of range", err: usecase.ErrPreferenceOutOfRange, wantCode: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsecase{err: tt.err}
			rec, _ := do(t, newTestRouter(fake), http.MethodPost, "/api/score", []byte(`{"flight_data":{},"cost_preference":0,"duration_preference":0,"redeye_preference":0}`))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d want %d body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestFlights(t *testing.T) {
	fake := &fakeUsecase{scoreOut: sampleScoreOutput(t)}

	rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/flights?cost_preference=1&duration_preference=-2", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if fake.gotFlights.Preferences != (entity.Preferences{Cost: 1, Duration: -2}) {
		t.Errorf("preferences: got %+v", fake.gotFlights.Preferences)
	}
	criteria, ok := body["search_criteria"].(map[string]any)
	if !ok || criteria["departure_id"] != "YYZ" || criteria["outbound_date"] != "2024-08-12" {
		t.Errorf("search_criteria: got %v", body["search_criteria"])
	}
	if flights, ok := body["flights"].([]any); !ok || len(flights) != 1 {
		t.Errorf("flights: got %v", body["flights"])
	}
}

func TestFlights_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
	}{
		{name: "bad preference", query: "cost_preference=abc", wantCode: http.StatusBadRequest},
		{name: "preference out of range", query: "duration_preference=9", wantCode: http.StatusBadRequest},
		{name: "bad route", query: "arrival_id=LASX", wantCode: http.StatusBadRequest},
		{name: "upstream status", err: &provider.StatusError{Provider: "SerpAPI", StatusCode: 500}, wantCode: http.StatusBadGateway},
		{name: "no flights", err: usecase.ErrInsufficientData, wantCode: http.StatusUnprocessableEntity},
		{name: "upstream payload too large", err: fmt.Errorf("search SerpAPI: %w", provider.ErrPayloadTooLarge), wantCode: http.StatusBadGateway},
		{name: "upstream payload defect", err: fmt.Errorf("%w: search_parameters.currency", usecase.ErrMissingField), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsecase{err: tt.err, scoreOut: sampleScoreOutput(t)}
			rec, body := do(t, newTestRouter(fake), http.MethodGet, "/api/flights?"+tt.query, nil)

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d want %d body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.name == "upstream status" && !strings.Contains(fmt.Sprint(body["error"]), "SerpAPI") {
				t.Errorf("error: got %v", body["error"])
			}
		})
	}
}
