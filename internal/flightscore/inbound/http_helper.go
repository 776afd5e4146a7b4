package inbound

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgerror"
)

const (
	dateLayout   = "2006-01-02"
	maxBodyBytes = 8 << 20
)

func parseSearchInput(q url.Values, d SearchDefaults) (usecase.SearchInput, error) {
	departureID := strings.ToUpper(strings.TrimSpace(valueOrDefault(q, "departure_id", d.DepartureID)))
	arrivalID := strings.ToUpper(strings.TrimSpace(valueOrDefault(q, "arrival_id", d.ArrivalID)))
	if !isCode(departureID) || !isCode(arrivalID) {
		return usecase.SearchInput{}, pkgerror.NewBusiness("departure_id and arrival_id must be 3-letter airport codes", pkgerror.CodeInvalidInput)
	}
	if departureID == arrivalID {
		return usecase.SearchInput{}, pkgerror.NewBusiness("departure_id and arrival_id must differ", pkgerror.CodeInvalidInput)
	}

	outboundDate, err := time.Parse(dateLayout, strings.TrimSpace(valueOrDefault(q, "outbound_date", d.OutboundDate)))
	if err != nil {
		return usecase.SearchInput{}, pkgerror.NewBusiness("invalid outbound_date", pkgerror.CodeInvalidInput)
	}

	// An explicit empty return_date asks for a one-way search.
	var returnDate *time.Time
	if value := strings.TrimSpace(valueOrDefault(q, "return_date", d.ReturnDate)); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			return usecase.SearchInput{}, pkgerror.NewBusiness("invalid return_date", pkgerror.CodeInvalidInput)
		}
		if parsed.Before(outboundDate) {
			return usecase.SearchInput{}, pkgerror.NewBusiness("return_date must not be before outbound_date", pkgerror.CodeInvalidInput)
		}
		returnDate = &parsed
	}

	currency := strings.ToUpper(strings.TrimSpace(valueOrDefault(q, "currency", d.Currency)))
	if !isCode(currency) {
		return usecase.SearchInput{}, pkgerror.NewBusiness("currency must be a 3-letter code", pkgerror.CodeInvalidInput)
	}

	return usecase.SearchInput{
		DepartureID:  departureID,
		ArrivalID:    arrivalID,
		OutboundDate: outboundDate,
		ReturnDate:   returnDate,
		Currency:     currency,
	}, nil
}

// parsePreferences reads the three weights from q. With required set, a
// missing key is rejected instead of defaulting to 0.
func parsePreferences(q url.Values, required bool) (entity.Preferences, error) {
	prefs := entity.Preferences{}
	for _, field := range []struct {
		key    string
		target *float64
	}{
		{key: "cost_preference", target: &prefs.Cost},
		{key: "duration_preference", target: &prefs.Duration},
		{key: "redeye_preference", target: &prefs.Redeye},
	} {
		value := strings.TrimSpace(q.Get(field.key))
		if value == "" {
			if required {
				return prefs, pkgerror.NewBusiness(field.key+" is required", pkgerror.CodeInvalidInput)
			}
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return prefs, pkgerror.NewBusiness("invalid "+field.key, pkgerror.CodeInvalidInput)
		}
		*field.target = parsed
	}
	return prefs, validateWeights(prefs)
}

// parseScoreInput accepts a JSON body on POST and query parameters on GET,
// where flight_data carries the encoded payload.
func parseScoreInput(r *http.Request) (usecase.ScoreInput, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		prefs, err := parsePreferences(q, true)
		if err != nil {
			return usecase.ScoreInput{}, err
		}
		data := strings.TrimSpace(q.Get("flight_data"))
		if data == "" {
			return usecase.ScoreInput{}, pkgerror.NewBusiness("flight_data is required", pkgerror.CodeInvalidInput)
		}
		return usecase.ScoreInput{
			Payload:     []byte(data),
			DepartureID: strings.TrimSpace(q.Get("departure_id")),
			ArrivalID:   strings.TrimSpace(q.Get("arrival_id")),
			Preferences: prefs,
		}, nil
	}

	var req ScoreRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return usecase.ScoreInput{}, pkgerror.NewBusiness("request body is required", pkgerror.CodeInvalidInput)
		}
		return usecase.ScoreInput{}, pkgerror.NewBusiness("invalid request body", pkgerror.CodeInvalidInput)
	}
	if len(req.FlightData) == 0 || string(req.FlightData) == "null" {
		return usecase.ScoreInput{}, pkgerror.NewBusiness("flight_data is required", pkgerror.CodeInvalidInput)
	}

	prefs, err := req.preferences()
	if err != nil {
		return usecase.ScoreInput{}, err
	}

	return usecase.ScoreInput{
		Payload:     req.FlightData,
		DepartureID: strings.TrimSpace(req.DepartureID),
		ArrivalID:   strings.TrimSpace(req.ArrivalID),
		Preferences: prefs,
	}, nil
}

func validateWeights(p entity.Preferences) error {
	for _, w := range []float64{p.Cost, p.Duration, p.Redeye} {
		if math.IsNaN(w) || math.Abs(w) > usecase.MaxPreferenceWeight {
			return pkgerror.NewBusiness("preference weights must be between -5 and 5", pkgerror.CodeInvalidInput)
		}
	}
	return nil
}

func valueOrDefault(q url.Values, key, fallback string) string {
	if !q.Has(key) {
		return fallback
	}
	return q.Get(key)
}

func (req ScoreRequest) preferences() (entity.Preferences, error) {
	for _, field := range []struct {
		key   string
		value *float64
	}{
		{key: "cost_preference", value: req.CostPreference},
		{key: "duration_preference", value: req.DurationPreference},
		{key: "redeye_preference", value: req.RedeyePreference},
	} {
		if field.value == nil {
			return entity.Preferences{}, pkgerror.NewBusiness(field.key+" is required", pkgerror.CodeInvalidInput)
		}
	}
	prefs := entity.Preferences{
		Cost:     *req.CostPreference,
		Duration: *req.DurationPreference,
		Redeye:   *req.RedeyePreference,
	}
	return prefs, validateWeights(prefs)
}

func isCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, c := range value {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func formatMoney(amount decimal.Decimal, currency string) string {
	negative := amount.IsNegative()
	value := amount.Abs().StringFixed(2)
	whole, frac := value[:len(value)-3], value[len(value)-2:]
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	value = whole + "." + frac
	if negative {
		value = "-" + value
	}
	if currency == "" {
		return value
	}
	return currency + " " + value
}
