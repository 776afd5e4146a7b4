package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Embedded zone data keeps conversions identical on hosts without tzdata.
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
)

const (
	segmentTimeLayout = "2006-01-02 15:04"
	DefaultTimezone   = "America/New_York"
	redeyeEndHour     = 4
)

var (
	ErrMalformedPayload = errors.New("malformed flight payload")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

type rawAirport struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
	Time *string `json:"time"`
}

type rawSegment struct {
	DepartureAirport *rawAirport `json:"departure_airport"`
	ArrivalAirport   *rawAirport `json:"arrival_airport"`
	Airline          *string     `json:"airline"`
	AirlineLogo      *string     `json:"airline_logo"`
	FlightNumber     *string     `json:"flight_number"`
}

type rawItinerary struct {
	Flights *[]rawSegment    `json:"flights"`
	Price   *decimal.Decimal `json:"price"`
}

type rawPayload struct {
	BestFlights      *[]rawItinerary `json:"best_flights"`
	SearchParameters *struct {
		Currency    *string `json:"currency"`
		DepartureID string  `json:"departure_id"`
		ArrivalID   string  `json:"arrival_id"`
	} `json:"search_parameters"`
	SearchMetadata *struct {
		GoogleFlightsURL string `json:"google_flights_url"`
	} `json:"search_metadata"`
}

func (p *rawPayload) currency() (string, error) {
	if p.SearchParameters == nil {
		return "", fmt.Errorf("%w: search_parameters", ErrMissingField)
	}
	return required(p.SearchParameters.Currency, "search_parameters.currency")
}

func (p *rawPayload) optionalCurrency() string {
	if p.SearchParameters == nil || p.SearchParameters.Currency == nil {
		return ""
	}
	return *p.SearchParameters.Currency
}

// route falls back to the ids the payload was searched with.
func (p *rawPayload) route(departureID, arrivalID string) (string, string) {
	if p.SearchParameters == nil {
		return departureID, arrivalID
	}
	if departureID == "" {
		departureID = p.SearchParameters.DepartureID
	}
	if arrivalID == "" {
		arrivalID = p.SearchParameters.ArrivalID
	}
	return departureID, arrivalID
}

func (p *rawPayload) googleFlightsURL() string {
	if p.SearchMetadata == nil {
		return ""
	}
	return p.SearchMetadata.GoogleFlightsURL
}

// LoadTimezone resolves the zone normalized flights are expressed in. An
// empty name selects US Eastern.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", name, err)
	}
	return loc, nil
}

// defaultLocation never fails since zone data is embedded.
func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NormalizeFlights flattens the best_flights itineraries of a Google Flights
// payload into one record per segment that goes exactly from departureID to
// arrivalID. Segment times are read as GMT and converted to loc, or to US
// Eastern when loc is nil. A payload without best_flights yields no flights
// and no error.
func NormalizeFlights(payload []byte, departureID, arrivalID string, loc *time.Location) ([]entity.Flight, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	return normalizePayload(raw, departureID, arrivalID, loc)
}

func decodePayload(payload []byte) (*rawPayload, error) {
	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &raw, nil
}

func normalizePayload(raw *rawPayload, departureID, arrivalID string, loc *time.Location) ([]entity.Flight, error) {
	flights := make([]entity.Flight, 0)
	if raw.BestFlights == nil {
		return flights, nil
	}
	if loc == nil {
		loc = defaultLocation()
	}

	for i, itinerary := range *raw.BestFlights {
		itineraryPath := fmt.Sprintf("best_flights[%d]", i)
		segments, err := required(itinerary.Flights, itineraryPath+".flights")
		if err != nil {
			return nil, err
		}

		for j, segment := range segments {
			flight, ok, err := normalizeSegment(segment, fmt.Sprintf("%s.flights[%d]", itineraryPath, j), departureID, arrivalID, loc)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			price, err := required(itinerary.Price, itineraryPath+".price")
			if err != nil {
				return nil, err
			}
			currency, err := raw.currency()
			if err != nil {
				return nil, err
			}
			flight.Cost = price
			flight.Currency = currency
			flights = append(flights, flight)
		}
	}

	return flights, nil
}

// normalizeSegment reports ok=false for segments off the requested route.
// Display fields are only required for segments that are kept.
func normalizeSegment(s rawSegment, path, departureID, arrivalID string, loc *time.Location) (entity.Flight, bool, error) {
	departure, err := required(s.DepartureAirport, path+".departure_airport")
	if err != nil {
		return entity.Flight{}, false, err
	}
	arrival, err := required(s.ArrivalAirport, path+".arrival_airport")
	if err != nil {
		return entity.Flight{}, false, err
	}

	departAt, err := parseSegmentTime(departure.Time, path+".departure_airport.time", loc)
	if err != nil {
		return entity.Flight{}, false, err
	}
	arriveAt, err := parseSegmentTime(arrival.Time, path+".arrival_airport.time", loc)
	if err != nil {
		return entity.Flight{}, false, err
	}

	// The provider does not roll the arrival date for overnight legs.
	if arriveAt.Before(departAt) {
		arriveAt = arriveAt.Add(24 * time.Hour)
	}

	departID, err := required(departure.ID, path+".departure_airport.id")
	if err != nil {
		return entity.Flight{}, false, err
	}
	arriveID, err := required(arrival.ID, path+".arrival_airport.id")
	if err != nil {
		return entity.Flight{}, false, err
	}
	if departID != departureID || arriveID != arrivalID {
		return entity.Flight{}, false, nil
	}

	flight := entity.Flight{
		DepartureTime:   departAt,
		ArrivalTime:     arriveAt,
		DurationMinutes: arriveAt.Sub(departAt).Minutes(),
		IsRedeye:        departAt.Hour() < redeyeEndHour,
	}
	fields := []struct {
		target *string
		value  *string
		path   string
	}{
		{&flight.DepartureAirport, departure.Name, path + ".departure_airport.name"},
		{&flight.ArrivalAirport, arrival.Name, path + ".arrival_airport.name"},
		{&flight.Airline, s.Airline, path + ".airline"},
		{&flight.AirlineLogo, s.AirlineLogo, path + ".airline_logo"},
		{&flight.FlightNumber, s.FlightNumber, path + ".flight_number"},
	}
	for _, f := range fields {
		value, err := required(f.value, f.path)
		if err != nil {
			return entity.Flight{}, false, err
		}
		*f.target = value
	}

	return flight, true, nil
}

func parseSegmentTime(value *string, path string, loc *time.Location) (time.Time, error) {
	raw, err := required(value, path)
	if err != nil {
		return time.Time{}, err
	}
	parsed, err := time.ParseInLocation(segmentTimeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidTimestamp, path, raw, err)
	}
	return parsed.In(loc), nil
}

func required[T any](value *T, path string) (T, error) {
	if value == nil {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	return *value, nil
}
