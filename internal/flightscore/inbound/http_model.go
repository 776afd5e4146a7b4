package inbound

import "encoding/json"

type HelloResponse struct {
	Message string `json:"message"`
}

type UpstreamErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

type ScoreRequest struct {
	FlightData         json.RawMessage `json:"flight_data"`
	DepartureID        string          `json:"departure_id"`
	ArrivalID          string          `json:"arrival_id"`
	CostPreference     *float64        `json:"cost_preference"`
	DurationPreference *float64        `json:"duration_preference"`
	RedeyePreference   *float64        `json:"redeye_preference"`
}

type ScoreResponse struct {
	Flights          []ScoredFlightResponse `json:"flights"`
	AvgCost          float64                `json:"avg_cost"`
	AvgDuration      float64                `json:"avg_duration"`
	Currency         string                 `json:"currency,omitempty"`
	GoogleFlightsURL string                 `json:"google_flights_url,omitempty"`
}

type FlightsResponse struct {
	SearchCriteria SearchCriteriaResponse `json:"search_criteria"`
	ScoreResponse
}

type SearchCriteriaResponse struct {
	DepartureID  string  `json:"departure_id"`
	ArrivalID    string  `json:"arrival_id"`
	OutboundDate string  `json:"outbound_date"`
	ReturnDate   *string `json:"return_date,omitempty"`
	Currency     string  `json:"currency"`
}

type FlightResponse struct {
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	DepartureTime    string  `json:"departure_time"`
	ArrivalTime      string  `json:"arrival_time"`
	Duration         float64 `json:"duration"`
	Airline          string  `json:"airline"`
	AirlineLogo      string  `json:"airline_logo"`
	FlightNumber     string  `json:"flight_number"`
	Cost             float64 `json:"cost"`
	CostFormatted    string  `json:"cost_formatted"`
	Currency         string  `json:"currency"`
	IsRedeye         bool    `json:"is_redeye"`
}

type ScoredFlightResponse struct {
	FlightResponse
	BinScore []int   `json:"bin_score"`
	Score    float64 `json:"score"`
}
