package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flight is one direct leg between the requested airports, with times in
// the target zone.
type Flight struct {
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	DurationMinutes  float64
	Airline          string
	AirlineLogo      string
	FlightNumber     string
	Cost             decimal.Decimal
	Currency         string
	IsRedeye         bool
}

type Preferences struct {
	Cost     float64
	Duration float64
	Redeye   float64
}

// BinScore holds the sign of each preference dimension, ordered cost,
// duration, redeye. Every entry is -1 or +1.
type BinScore [3]int

type ScoredFlight struct {
	Flight
	BinScore BinScore
	Score    float64
}

type ScoreResult struct {
	Flights     []ScoredFlight
	AvgCost     decimal.Decimal
	AvgDuration float64
}
