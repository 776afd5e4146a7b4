package inbound

import (
	"context"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgrouter"
)

type uc interface {
	Search(ctx context.Context, in usecase.SearchInput) (*usecase.SearchOutput, error)
	Score(ctx context.Context, in usecase.ScoreInput) (*usecase.ScoreOutput, error)
	Flights(ctx context.Context, in usecase.FlightsInput) (*usecase.FlightsOutput, error)
}

// SearchDefaults fill search parameters a request leaves out. Dates use
// the YYYY-MM-DD layout.
type SearchDefaults struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   string
	Currency     string
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, defaults SearchDefaults) {
	end := &HTTPEndpoint{uc: uc, defaults: defaults}

	r.GET("/api/hello", end.Hello)
	r.GET("/api/search", end.Search)
	r.GET("/api/score", end.Score)
	r.POST("/api/score", end.Score)
	r.GET("/api/flights", end.Flights)
}
