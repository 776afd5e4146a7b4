package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrPayloadTooLarge = errors.New("provider payload too large")

// StatusError reports a non-200 answer from the search provider.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Provider, e.StatusCode)
}

type SearchRequest struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate time.Time
	ReturnDate   *time.Time
	Currency     string
}

// Provider returns the raw search payload for a route.
type Provider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]byte, error)
}
