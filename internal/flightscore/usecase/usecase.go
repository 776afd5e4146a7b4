package usecase

import (
	"time"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
)

type Dependency struct {
	Provider provider.Provider
	Location *time.Location
}

type Usecase struct {
	provider provider.Provider
	location *time.Location
}

func New(dep Dependency) *Usecase {
	loc := dep.Location
	if loc == nil {
		loc = defaultLocation()
	}
	return &Usecase{
		provider: dep.Provider,
		location: loc,
	}
}
