package usecase

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
)

// The raw score of three unit comparisons lies in [-15, 15] as long as no
// weight exceeds MaxPreferenceWeight in magnitude; it is then mapped onto
// [0, 100].
const (
	MaxPreferenceWeight = 5
	scoreOffset         = 15.0
	scoreSpan           = 30.0
)

var (
	ErrInsufficientData     = errors.New("no flights to score")
	ErrPreferenceOutOfRange = errors.New("preference weight out of range")
)

// ScoreFlights compares each flight against the population averages and
// weights the outcome with prefs. The input slice is left untouched.
func ScoreFlights(flights []entity.Flight, prefs entity.Preferences) (*entity.ScoreResult, error) {
	if len(flights) == 0 {
		return nil, ErrInsufficientData
	}
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}

	avgCost := averageCost(flights)
	avgDuration := averageDuration(flights)

	scored := make([]entity.ScoredFlight, 0, len(flights))
	for _, f := range flights {
		bin := entity.BinScore{
			direction(f.Cost.LessThanOrEqual(avgCost)),
			direction(f.DurationMinutes <= avgDuration),
			direction(!f.IsRedeye),
		}
		raw := float64(bin[0])*prefs.Cost +
			float64(bin[1])*prefs.Duration +
			float64(bin[2])*prefs.Redeye

		scored = append(scored, entity.ScoredFlight{
			Flight:   f,
			BinScore: bin,
			Score:    ((raw + scoreOffset) / scoreSpan) * 100,
		})
	}

	return &entity.ScoreResult{
		Flights:     scored,
		AvgCost:     avgCost,
		AvgDuration: avgDuration,
	}, nil
}

func validatePreferences(prefs entity.Preferences) error {
	for _, w := range []float64{prefs.Cost, prefs.Duration, prefs.Redeye} {
		if math.IsNaN(w) || math.Abs(w) > MaxPreferenceWeight {
			return ErrPreferenceOutOfRange
		}
	}
	return nil
}

func direction(good bool) int {
	if good {
		return 1
	}
	return -1
}

func averageCost(flights []entity.Flight) decimal.Decimal {
	sum := decimal.Zero
	for _, f := range flights {
		sum = sum.Add(f.Cost)
	}
	return sum.Div(decimal.NewFromInt(int64(len(flights))))
}

func averageDuration(flights []entity.Flight) float64 {
	var sum float64
	for _, f := range flights {
		sum += f.DurationMinutes
	}
	return sum / float64(len(flights))
}
