package dial

import (
	"math"

	"DialMeter/internal/domain/models"
)

// NormalizeOdds converts decimal odds into percentages that sum to 100.
// implied = 1/odds, normalized = 100 * implied / sum(implied).
// The input map is not modified.
func NormalizeOdds(odds map[string]float64) (map[string]float64, error) {
	if len(odds) == 0 {
		return nil, &models.InvalidOddsError{}
	}

	implied := make(map[string]float64, len(odds))
	var total float64
	for name, o := range odds {
		if o <= 0 || math.IsNaN(o) || math.IsInf(o, 0) {
			return nil, &models.InvalidOddsError{Outcome: name, Odds: o}
		}
		p := 1 / o
		implied[name] = p
		total += p
	}

	out := make(map[string]float64, len(implied))
	for name, p := range implied {
		out[name] = 100 * p / total
	}
	return out, nil
}
