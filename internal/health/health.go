package health

import (
	"errors"
	"time"
)

// DaysPerYear converts a rated lifetime in years to days.
const DaysPerYear = 365

// ErrMissingInstallDate reports a component record with no install date.
// The result accompanying it is still usable: remaining life falls back to
// the full rated lifetime. Callers must surface the anomaly, not drop it.
var ErrMissingInstallDate = errors.New("health: missing install date")

// Result holds the derived health values for one component.
type Result struct {
	// RemainingDays is the rated lifetime minus elapsed service days,
	// floored at zero.
	RemainingDays float64

	// Score is the normalized remaining-life fraction in [0, 1].
	Score float64

	// FailureProbability is 1 - Score². Always in [0, 1].
	FailureProbability float64
}

// Evaluate derives remaining life, health score and failure probability for
// a component with the given rated lifetime, as of evalDate.
//
// An install date in the future relative to evalDate clamps remaining life
// to the full rated lifetime. A zero install date does the same but also
// returns ErrMissingInstallDate so the anomaly reaches the caller.
//
// A non-positive lifetime yields a zero health score (and therefore a
// failure probability of 1).
func Evaluate(lifetimeYears float64, installDate, evalDate time.Time) (Result, error) {
	lifetimeDays := lifetimeYears * DaysPerYear
	if lifetimeDays <= 0 {
		return Result{RemainingDays: 0, Score: 0, FailureProbability: 1}, nil
	}

	var err error
	remaining := lifetimeDays
	if installDate.IsZero() {
		err = ErrMissingInstallDate
	} else if elapsed := elapsedDays(installDate, evalDate); elapsed > 0 {
		remaining = lifetimeDays - elapsed
		if remaining < 0 {
			remaining = 0
		}
	}

	score := remaining / lifetimeDays
	return Result{
		RemainingDays:      remaining,
		Score:              score,
		FailureProbability: 1 - score*score,
	}, err
}

// elapsedDays returns whole calendar days between install and eval.
// Negative when install is in the future.
func elapsedDays(install, eval time.Time) float64 {
	return float64(int(eval.Sub(install).Hours() / 24))
}
