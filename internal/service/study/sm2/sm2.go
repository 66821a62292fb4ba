// Package sm2 implements the simplified SM-2 spaced-repetition algorithm.
//
// The whole package is pure: no clocks, no storage, no logging. The caller
// supplies the current state and the review time and gets the next state back.
package sm2

import (
	"math"
	"time"
)

// Quality bounds for a submitted review. Quality >= PassThreshold counts
// as a successful recall.
const (
	QualityMin    = 0
	QualityMax    = 5
	PassThreshold = 3
)

// Params holds the tunable bounds of the algorithm.
type Params struct {
	DefaultEaseFactor float64
	MinEaseFactor     float64
}

// DefaultParams returns the classic SM-2 constants.
func DefaultParams() Params {
	return Params{
		DefaultEaseFactor: 2.5,
		MinEaseFactor:     1.3,
	}
}

// State is the scheduling state of one (user, card) pair.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetition   int
}

// NewState returns the state of a never-studied card.
func NewState(p Params) State {
	return State{EaseFactor: p.DefaultEaseFactor, IntervalDays: 0, Repetition: 0}
}

// Schedule is the result of applying a review.
type Schedule struct {
	State State
	DueAt time.Time
}

// ValidQuality reports whether q is an acceptable quality score.
func ValidQuality(q int) bool {
	return q >= QualityMin && q <= QualityMax
}

// Apply computes the next scheduling state for a review of quality q at
// time now. Callers must validate q beforehand; out-of-range values are
// clamped rather than rejected here.
//
// Pass (q >= 3): the interval sequence is 1, 6, then round(prev * ease);
// repetition increments and the ease factor moves by the SM-2 delta,
// floored at MinEaseFactor.
// Fail (q < 3): repetition resets to 0, the interval resets to 1 day and
// the ease factor is left unchanged.
func Apply(p Params, s State, q int, now time.Time) Schedule {
	if q < QualityMin {
		q = QualityMin
	}
	if q > QualityMax {
		q = QualityMax
	}

	next := s
	if q >= PassThreshold {
		switch s.Repetition {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EaseFactor))
		}
		next.Repetition = s.Repetition + 1

		miss := float64(QualityMax - q)
		next.EaseFactor = s.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
		if next.EaseFactor < p.MinEaseFactor {
			next.EaseFactor = p.MinEaseFactor
		}
	} else {
		next.Repetition = 0
		next.IntervalDays = 1
	}

	return Schedule{
		State: next,
		DueAt: now.AddDate(0, 0, next.IntervalDays),
	}
}
