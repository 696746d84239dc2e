package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Dimension names one axis of compatibility.
type Dimension string

const (
	Harmonic Dimension = "harmonic"
	Rhythmic Dimension = "rhythmic"
	Spectral Dimension = "spectral"
	Energy   Dimension = "energy"
)

// Dimensions lists every dimension in scoring order.
var Dimensions = []Dimension{Harmonic, Rhythmic, Spectral, Energy}

// Weights are linear coefficients applied to each sub-score. They are not
// renormalized by the scorer: weights summing to more than 1 can push the
// total above 100. Use Normalize for a strict percentage.
type Weights struct {
	Harmonic float64 `json:"harmonic"`
	Rhythmic float64 `json:"rhythmic"`
	Spectral float64 `json:"spectral"`
	Energy   float64 `json:"energy"`
}

// DefaultWeights favours key agreement, then tempo.
func DefaultWeights() Weights {
	return Weights{
		Harmonic: 0.4,
		Rhythmic: 0.3,
		Spectral: 0.2,
		Energy:   0.1,
	}
}

func (w Weights) Sum() float64 {
	return w.Harmonic + w.Rhythmic + w.Spectral + w.Energy
}

// Get returns the weight of a single dimension.
func (w Weights) Get(d Dimension) float64 {
	switch d {
	case Harmonic:
		return w.Harmonic
	case Rhythmic:
		return w.Rhythmic
	case Spectral:
		return w.Spectral
	case Energy:
		return w.Energy
	}
	return 0
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	for _, d := range Dimensions {
		v := w.Get(d)
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: %s weight must be a non-negative number", ErrInvalidWeights, d)
		}
	}
	return nil
}

// Normalize scales the weights so they sum to 1.
func (w Weights) Normalize() (Weights, error) {
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	total := w.Sum()
	if total == 0 || math.IsInf(total, 0) {
		return Weights{}, fmt.Errorf("%w: total weight cannot be zero", ErrInvalidWeights)
	}
	return Weights{
		Harmonic: w.Harmonic / total,
		Rhythmic: w.Rhythmic / total,
		Spectral: w.Spectral / total,
		Energy:   w.Energy / total,
	}, nil
}

// WeightsFromMap builds weights from dimension names. Dimensions left out of
// m are zero. Unknown names are an error.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	var w Weights
	var unknown []string
	for name, v := range m {
		switch Dimension(strings.ToLower(strings.TrimSpace(name))) {
		case Harmonic:
			w.Harmonic = v
		case Rhythmic:
			w.Rhythmic = v
		case Spectral:
			w.Spectral = v
		case Energy:
			w.Energy = v
		default:
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Weights{}, fmt.Errorf("%w: unknown dimension %s", ErrInvalidWeights, strings.Join(unknown, ", "))
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
