package model

import (
	"fmt"
	"math"

	"github.com/kartoza/heart-risk/internal/features"
)

// LogisticParams holds a fitted logistic regression
type LogisticParams struct {
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
}

func (l *LogisticParams) validate() error {
	if len(l.Coefficients) != features.NumFeatures {
		return fmt.Errorf("expected %d coefficients, got %d", features.NumFeatures, len(l.Coefficients))
	}
	for i, c := range l.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(l.Intercept) || math.IsInf(l.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	return nil
}

func (l *LogisticParams) score(x features.Vector) float64 {
	z := l.Intercept
	for i, c := range l.Coefficients {
		z += c * x[i]
	}
	return sigmoid(z)
}

// sigmoid avoids overflow of exp for large |z|
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
