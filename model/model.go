// Package model implements the three churn classifier families and the
// binary-classification metrics used to evaluate them.
package model

import (
	"math"

	"github.com/pkg/errors"
)

// Family identifies one of the closed set of supported classifier families.
type Family string

const (
	FamilyLogisticRegression Family = "logistic_regression"
	FamilyRandomForest       Family = "random_forest"
	FamilyGradientBoosting   Family = "gradient_boosting"
)

// Families lists every supported family in training order.
func Families() []Family {
	return []Family{FamilyLogisticRegression, FamilyRandomForest, FamilyGradientBoosting}
}

func (f Family) Valid() bool {
	switch f {
	case FamilyLogisticRegression, FamilyRandomForest, FamilyGradientBoosting:
		return true
	}
	return false
}

// Classifier is a binary churn classifier. PredictProba returns P(churn=1)
// per row. Fit accepts per-instance weights for class-imbalance handling;
// nil means uniform.
type Classifier interface {
	Fit(X [][]float64, y []int, sampleWeight []float64) error
	PredictProba(X [][]float64) []float64
	Family() Family
}

// New constructs the family's classifier with its fixed hyperparameters.
func New(f Family, seed int64) (Classifier, error) {
	switch f {
	case FamilyLogisticRegression:
		return NewLogisticRegression(), nil
	case FamilyRandomForest:
		return NewRandomForest(seed), nil
	case FamilyGradientBoosting:
		return NewGradientBoosting(seed), nil
	}
	return nil, errors.Errorf("unknown model family %q", f)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// checkTrainingData rejects empty or degenerate (single-class) training
// splits; such a fit failure is isolated to the family.
func checkTrainingData(X [][]float64, y []int, w []float64) error {
	if len(X) == 0 || len(y) != len(X) {
		return errors.New("training data empty or misaligned")
	}
	if w != nil && len(w) != len(y) {
		return errors.New("sample weights misaligned with training data")
	}
	pos := 0
	for _, yi := range y {
		if yi == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return errors.New("degenerate training split: only one class present")
	}
	return nil
}
