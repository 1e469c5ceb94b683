package model

import (
	"math"
)

// LogisticRegression is the linear family: full-batch gradient descent on
// weighted logistic loss. Zero-initialized weights keep the fit fully
// deterministic.
type LogisticRegression struct {
	LearningRate float64 `json:"learning_rate"`
	MaxIter      int     `json:"max_iter"`
	Tol          float64 `json:"tol"`

	Weights   []float64 `json:"weights,omitempty"`
	Intercept float64   `json:"intercept"`
}

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		MaxIter:      1000,
		Tol:          1e-6,
	}
}

func (m *LogisticRegression) Family() Family { return FamilyLogisticRegression }

func (m *LogisticRegression) Fit(X [][]float64, y []int, sampleWeight []float64) error {
	if err := checkTrainingData(X, y, sampleWeight); err != nil {
		return err
	}
	n := len(X)
	p := len(X[0])
	w := uniformWeights(n, sampleWeight)

	var totalW float64
	for _, wi := range w {
		totalW += wi
	}

	m.Weights = make([]float64, p)
	m.Intercept = 0
	grad := make([]float64, p)

	for iter := 0; iter < m.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradB := 0.0
		for i := 0; i < n; i++ {
			pi := sigmoid(m.margin(X[i]))
			d := w[i] * (pi - float64(y[i]))
			for j, xij := range X[i] {
				grad[j] += d * xij
			}
			gradB += d
		}

		maxGrad := math.Abs(gradB / totalW)
		for j := range grad {
			grad[j] /= totalW
			if g := math.Abs(grad[j]); g > maxGrad {
				maxGrad = g
			}
		}
		gradB /= totalW

		for j := range m.Weights {
			m.Weights[j] -= m.LearningRate * grad[j]
		}
		m.Intercept -= m.LearningRate * gradB

		if maxGrad < m.Tol {
			break
		}
	}
	return nil
}

func (m *LogisticRegression) margin(x []float64) float64 {
	z := m.Intercept
	for j, v := range x {
		z += m.Weights[j] * v
	}
	return z
}

// Margin returns the raw log-odds for one instance.
func (m *LogisticRegression) Margin(x []float64) float64 {
	return m.margin(x)
}

func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = sigmoid(m.margin(x))
	}
	return out
}
