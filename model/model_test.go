package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// separableData generates two noisy but linearly separable clusters.
func separableData(n int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		label := i % 2
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		X[i] = []float64{center + rnd.NormFloat64(), rnd.NormFloat64()}
		y[i] = label
	}
	return X, y
}

func TestNewFactory(t *testing.T) {
	for _, family := range Families() {
		clf, err := New(family, 42)
		assert.Nil(t, err)
		assert.Equal(t, family, clf.Family())
	}
	_, err := New("decision_stump", 42)
	assert.NotNil(t, err)
}

func TestFamilyValid(t *testing.T) {
	assert.True(t, FamilyRandomForest.Valid())
	assert.False(t, Family("decision_stump").Valid())
	assert.False(t, Family("").Valid())
}

func TestFamiliesLearnSeparableData(t *testing.T) {
	X, y := separableData(200, 7)
	for _, family := range Families() {
		clf, err := New(family, 42)
		assert.Nil(t, err)
		assert.Nil(t, clf.Fit(X, y, nil))

		proba := clf.PredictProba(X)
		auc := ROCAUC(y, proba)
		assert.Greater(t, auc, 0.95, "family %s", family)
	}
}

func TestFitDeterministicUnderSeed(t *testing.T) {
	X, y := separableData(120, 3)
	for _, family := range Families() {
		a, _ := New(family, 42)
		b, _ := New(family, 42)
		assert.Nil(t, a.Fit(X, y, nil))
		assert.Nil(t, b.Fit(X, y, nil))
		assert.Equal(t, a.PredictProba(X), b.PredictProba(X), "family %s", family)
	}
}

func TestFitRejectsDegenerateData(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	onlyPositives := []int{1, 1, 1}
	for _, family := range Families() {
		clf, _ := New(family, 42)
		assert.NotNil(t, clf.Fit(X, onlyPositives, nil), "family %s", family)
		assert.NotNil(t, clf.Fit(nil, nil, nil), "family %s", family)
	}
}

func TestBalancedWeights(t *testing.T) {
	w := BalancedWeights([]int{0, 0, 0, 1})
	// n/(2*count): 4/(2*3) for negatives, 4/(2*1) for the positive.
	assert.InDelta(t, 4.0/6.0, w[0], 1e-12)
	assert.InDelta(t, 2.0, w[3], 1e-12)
}

func TestPositiveClassWeights(t *testing.T) {
	w := PositiveClassWeights([]int{0, 0, 0, 1})
	assert.Equal(t, 1.0, w[0])
	assert.Equal(t, 3.0, w[3])
}

func TestSerializeRoundtrip(t *testing.T) {
	X, y := separableData(80, 11)
	for _, family := range Families() {
		clf, _ := New(family, 42)
		assert.Nil(t, clf.Fit(X, y, nil))

		data, err := Marshal(clf)
		assert.Nil(t, err)

		restored, err := Unmarshal(data)
		assert.Nil(t, err)
		assert.Equal(t, family, restored.Family())
		assert.Equal(t, clf.PredictProba(X), restored.PredictProba(X), "family %s", family)
	}
}

func TestUnmarshalRejectsBadDocuments(t *testing.T) {
	_, err := Unmarshal([]byte(`{"family":"decision_stump"}`))
	assert.NotNil(t, err)

	_, err = Unmarshal([]byte(`{"family":"random_forest"}`))
	assert.NotNil(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.NotNil(t, err)
}
