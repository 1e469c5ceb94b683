package train

import (
	"math/rand"
	"testing"

	"churn/dataprep"
	"churn/model"

	"github.com/stretchr/testify/assert"
)

func preparedFixture(n int, seed int64) *dataprep.Prepared {
	rnd := rand.New(rand.NewSource(seed))
	p := &dataprep.Prepared{
		FeatureNames: []string{"f0", "f1"},
		Encoders:     map[string]*dataprep.LabelEncoder{},
		Medians:      map[string]float64{},
		X:            make([][]float64, n),
		Y:            make([]int, n),
	}
	for i := 0; i < n; i++ {
		label := i % 2
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		p.X[i] = []float64{center + rnd.NormFloat64(), rnd.NormFloat64()}
		p.Y[i] = label
	}
	p.TrainIdx, p.TestIdx = dataprep.StratifiedSplitIndices(p.Y, TestFraction, Seed)
	return p
}

func TestTrainAndEvaluate(t *testing.T) {
	res, err := TrainAndEvaluate(preparedFixture(300, 17))
	assert.Nil(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.NotNil(t, res.Scaler)
	assert.Empty(t, res.Failures)
	assert.Equal(t, len(model.Families()), len(res.Models))
	assert.Equal(t, len(model.Families()), len(res.Evaluations))

	for family, eval := range res.Evaluations {
		assert.Equal(t, family, eval.Family)
		assert.Greater(t, eval.Test.ROCAUC, 0.8, "family %s", family)
		assert.GreaterOrEqual(t, eval.CVMeanAUC, 0.0)
		assert.LessOrEqual(t, eval.CVMeanAUC, 1.0)
		assert.Equal(t, eval.Train.ROCAUC-eval.Test.ROCAUC, eval.OverfitGap)
		assert.Equal(t, 2, len(eval.Test.ConfusionMatrix))
	}

	// 300 rows at a 0.2 test fraction.
	assert.Equal(t, 60, len(res.XTest))
	assert.Equal(t, 60, len(res.YTest))
}

func TestComparisonOrderedByTestAUC(t *testing.T) {
	res, err := TrainAndEvaluate(preparedFixture(240, 23))
	assert.Nil(t, err)
	assert.Equal(t, len(res.Models), len(res.Comparison))
	assert.Equal(t, res.Comparison[0].Family, res.BestModel)

	for i, row := range res.Comparison {
		assert.Equal(t, i+1, row.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Comparison[i-1].TestROCAUC, row.TestROCAUC)
		}
	}
}

// Two independent runs on the same prepared data must select the same model
// and order the comparison identically.
func TestSelectionDeterministicAcrossRuns(t *testing.T) {
	p := preparedFixture(240, 29)
	a, err := TrainAndEvaluate(p)
	assert.Nil(t, err)
	b, err := TrainAndEvaluate(p)
	assert.Nil(t, err)

	assert.Equal(t, a.BestModel, b.BestModel)
	assert.Equal(t, len(a.Comparison), len(b.Comparison))
	for i := range a.Comparison {
		assert.Equal(t, a.Comparison[i].Family, b.Comparison[i].Family)
		assert.InDelta(t, a.Comparison[i].TestROCAUC, b.Comparison[i].TestROCAUC, 1e-3)
		assert.InDelta(t, a.Comparison[i].CVMeanAUC, b.Comparison[i].CVMeanAUC, 1e-3)
	}
}

func TestBuildComparisonTieBreakOnOverfitGap(t *testing.T) {
	evals := map[model.Family]*EvaluationRecord{
		model.FamilyRandomForest: {
			Family:     model.FamilyRandomForest,
			Test:       Metrics{ROCAUC: 0.9},
			OverfitGap: 0.08,
		},
		model.FamilyGradientBoosting: {
			Family:     model.FamilyGradientBoosting,
			Test:       Metrics{ROCAUC: 0.9},
			OverfitGap: 0.02,
		},
		model.FamilyLogisticRegression: {
			Family:     model.FamilyLogisticRegression,
			Test:       Metrics{ROCAUC: 0.95},
			OverfitGap: 0.10,
		},
	}
	rows := buildComparison(evals)
	assert.Equal(t, model.FamilyLogisticRegression, rows[0].Family)
	assert.Equal(t, model.FamilyGradientBoosting, rows[1].Family)
	assert.Equal(t, model.FamilyRandomForest, rows[2].Family)
}

func TestTrainAndEvaluateSingleClassFails(t *testing.T) {
	p := preparedFixture(100, 31)
	for i := range p.Y {
		p.Y[i] = 1
	}
	_, err := TrainAndEvaluate(p)
	assert.NotNil(t, err)
}

func TestFamilyWeights(t *testing.T) {
	y := []int{0, 0, 0, 1}
	assert.Equal(t, model.PositiveClassWeights(y), familyWeights(model.FamilyGradientBoosting, y))
	assert.Equal(t, model.BalancedWeights(y), familyWeights(model.FamilyRandomForest, y))
	assert.Equal(t, model.BalancedWeights(y), familyWeights(model.FamilyLogisticRegression, y))
}
