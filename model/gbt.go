package model

import (
	"math/rand"
)

// GradientBoosting is the boosted-tree family: sequential rounds of
// regression trees fit to the logistic-loss gradient, Newton leaf values,
// row and column subsampling per round. Predictions accumulate in margin
// (log-odds) space.
type GradientBoosting struct {
	NRounds         int     `json:"n_rounds"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_by_tree"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`

	Seed       int64       `json:"seed"`
	BaseMargin float64     `json:"base_margin"`
	Trees      []*TreeNode `json:"trees,omitempty"`
}

func NewGradientBoosting(seed int64) *GradientBoosting {
	return &GradientBoosting{
		NRounds:         100,
		MaxDepth:        6,
		LearningRate:    0.1,
		Subsample:       0.8,
		ColsampleByTree: 0.8,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            seed,
	}
}

func (gb *GradientBoosting) Family() Family { return FamilyGradientBoosting }

func (gb *GradientBoosting) Fit(X [][]float64, y []int, sampleWeight []float64) error {
	if err := checkTrainingData(X, y, sampleWeight); err != nil {
		return err
	}
	n := len(X)
	p := len(X[0])
	w := uniformWeights(n, sampleWeight)
	rnd := rand.New(rand.NewSource(gb.Seed))

	margins := make([]float64, n)
	grad := make([]float64, n)
	hess := make([]float64, n)
	gb.BaseMargin = 0
	gb.Trees = make([]*TreeNode, 0, gb.NRounds)

	nSub := int(gb.Subsample * float64(n))
	if nSub < 1 {
		nSub = n
	}
	nCols := int(gb.ColsampleByTree * float64(p))
	if nCols < 1 {
		nCols = p
	}
	allRows := make([]int, n)
	for i := range allRows {
		allRows[i] = i
	}
	allCols := make([]int, p)
	for j := range allCols {
		allCols[j] = j
	}

	for round := 0; round < gb.NRounds; round++ {
		// Negative gradient of weighted logistic loss; the tree fits g/h via
		// Newton leaves, so store the raw residual and hessian.
		for i := 0; i < n; i++ {
			pi := sigmoid(gb.BaseMargin + margins[i])
			grad[i] = float64(y[i]) - pi
			hess[i] = pi * (1 - pi)
		}

		rnd.Shuffle(n, func(a, b int) { allRows[a], allRows[b] = allRows[b], allRows[a] })
		rowIdx := make([]int, nSub)
		copy(rowIdx, allRows[:nSub])

		rnd.Shuffle(p, func(a, b int) { allCols[a], allCols[b] = allCols[b], allCols[a] })
		colIdx := make([]int, nCols)
		copy(colIdx, allCols[:nCols])

		tree := buildTree(X, grad, hess, w, rowIdx, treeParams{
			maxDepth:        gb.MaxDepth,
			minSamplesSplit: gb.MinSamplesSplit,
			minSamplesLeaf:  gb.MinSamplesLeaf,
			features:        colIdx,
			rnd:             rnd,
		})
		tree.recomputeInternalValues()
		gb.Trees = append(gb.Trees, tree)

		for i := 0; i < n; i++ {
			margins[i] += gb.LearningRate * tree.predict(X[i])
		}
	}
	return nil
}

// Margin returns the raw log-odds for one instance.
func (gb *GradientBoosting) Margin(x []float64) float64 {
	m := gb.BaseMargin
	for _, tree := range gb.Trees {
		m += gb.LearningRate * tree.predict(x)
	}
	return m
}

func (gb *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = sigmoid(gb.Margin(x))
	}
	return out
}

// Contributions decomposes one prediction into additive per-feature
// contributions in margin space. baseline + sum(contribs) equals Margin for
// the instance exactly; apply sigmoid for the probability.
func (gb *GradientBoosting) Contributions(x []float64) (contribs []float64, baseline float64) {
	contribs = make([]float64, len(x))
	treeContribs := make([]float64, len(x))
	baseline = gb.BaseMargin
	for _, tree := range gb.Trees {
		for j := range treeContribs {
			treeContribs[j] = 0
		}
		tree.pathContributions(x, treeContribs)
		for j := range treeContribs {
			contribs[j] += gb.LearningRate * treeContribs[j]
		}
		baseline += gb.LearningRate * tree.Value
	}
	return contribs, baseline
}
