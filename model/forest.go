package model

import (
	"math"
	"math/rand"
	"sync"
)

// RandomForest is the bagged-tree family: bootstrap samples, per-split
// feature subsampling, trees grown in parallel. Tree leaf values are the
// weighted positive-class fraction, so the forest probability is the plain
// average over trees.
type RandomForest struct {
	NEstimators     int `json:"n_estimators"`
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`

	Seed  int64       `json:"seed"`
	Trees []*TreeNode `json:"trees,omitempty"`
}

func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		NEstimators:     100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Seed:            seed,
	}
}

func (rf *RandomForest) Family() Family { return FamilyRandomForest }

func (rf *RandomForest) Fit(X [][]float64, y []int, sampleWeight []float64) error {
	if err := checkTrainingData(X, y, sampleWeight); err != nil {
		return err
	}
	n := len(X)
	w := uniformWeights(n, sampleWeight)

	g := make([]float64, n)
	for i, yi := range y {
		g[i] = float64(yi)
	}
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rf.Trees = make([]*TreeNode, rf.NEstimators)
	var wg sync.WaitGroup
	for t := 0; t < rf.NEstimators; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			// Per-tree source keeps the ensemble reproducible under the run
			// seed without contention across goroutines.
			rnd := rand.New(rand.NewSource(rf.Seed + int64(t)))
			idx := make([]int, n)
			for j := range idx {
				idx[j] = rnd.Intn(n)
			}
			rf.Trees[t] = buildTree(X, g, nil, w, idx, treeParams{
				maxDepth:            rf.MaxDepth,
				minSamplesSplit:     rf.MinSamplesSplit,
				minSamplesLeaf:      rf.MinSamplesLeaf,
				maxFeaturesPerSplit: maxFeatures,
				rnd:                 rnd,
			})
		}(t)
	}
	wg.Wait()
	return nil
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := 0.0
		for _, tree := range rf.Trees {
			sum += tree.predict(x)
		}
		out[i] = clampProba(sum / float64(len(rf.Trees)))
	}
	return out
}

// Contributions decomposes one prediction into additive per-feature
// contributions in probability space. baseline + sum(contribs) equals
// PredictProba for the instance exactly.
func (rf *RandomForest) Contributions(x []float64) (contribs []float64, baseline float64) {
	contribs = make([]float64, len(x))
	for _, tree := range rf.Trees {
		tree.pathContributions(x, contribs)
		baseline += tree.Value
	}
	nTrees := float64(len(rf.Trees))
	for j := range contribs {
		contribs[j] /= nTrees
	}
	return contribs, baseline / nTrees
}
