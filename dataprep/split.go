package dataprep

import (
	"math"
	"math/rand"
)

// StratifiedSplitIndices partitions row indices into train and test
// preserving the class ratio in both splits. A fixed seed reproduces the
// same partition.
func StratifiedSplitIndices(Y []int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	rnd := rand.New(rand.NewSource(seed))

	byClass := make(map[int][]int)
	classes := make([]int, 0, 2)
	for i, y := range Y {
		if _, ok := byClass[y]; !ok {
			classes = append(classes, y)
		}
		byClass[y] = append(byClass[y], i)
	}
	// Iterate classes in first-seen order for determinism.
	for _, c := range classes {
		idx := byClass[c]
		rnd.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(math.Round(testFraction * float64(len(idx))))
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	return trainIdx, testIdx
}

// StratifiedFolds returns k folds of row indices, each preserving the class
// ratio. Used for cross validation on the training split.
func StratifiedFolds(Y []int, k int, seed int64) [][]int {
	rnd := rand.New(rand.NewSource(seed))

	byClass := make(map[int][]int)
	classes := make([]int, 0, 2)
	for i, y := range Y {
		if _, ok := byClass[y]; !ok {
			classes = append(classes, y)
		}
		byClass[y] = append(byClass[y], i)
	}
	folds := make([][]int, k)
	for _, c := range classes {
		idx := byClass[c]
		rnd.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for j, i := range idx {
			folds[j%k] = append(folds[j%k], i)
		}
	}
	return folds
}
