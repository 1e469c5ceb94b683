package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func labelFixture(n, nPos int) []int {
	Y := make([]int, n)
	for i := 0; i < nPos; i++ {
		Y[i] = 1
	}
	return Y
}

func TestStratifiedSplitIndicesPreserveClassRatio(t *testing.T) {
	Y := labelFixture(100, 30)
	trainIdx, testIdx := StratifiedSplitIndices(Y, 0.2, 42)

	assert.Equal(t, 20, len(testIdx))
	assert.Equal(t, 80, len(trainIdx))

	pos := 0
	for _, i := range testIdx {
		if Y[i] == 1 {
			pos++
		}
	}
	assert.Equal(t, 6, pos)
}

func TestStratifiedSplitIndicesPartitionRows(t *testing.T) {
	Y := labelFixture(53, 17)
	trainIdx, testIdx := StratifiedSplitIndices(Y, 0.2, 42)

	seen := make(map[int]int)
	for _, i := range trainIdx {
		seen[i]++
	}
	for _, i := range testIdx {
		seen[i]++
	}
	assert.Equal(t, 53, len(seen))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestStratifiedSplitIndicesDeterministic(t *testing.T) {
	Y := labelFixture(50, 10)
	aTrain, aTest := StratifiedSplitIndices(Y, 0.2, 42)
	bTrain, bTest := StratifiedSplitIndices(Y, 0.2, 42)
	assert.Equal(t, aTrain, bTrain)
	assert.Equal(t, aTest, bTest)
}

func TestStratifiedFoldsCoverAllRowsOnce(t *testing.T) {
	Y := labelFixture(53, 17)
	folds := StratifiedFolds(Y, 5, 42)
	assert.Equal(t, 5, len(folds))

	seen := make(map[int]int)
	for _, fold := range folds {
		for _, i := range fold {
			seen[i]++
		}
	}
	assert.Equal(t, 53, len(seen))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestStratifiedFoldsBalanced(t *testing.T) {
	Y := labelFixture(100, 40)
	folds := StratifiedFolds(Y, 5, 42)
	for _, fold := range folds {
		pos := 0
		for _, i := range fold {
			if Y[i] == 1 {
				pos++
			}
		}
		assert.Equal(t, 8, pos)
		assert.Equal(t, 20, len(fold))
	}
}
