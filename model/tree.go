package model

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a regression tree. Value is the weighted expected
// target at the node; keeping it on internal nodes (not just leaves) is what
// makes exact path attribution possible. Numeric splits route x <= Threshold
// to the left child.
type TreeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value"`
	Cover     float64   `json:"cover"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// treeParams controls one tree build. Both ensemble families share the
// builder: the forest grows trees on 0/1 labels (variance reduction on a
// binary target is equivalent to Gini), boosting grows them on gradients
// with Newton leaf values.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	// features to consider; nil means all. maxFeaturesPerSplit > 0 samples
	// that many candidates at every split (forest-style).
	features            []int
	maxFeaturesPerSplit int
	rnd                 *rand.Rand
}

// buildTree fits a weighted regression tree on targets g over rows idx.
// When hess is non-nil, leaf values use the Newton step sum(w*g)/sum(w*h).
func buildTree(X [][]float64, g []float64, hess []float64, w []float64, idx []int, params treeParams) *TreeNode {
	node := newNode(g, hess, w, idx)
	growNode(node, X, g, hess, w, idx, 0, params)
	return node
}

func newNode(g, hess, w []float64, idx []int) *TreeNode {
	var sumW, sumWG, sumWH float64
	for _, i := range idx {
		sumW += w[i]
		sumWG += w[i] * g[i]
		if hess != nil {
			sumWH += w[i] * hess[i]
		}
	}
	n := &TreeNode{Leaf: true, Cover: sumW}
	if sumW > 0 {
		n.Value = sumWG / sumW
	}
	if hess != nil {
		if sumWH < 1e-12 {
			sumWH = 1e-12
		}
		n.Value = sumWG / sumWH
	}
	return n
}

func growNode(node *TreeNode, X [][]float64, g, hess, w []float64, idx []int, depth int, params treeParams) {
	if len(idx) < params.minSamplesSplit || (params.maxDepth > 0 && depth >= params.maxDepth) {
		return
	}

	candidates := params.features
	if candidates == nil {
		candidates = make([]int, len(X[0]))
		for j := range candidates {
			candidates[j] = j
		}
	}
	if params.maxFeaturesPerSplit > 0 && params.maxFeaturesPerSplit < len(candidates) {
		sampled := make([]int, len(candidates))
		copy(sampled, candidates)
		params.rnd.Shuffle(len(sampled), func(a, b int) { sampled[a], sampled[b] = sampled[b], sampled[a] })
		candidates = sampled[:params.maxFeaturesPerSplit]
	}

	feature, threshold, gain := findBestSplit(X, g, w, idx, candidates, params.minSamplesLeaf)
	if feature < 0 || gain <= 1e-12 {
		return
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	node.Leaf = false
	node.Feature = feature
	node.Threshold = threshold
	node.Left = newNode(g, hess, w, leftIdx)
	node.Right = newNode(g, hess, w, rightIdx)
	growNode(node.Left, X, g, hess, w, leftIdx, depth+1, params)
	growNode(node.Right, X, g, hess, w, rightIdx, depth+1, params)
}

// findBestSplit scans sorted thresholds per candidate feature and returns
// the split maximizing weighted variance reduction of the targets.
func findBestSplit(X [][]float64, g, w []float64, idx []int, candidates []int, minLeaf int) (int, float64, float64) {
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	var totW, totWG, totWGG float64
	for _, i := range idx {
		totW += w[i]
		totWG += w[i] * g[i]
		totWGG += w[i] * g[i] * g[i]
	}
	if totW <= 0 {
		return -1, 0, 0
	}
	parentSSE := totWGG - totWG*totWG/totW

	type pair struct {
		v float64
		i int
	}
	pairs := make([]pair, len(idx))

	for _, f := range candidates {
		for k, i := range idx {
			pairs[k] = pair{X[i][f], i}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		var leftW, leftWG, leftWGG float64
		for k := 0; k < len(pairs)-1; k++ {
			i := pairs[k].i
			leftW += w[i]
			leftWG += w[i] * g[i]
			leftWGG += w[i] * g[i] * g[i]

			if pairs[k].v == pairs[k+1].v {
				continue
			}
			if k+1 < minLeaf || len(pairs)-k-1 < minLeaf {
				continue
			}
			rightW := totW - leftW
			if leftW <= 0 || rightW <= 0 {
				continue
			}
			rightWG := totWG - leftWG
			rightWGG := totWGG - leftWGG
			leftSSE := leftWGG - leftWG*leftWG/leftW
			rightSSE := rightWGG - rightWG*rightWG/rightW
			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (pairs[k].v + pairs[k+1].v) / 2.0
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// predict walks the tree to a leaf value.
func (n *TreeNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// pathContributions attributes the change in expected value at every split
// along the decision path to the split feature. The attribution is additive:
// root.Value + sum(contribs) equals the leaf value exactly.
func (n *TreeNode) pathContributions(x []float64, contribs []float64) float64 {
	node := n
	for !node.Leaf {
		var child *TreeNode
		if x[node.Feature] <= node.Threshold {
			child = node.Left
		} else {
			child = node.Right
		}
		contribs[node.Feature] += child.Value - node.Value
		node = child
	}
	return node.Value
}

// recomputeInternalValues rewrites internal node values as cover-weighted
// averages of their children, bottom up. Needed after Newton leaf values
// replace the raw gradient means so path attribution stays additive.
func (n *TreeNode) recomputeInternalValues() float64 {
	if n.Leaf {
		return n.Value
	}
	lv := n.Left.recomputeInternalValues()
	rv := n.Right.recomputeInternalValues()
	cover := n.Left.Cover + n.Right.Cover
	if cover > 0 {
		n.Value = (n.Left.Cover*lv + n.Right.Cover*rv) / cover
	}
	return n.Value
}

// uniformWeights returns all-ones weights when the caller passed nil.
func uniformWeights(n int, w []float64) []float64 {
	if w != nil {
		return w
	}
	u := make([]float64, n)
	for i := range u {
		u[i] = 1
	}
	return u
}

// BalancedWeights computes inverse-class-frequency instance weights,
// n / (2 * count(class)), the "balanced" scheme.
func BalancedWeights(y []int) []float64 {
	counts := [2]float64{}
	for _, yi := range y {
		counts[yi]++
	}
	w := make([]float64, len(y))
	n := float64(len(y))
	for i, yi := range y {
		if counts[yi] > 0 {
			w[i] = n / (2.0 * counts[yi])
		}
	}
	return w
}

// PositiveClassWeights weights positive instances by the negative/positive
// count ratio, the boosted-tree scheme.
func PositiveClassWeights(y []int) []float64 {
	var pos, neg float64
	for _, yi := range y {
		if yi == 1 {
			pos++
		} else {
			neg++
		}
	}
	ratio := 1.0
	if pos > 0 {
		ratio = neg / pos
	}
	w := make([]float64, len(y))
	for i, yi := range y {
		if yi == 1 {
			w[i] = ratio
		} else {
			w[i] = 1
		}
	}
	return w
}

func clampProba(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}
