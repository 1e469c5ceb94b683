package model

import (
	"sort"
)

// Binary classification metrics. Labels are 0/1; scores are P(class 1).

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

func PrecisionRecallF1(yTrue, yPred []int) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// ConfusionMatrix returns [[tn, fp], [fn, tp]].
func ConfusionMatrix(yTrue, yPred []int) [][]int {
	cm := [][]int{{0, 0}, {0, 0}}
	for i := range yTrue {
		cm[yTrue[i]][yPred[i]]++
	}
	return cm
}

// ROCAUC is the Mann-Whitney rank statistic with average ranks for tied
// scores. Degenerate single-class truth returns 0.5.
func ROCAUC(yTrue []int, scores []float64) float64 {
	n := len(yTrue)
	type scored struct {
		s float64
		y int
	}
	rows := make([]scored, n)
	for i := range yTrue {
		rows[i] = scored{scores[i], yTrue[i]}
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].s < rows[b].s })

	var nPos, nNeg, rankSumPos float64
	i := 0
	for i < n {
		j := i
		for j < n && rows[j].s == rows[i].s {
			j++
		}
		// ranks i+1..j averaged across the tie group
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if rows[k].y == 1 {
				rankSumPos += avgRank
			}
		}
		i = j
	}
	for _, r := range rows {
		if r.y == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	return (rankSumPos - nPos*(nPos+1)/2.0) / (nPos * nNeg)
}

// PRAUC is average precision: the precision-weighted sum of recall steps
// scanning thresholds from the highest score down.
func PRAUC(yTrue []int, scores []float64) float64 {
	n := len(yTrue)
	type scored struct {
		s float64
		y int
	}
	rows := make([]scored, n)
	for i := range yTrue {
		rows[i] = scored{scores[i], yTrue[i]}
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].s > rows[b].s })

	var nPos float64
	for _, r := range rows {
		if r.y == 1 {
			nPos++
		}
	}
	if nPos == 0 {
		return 0
	}

	var ap, tp, fp, prevRecall float64
	i := 0
	for i < n {
		j := i
		for j < n && rows[j].s == rows[i].s {
			j++
		}
		for k := i; k < j; k++ {
			if rows[k].y == 1 {
				tp++
			} else {
				fp++
			}
		}
		recall := tp / nPos
		precision := tp / (tp + fp)
		ap += (recall - prevRecall) * precision
		prevRecall = recall
		i = j
	}
	return ap
}

// BinaryFromProba thresholds probabilities at 0.5.
func BinaryFromProba(proba []float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
