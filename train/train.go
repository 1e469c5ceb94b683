// Package train runs one training generation: stratified split, per-family
// fitting with class-imbalance weights, cross validation, evaluation and
// best-model selection.
package train

import (
	"math"
	"sort"
	"sync"

	"churn/dataprep"
	"churn/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var trainLog = log.WithField("prefix", "Train")

const (
	// Seed fixes every stochastic step of a run so generations reproduce.
	Seed = 42

	TestFraction = 0.2
	CVFolds      = 5
)

// Metrics is the evaluation scorecard for one classifier on one split.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
	PRAUC     float64 `json:"pr_auc"`

	ConfusionMatrix [][]int `json:"confusion_matrix"`
}

// EvaluationRecord holds everything persisted to a family's metrics artifact.
type EvaluationRecord struct {
	Family model.Family `json:"family"`

	Train Metrics `json:"train"`
	Test  Metrics `json:"test"`

	CVMeanAUC float64 `json:"cv_mean_auc"`
	CVStdAUC  float64 `json:"cv_std_auc"`

	// Train minus test ROC-AUC; large positive values flag overfitting.
	OverfitGap float64 `json:"overfit_gap"`
}

// ComparisonRow is one line of the cross-family comparison, ordered by test
// ROC-AUC descending.
type ComparisonRow struct {
	Rank       int          `json:"rank"`
	Family     model.Family `json:"family"`
	TestROCAUC float64      `json:"test_roc_auc"`
	TestF1     float64      `json:"test_f1"`
	CVMeanAUC  float64      `json:"cv_mean_auc"`
	OverfitGap float64      `json:"overfit_gap"`
}

// Result is the full output of one training generation.
type Result struct {
	RunID string

	Scaler      *dataprep.StandardScaler
	Models      map[model.Family]model.Classifier
	Evaluations map[model.Family]*EvaluationRecord
	// Fit errors by family; a failed family is excluded from comparison.
	Failures map[model.Family]string

	Comparison []ComparisonRow
	BestModel  model.Family

	// Scaled test split, retained for attribution computation.
	XTest [][]float64
	YTest []int
}

// familyWeights returns the class-imbalance scheme each family was designed
// with: balanced inverse-frequency weights for the linear and bagged
// families, positive-class ratio weights for boosting.
func familyWeights(f model.Family, y []int) []float64 {
	if f == model.FamilyGradientBoosting {
		return model.PositiveClassWeights(y)
	}
	return model.BalancedWeights(y)
}

// TrainAndEvaluate fits every supported family on the prepared data and
// evaluates each one. A family whose fit fails is recorded and skipped, never
// failing the run; the run errors only when no family trains at all.
func TrainAndEvaluate(p *dataprep.Prepared) (*Result, error) {
	XTrainRaw := make([][]float64, len(p.TrainIdx))
	yTrain := make([]int, len(p.TrainIdx))
	for k, i := range p.TrainIdx {
		XTrainRaw[k], yTrain[k] = p.X[i], p.Y[i]
	}
	XTestRaw := make([][]float64, len(p.TestIdx))
	yTest := make([]int, len(p.TestIdx))
	for k, i := range p.TestIdx {
		XTestRaw[k], yTest[k] = p.X[i], p.Y[i]
	}

	scaler := dataprep.NewStandardScaler()
	scaler.Fit(XTrainRaw)
	XTrain := scaler.Transform(XTrainRaw)
	XTest := scaler.Transform(XTestRaw)

	res := &Result{
		RunID:       uuid.New().String(),
		Scaler:      scaler,
		Models:      make(map[model.Family]model.Classifier),
		Evaluations: make(map[model.Family]*EvaluationRecord),
		Failures:    make(map[model.Family]string),
		XTest:       XTest,
		YTest:       yTest,
	}
	runLog := trainLog.WithField("run_id", res.RunID)
	runLog.WithFields(log.Fields{
		"train_rows": len(XTrain),
		"test_rows":  len(XTest),
		"features":   len(p.FeatureNames),
	}).Info("Starting training generation")

	for _, family := range model.Families() {
		clf, err := model.New(family, Seed)
		if err != nil {
			return nil, err
		}
		weights := familyWeights(family, yTrain)
		if err := clf.Fit(XTrain, yTrain, weights); err != nil {
			runLog.WithField("family", family).WithError(err).Error("Model fit failed; family skipped")
			res.Failures[family] = err.Error()
			continue
		}

		eval := evaluate(clf, XTrain, yTrain, XTest, yTest)
		eval.CVMeanAUC, eval.CVStdAUC = crossValidate(family, XTrain, yTrain)
		res.Models[family] = clf
		res.Evaluations[family] = eval
		runLog.WithFields(log.Fields{
			"family":   family,
			"test_auc": eval.Test.ROCAUC,
			"cv_auc":   eval.CVMeanAUC,
		}).Info("Trained and evaluated model")
	}

	if len(res.Models) == 0 {
		return nil, errors.New("no model family trained successfully")
	}

	res.Comparison = buildComparison(res.Evaluations)
	res.BestModel = res.Comparison[0].Family
	runLog.WithField("best_model", res.BestModel).Info("Selected best model")
	return res, nil
}

// evaluate scores a fitted classifier on both splits.
func evaluate(clf model.Classifier, XTrain [][]float64, yTrain []int, XTest [][]float64, yTest []int) *EvaluationRecord {
	eval := &EvaluationRecord{Family: clf.Family()}
	eval.Train = scoreSplit(clf, XTrain, yTrain)
	eval.Test = scoreSplit(clf, XTest, yTest)
	eval.OverfitGap = eval.Train.ROCAUC - eval.Test.ROCAUC
	return eval
}

func scoreSplit(clf model.Classifier, X [][]float64, y []int) Metrics {
	proba := clf.PredictProba(X)
	pred := model.BinaryFromProba(proba)
	prec, rec, f1 := model.PrecisionRecallF1(y, pred)
	return Metrics{
		Accuracy:        model.Accuracy(y, pred),
		Precision:       prec,
		Recall:          rec,
		F1:              f1,
		ROCAUC:          model.ROCAUC(y, proba),
		PRAUC:           model.PRAUC(y, proba),
		ConfusionMatrix: model.ConfusionMatrix(y, pred),
	}
}

// crossValidate runs stratified k-fold CV on the training split, fitting one
// fresh classifier per fold concurrently. A fold whose fit fails (degenerate
// class balance on tiny data) is dropped from the aggregate.
func crossValidate(family model.Family, X [][]float64, y []int) (mean, std float64) {
	folds := dataprep.StratifiedFolds(y, CVFolds, Seed)

	aucs := make([]float64, len(folds))
	valid := make([]bool, len(folds))
	var wg sync.WaitGroup
	for f := range folds {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			holdout := make(map[int]bool, len(folds[f]))
			for _, i := range folds[f] {
				holdout[i] = true
			}
			var XTr, XVal [][]float64
			var yTr, yVal []int
			for i := range X {
				if holdout[i] {
					XVal = append(XVal, X[i])
					yVal = append(yVal, y[i])
				} else {
					XTr = append(XTr, X[i])
					yTr = append(yTr, y[i])
				}
			}
			clf, err := model.New(family, Seed+int64(f))
			if err != nil {
				return
			}
			if err := clf.Fit(XTr, yTr, familyWeights(family, yTr)); err != nil {
				trainLog.WithFields(log.Fields{"family": family, "fold": f}).
					WithError(err).Warn("CV fold fit failed; fold dropped")
				return
			}
			aucs[f] = model.ROCAUC(yVal, clf.PredictProba(XVal))
			valid[f] = true
		}(f)
	}
	wg.Wait()

	var sum float64
	n := 0
	for f := range aucs {
		if valid[f] {
			sum += aucs[f]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	var sq float64
	for f := range aucs {
		if valid[f] {
			d := aucs[f] - mean
			sq += d * d
		}
	}
	if n > 1 {
		std = math.Sqrt(sq / float64(n))
	}
	return mean, std
}

// buildComparison ranks evaluated families by test ROC-AUC descending, with a
// smaller overfit gap breaking ties.
func buildComparison(evals map[model.Family]*EvaluationRecord) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(evals))
	for _, eval := range evals {
		rows = append(rows, ComparisonRow{
			Family:     eval.Family,
			TestROCAUC: eval.Test.ROCAUC,
			TestF1:     eval.Test.F1,
			CVMeanAUC:  eval.CVMeanAUC,
			OverfitGap: eval.OverfitGap,
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].TestROCAUC != rows[b].TestROCAUC {
			return rows[a].TestROCAUC > rows[b].TestROCAUC
		}
		return rows[a].OverfitGap < rows[b].OverfitGap
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
