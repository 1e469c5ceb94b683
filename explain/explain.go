// Package explain computes additive per-feature attributions for fitted
// classifiers and aggregates them into global feature importance.
package explain

import (
	"sort"

	"churn/model"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var explainLog = log.WithField("prefix", "Explain")

// MaxBackgroundRows caps the background sample retained for the linear
// family's attribution baseline.
const MaxBackgroundRows = 100

const (
	// Tree attributions for the bagged family live in probability space,
	// boosted and linear attributions in margin (log-odds) space.
	SpaceProbability = "probability"
	SpaceMargin      = "margin"
)

// Explainer produces per-instance attributions for one fitted classifier.
// baseline + sum(contributions) reconstructs the model output exactly in the
// explainer's Space.
type Explainer struct {
	clf          model.Classifier
	featureNames []string

	// Per-feature background means, used only by the linear family.
	backgroundMean   []float64
	backgroundMargin float64
}

// New builds an explainer. background supplies reference rows for the linear
// family; only the first MaxBackgroundRows are used. Tree families ignore it.
func New(clf model.Classifier, featureNames []string, background [][]float64) (*Explainer, error) {
	e := &Explainer{clf: clf, featureNames: featureNames}

	if lr, ok := clf.(*model.LogisticRegression); ok {
		if len(background) == 0 {
			return nil, errors.New("linear attribution requires background rows")
		}
		if len(background) > MaxBackgroundRows {
			background = background[:MaxBackgroundRows]
		}
		p := len(featureNames)
		e.backgroundMean = make([]float64, p)
		for _, row := range background {
			for j := 0; j < p; j++ {
				e.backgroundMean[j] += row[j]
			}
		}
		nb := float64(len(background))
		for j := range e.backgroundMean {
			e.backgroundMean[j] /= nb
		}
		e.backgroundMargin = lr.Margin(e.backgroundMean)
		explainLog.WithField("background_rows", len(background)).
			Debug("Fixed linear attribution background")
	}
	return e, nil
}

// Space names the output space the attributions are additive in.
func (e *Explainer) Space() string {
	if e.clf.Family() == model.FamilyRandomForest {
		return SpaceProbability
	}
	return SpaceMargin
}

// Contributions returns per-feature attributions and the baseline for one
// scaled instance.
func (e *Explainer) Contributions(x []float64) (contribs []float64, baseline float64, err error) {
	switch m := e.clf.(type) {
	case *model.RandomForest:
		contribs, baseline = m.Contributions(x)
	case *model.GradientBoosting:
		contribs, baseline = m.Contributions(x)
	case *model.LogisticRegression:
		contribs = make([]float64, len(x))
		for j := range x {
			contribs[j] = m.Weights[j] * (x[j] - e.backgroundMean[j])
		}
		baseline = e.backgroundMargin
	default:
		return nil, 0, errors.Errorf("no attribution method for family %q", e.clf.Family())
	}
	return contribs, baseline, nil
}

// FeatureImportance is one feature's global importance score.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// GlobalImportance averages absolute per-instance contributions over X and
// returns features sorted by importance descending.
func (e *Explainer) GlobalImportance(X [][]float64) ([]FeatureImportance, error) {
	if len(X) == 0 {
		return nil, errors.New("no rows to compute importance over")
	}
	totals := make([]float64, len(e.featureNames))
	for _, x := range X {
		contribs, _, err := e.Contributions(x)
		if err != nil {
			return nil, err
		}
		for j, c := range contribs {
			if c < 0 {
				c = -c
			}
			totals[j] += c
		}
	}
	out := make([]FeatureImportance, len(e.featureNames))
	n := float64(len(X))
	for j, name := range e.featureNames {
		out[j] = FeatureImportance{Feature: name, Importance: totals[j] / n}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })
	return out, nil
}

// AttributionRow is one instance's attribution record.
type AttributionRow struct {
	Contributions []float64 `json:"contributions"`
	Baseline      float64   `json:"baseline"`
	Output        float64   `json:"output"`
}

// AttributionData is the persisted attribution artifact for one model: the
// feature order, the additive space and per-instance rows over a data split.
type AttributionData struct {
	Family       model.Family     `json:"family"`
	FeatureNames []string         `json:"feature_names"`
	Space        string           `json:"space"`
	Rows         []AttributionRow `json:"rows"`
}

// Attribute computes the attribution record for every row of X.
func (e *Explainer) Attribute(X [][]float64) (*AttributionData, error) {
	data := &AttributionData{
		Family:       e.clf.Family(),
		FeatureNames: e.featureNames,
		Space:        e.Space(),
		Rows:         make([]AttributionRow, len(X)),
	}
	for i, x := range X {
		contribs, baseline, err := e.Contributions(x)
		if err != nil {
			return nil, err
		}
		output := baseline
		for _, c := range contribs {
			output += c
		}
		data.Rows[i] = AttributionRow{Contributions: contribs, Baseline: baseline, Output: output}
	}
	return data, nil
}
