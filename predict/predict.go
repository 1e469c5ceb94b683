// Package predict serves churn scores from persisted artifacts. It applies
// the training-time preprocessing bundle, the requested (or best) model and
// the fixed risk tiers, identically for batch tables and single records.
package predict

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"churn/artifacts"
	"churn/dataprep"
	"churn/model"
	"churn/table"

	log "github.com/sirupsen/logrus"
)

var predictLog = log.WithField("prefix", "Predict")

// Threshold converts a churn probability into the binary prediction.
const Threshold = 0.5

const (
	RiskHigh    = "High Risk"
	RiskMedium  = "Medium Risk"
	RiskLow     = "Low Risk"
	RiskVeryLow = "Very Low Risk"
)

// RiskCategory buckets a churn probability into its tier.
func RiskCategory(p float64) string {
	switch {
	case p >= 0.70:
		return RiskHigh
	case p >= 0.50:
		return RiskMedium
	case p >= 0.30:
		return RiskLow
	}
	return RiskVeryLow
}

// Prediction is one customer's scoring result.
type Prediction struct {
	Prediction       int     `json:"prediction"`
	ChurnProbability float64 `json:"churn_probability"`
	RiskCategory     string  `json:"risk_category"`
}

// Predictor binds a fitted classifier to the preprocessing bundle it was
// trained with.
type Predictor struct {
	bundle *dataprep.Bundle
	clf    model.Classifier
}

// LoadPredictor restores a predictor from the store. An empty family loads
// the best model per the persisted pointer. A missing bundle or model
// returns artifacts.ErrArtifactNotFound.
func LoadPredictor(store *artifacts.Store, family model.Family) (*Predictor, error) {
	bundle, err := store.LoadBundle()
	if err != nil {
		return nil, err
	}
	if family == "" {
		family = store.LoadBestModel()
	}
	clf, err := store.LoadModel(family)
	if err != nil {
		return nil, err
	}
	predictLog.WithFields(log.Fields{
		"family": family,
		"run_id": bundle.RunID,
	}).Info("Loaded predictor")
	return &Predictor{bundle: bundle, clf: clf}, nil
}

func (p *Predictor) Family() model.Family { return p.clf.Family() }

// RunID identifies the training generation the predictor serves.
func (p *Predictor) RunID() string { return p.bundle.RunID }

// PredictTable scores every row of a table.
func (p *Predictor) PredictTable(t *table.Table) []Prediction {
	X := p.bundle.Transform(t)
	proba := p.clf.PredictProba(X)
	out := make([]Prediction, len(proba))
	for i, pr := range proba {
		out[i] = Prediction{
			ChurnProbability: pr,
			RiskCategory:     RiskCategory(pr),
		}
		if pr >= Threshold {
			out[i].Prediction = 1
		}
	}
	return out
}

// PredictRecord scores one customer record through the identical transform
// path as batch scoring.
func (p *Predictor) PredictRecord(record map[string]string) Prediction {
	return p.PredictTable(table.FromRecord(record))[0]
}

// WriteScoredTable renders the input rows with the three score columns
// appended as CSV. The customer_id column leads when the input carries one.
func WriteScoredTable(t *table.Table, preds []Prediction) ([]byte, error) {
	const idCol = "customer_id"

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"prediction", "churn_probability", "risk_category"}
	if t.HasColumn(idCol) {
		header = append([]string{idCol}, header...)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, pred := range preds {
		row := []string{
			strconv.Itoa(pred.Prediction),
			strconv.FormatFloat(pred.ChurnProbability, 'f', 6, 64),
			pred.RiskCategory,
		}
		if t.HasColumn(idCol) {
			row = append([]string{t.Value(i, idCol)}, row...)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
