package dataprep

import (
	"encoding/json"
	"strconv"
	"time"

	"churn/table"
	U "churn/util"

	log "github.com/sirupsen/logrus"
)

// Bundle is the fit-once, reuse-forever set of transforms binding a model to
// a specific feature representation: ordered feature names, per-categorical
// encoders, training medians and the fitted scaler. Created by one training
// run, persisted alongside its models and immutable afterwards. Training
// medians are stored here explicitly so inference never recomputes its own.
type Bundle struct {
	RunID        string                   `json:"run_id"`
	CreatedAt    time.Time                `json:"created_at"`
	FeatureNames []string                 `json:"feature_names"`
	Encoders     map[string]*LabelEncoder `json:"encoders"`
	Medians      map[string]float64       `json:"medians"`
	Scaler       *StandardScaler          `json:"scaler"`
}

// NewBundle freezes the transforms fit during feature preparation.
func NewBundle(runID string, p *Prepared, scaler *StandardScaler) *Bundle {
	return &Bundle{
		RunID:        runID,
		CreatedAt:    time.Now().UTC(),
		FeatureNames: p.FeatureNames,
		Encoders:     p.Encoders,
		Medians:      p.Medians,
		Scaler:       scaler,
	}
}

func (b *Bundle) Marshal() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Transform applies the persisted training-time transforms to new records:
// persisted medians for missing numerics, the MISSING category plus encoder
// fallback for categoricals, zero for expected-but-absent columns, then the
// fitted scaler. It never fits anything.
func (b *Bundle) Transform(t *table.Table) [][]float64 {
	n := t.NumRows()
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, len(b.FeatureNames))
	}

	unseen := make(map[string]int)
	absent := make([]string, 0)
	for j, col := range b.FeatureNames {
		if !t.HasColumn(col) {
			// The model requires the exact column order it was fit with, so
			// an absent feature is materialized as a zero column.
			absent = append(absent, col)
			continue
		}
		if enc, isCat := b.Encoders[col]; isCat {
			for i := 0; i < n; i++ {
				v := t.Value(i, col)
				if v == "" {
					v = MissingCategory
				}
				code, known := enc.Transform(v)
				if !known {
					unseen[col]++
				}
				X[i][j] = float64(code)
			}
		} else {
			median := b.Medians[col]
			for i := 0; i < n; i++ {
				raw := t.Value(i, col)
				if !U.IsNumericValue(raw) {
					X[i][j] = median
					continue
				}
				v, _ := strconv.ParseFloat(raw, 64)
				X[i][j] = v
			}
		}
	}

	if len(absent) > 0 {
		log.WithField("columns", absent).Warn("Expected features absent from input; defaulted to zero")
	}
	for col, count := range unseen {
		log.WithFields(log.Fields{
			"column":   col,
			"count":    count,
			"fallback": b.Encoders[col].FallbackClass(),
		}).Warn("Unseen categorical values mapped to fallback category")
	}

	return b.Scaler.Transform(X)
}
