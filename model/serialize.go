package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// document is the persisted model envelope. The family tag selects which
// payload field carries the fitted model.
type document struct {
	Family   Family              `json:"family"`
	Logistic *LogisticRegression `json:"logistic_regression,omitempty"`
	Forest   *RandomForest       `json:"random_forest,omitempty"`
	Boosting *GradientBoosting   `json:"gradient_boosting,omitempty"`
}

// Marshal serializes a fitted classifier to its JSON document.
func Marshal(c Classifier) ([]byte, error) {
	doc := document{Family: c.Family()}
	switch m := c.(type) {
	case *LogisticRegression:
		doc.Logistic = m
	case *RandomForest:
		doc.Forest = m
	case *GradientBoosting:
		doc.Boosting = m
	default:
		return nil, errors.Errorf("unknown classifier type for family %q", c.Family())
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal restores a classifier from its JSON document.
func Unmarshal(data []byte) (Classifier, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode model document")
	}
	switch doc.Family {
	case FamilyLogisticRegression:
		if doc.Logistic == nil {
			return nil, errors.New("model document missing logistic_regression payload")
		}
		return doc.Logistic, nil
	case FamilyRandomForest:
		if doc.Forest == nil {
			return nil, errors.New("model document missing random_forest payload")
		}
		return doc.Forest, nil
	case FamilyGradientBoosting:
		if doc.Boosting == nil {
			return nil, errors.New("model document missing gradient_boosting payload")
		}
		return doc.Boosting, nil
	}
	return nil, errors.Errorf("unknown model family %q in document", doc.Family)
}

var _ Classifier = (*LogisticRegression)(nil)
var _ Classifier = (*RandomForest)(nil)
var _ Classifier = (*GradientBoosting)(nil)
