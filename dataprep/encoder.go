package dataprep

import (
	"sort"
)

// LabelEncoder maps each distinct category observed at fit time to a small
// integer. The class list is sorted, so index 0 is the lexicographically
// first category; unseen values at transform time map there deterministically
// instead of raising.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit collects the distinct values and freezes the class set. Never call
// twice; a bundle's encoders are fit once on the training data and reused.
func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]bool, len(values))
	e.Classes = e.Classes[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			e.Classes = append(e.Classes, v)
		}
	}
	sort.Strings(e.Classes)
	e.buildIndex()
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Transform encodes one value. The second return is false when the value was
// never seen at fit time, in which case the encoding falls back to class 0.
func (e *LabelEncoder) Transform(value string) (int, bool) {
	if e.index == nil {
		e.buildIndex()
	}
	if i, ok := e.index[value]; ok {
		return i, true
	}
	return 0, false
}

// FallbackClass is the category unseen values are coerced to.
func (e *LabelEncoder) FallbackClass() string {
	if len(e.Classes) == 0 {
		return ""
	}
	return e.Classes[0]
}
