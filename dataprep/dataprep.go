package dataprep

import (
	"sort"
	"strconv"

	"churn/table"
	U "churn/util"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

var prepLog = log.WithField("prefix", "DataPrep")

// Prepared is the output of feature preparation: the encoded feature matrix,
// target vector, the stratified train/test row partition, ordered feature
// names and the transforms fit on the train partition.
type Prepared struct {
	X            [][]float64
	Y            []int
	TrainIdx     []int
	TestIdx      []int
	FeatureNames []string
	Encoders     map[string]*LabelEncoder
	Medians      map[string]float64

	// Declared features absent from the input, reported as a warning.
	MissingFeatures []string
}

// PrepareFeatures selects the declared feature columns present in the table,
// splits rows into stratified train and test partitions, and fits every
// transform on the train partition only: medians come from train cells,
// encoders from train categories. Test rows pass through the fitted
// transforms exactly as inference data later will. The target column must be
// present and at least one usable feature must remain.
func PrepareFeatures(t *table.Table, targetCol string, testFraction float64, seed int64) (*Prepared, error) {
	if !t.HasColumn(targetCol) {
		return nil, U.NewConfigurationError("target column %q not found in dataset", targetCol)
	}

	available := make([]string, 0, len(FeatureColumns))
	missing := make([]string, 0)
	for _, col := range FeatureColumns {
		if t.HasColumn(col) {
			available = append(available, col)
		} else {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		prepLog.WithField("features", missing).Warn("Declared features not in the dataset")
	}
	if len(available) == 0 {
		return nil, U.NewConfigurationError("no usable feature columns in dataset")
	}

	n := t.NumRows()
	p := &Prepared{
		FeatureNames:    available,
		Encoders:        make(map[string]*LabelEncoder),
		Medians:         make(map[string]float64),
		MissingFeatures: missing,
		X:               make([][]float64, n),
		Y:               make([]int, n),
	}
	for i := 0; i < n; i++ {
		p.X[i] = make([]float64, len(available))
	}

	// Target first; the row partition stratifies on it and the transforms
	// below fit on the train side of it.
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(t.Value(i, targetCol), 64)
		if err == nil && v >= 0.5 {
			p.Y[i] = 1
		}
	}
	p.TrainIdx, p.TestIdx = StratifiedSplitIndices(p.Y, testFraction, seed)

	for j, col := range available {
		if U.ContainsStringInArray(CategoricalColumns, col) {
			fitCategorical(t, col, j, p)
		} else {
			fitNumeric(t, col, j, p)
		}
	}

	prepLog.WithFields(log.Fields{
		"rows":       n,
		"train_rows": len(p.TrainIdx),
		"test_rows":  len(p.TestIdx),
		"features":   len(available),
	}).Info("Prepared features")
	return p, nil
}

// fitCategorical substitutes MISSING for empty cells, fits a fresh encoder on
// the train partition's categories and encodes every row through it. Test
// categories never seen in the train partition fall back like inference data.
func fitCategorical(t *table.Table, col string, j int, p *Prepared) {
	n := t.NumRows()
	values := make([]string, n)
	for i := 0; i < n; i++ {
		v := t.Value(i, col)
		if v == "" {
			v = MissingCategory
		}
		values[i] = v
	}

	trainValues := make([]string, 0, len(p.TrainIdx))
	for _, i := range p.TrainIdx {
		trainValues = append(trainValues, values[i])
	}
	enc := NewLabelEncoder()
	enc.Fit(trainValues)
	p.Encoders[col] = enc

	unseen := 0
	for i := 0; i < n; i++ {
		code, known := enc.Transform(values[i])
		if !known {
			unseen++
		}
		p.X[i][j] = float64(code)
	}
	if unseen > 0 {
		prepLog.WithFields(log.Fields{
			"column":   col,
			"count":    unseen,
			"fallback": enc.FallbackClass(),
		}).Warn("Test-split categories unseen in training mapped to fallback")
	}
}

// fitNumeric parses the column, computes the median over the train
// partition's parseable cells and imputes every unparseable cell with it.
// The median is recorded so inference reuses it instead of recomputing one
// per batch.
func fitNumeric(t *table.Table, col string, j int, p *Prepared) {
	n := t.NumRows()
	parsed := make([]float64, n)
	ok := make([]bool, n)
	for i := 0; i < n; i++ {
		raw := t.Value(i, col)
		if !U.IsNumericValue(raw) {
			continue
		}
		v, _ := strconv.ParseFloat(raw, 64)
		parsed[i], ok[i] = v, true
	}

	trainValid := make([]float64, 0, len(p.TrainIdx))
	for _, i := range p.TrainIdx {
		if ok[i] {
			trainValid = append(trainValid, parsed[i])
		}
	}
	median := 0.0
	if len(trainValid) > 0 {
		sort.Float64s(trainValid)
		median = stat.Quantile(0.5, stat.Empirical, trainValid, nil)
	}
	p.Medians[col] = median

	imputed := 0
	for i := 0; i < n; i++ {
		if ok[i] {
			p.X[i][j] = parsed[i]
		} else {
			p.X[i][j] = median
			imputed++
		}
	}
	if imputed > 0 {
		prepLog.WithFields(log.Fields{"column": col, "imputed": imputed, "median": median}).
			Warn("Imputed missing numeric values with train median")
	}
}
