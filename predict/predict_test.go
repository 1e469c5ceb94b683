package predict

import (
	"strconv"
	"strings"
	"testing"

	"churn/artifacts"
	"churn/dataprep"
	"churn/model"
	serviceDisk "churn/services/disk"
	"churn/table"
	"churn/train"

	"github.com/stretchr/testify/assert"
)

func TestRiskCategory(t *testing.T) {
	assert.Equal(t, RiskHigh, RiskCategory(0.95))
	assert.Equal(t, RiskHigh, RiskCategory(0.70))
	assert.Equal(t, RiskMedium, RiskCategory(0.69))
	assert.Equal(t, RiskMedium, RiskCategory(0.50))
	assert.Equal(t, RiskLow, RiskCategory(0.49))
	assert.Equal(t, RiskLow, RiskCategory(0.30))
	assert.Equal(t, RiskVeryLow, RiskCategory(0.29))
	assert.Equal(t, RiskVeryLow, RiskCategory(0.0))
}

// trainingTable builds a small but learnable churn_features table: long
// tenures retain, short tenures churn.
func trainingTable() *table.Table {
	tbl := table.New([]string{"customer_id", "tenure_months", "contract_type", "churn_flag"})
	contracts := []string{"monthly", "annual"}
	for i := 0; i < 60; i++ {
		churn := "0"
		tenure := "36"
		if i%2 == 0 {
			churn = "1"
			tenure = "2"
		}
		tbl.AddRow([]string{"c" + strconv.Itoa(i), tenure, contracts[i%2], churn})
	}
	return tbl
}

// seedStore trains one generation on the fixture table and persists it.
func seedStore(t *testing.T) (*artifacts.Store, *table.Table) {
	store := artifacts.NewStore(serviceDisk.New(t.TempDir()))
	tbl := trainingTable()

	prepared, err := dataprep.PrepareFeatures(tbl, dataprep.TargetColumn, train.TestFraction, train.Seed)
	assert.Nil(t, err)
	result, err := train.TrainAndEvaluate(prepared)
	assert.Nil(t, err)

	bundle := dataprep.NewBundle(result.RunID, prepared, result.Scaler)
	assert.Nil(t, store.SaveBundle(bundle))
	for _, clf := range result.Models {
		assert.Nil(t, store.SaveModel(clf))
	}
	assert.Nil(t, store.SaveBestModel(result.BestModel))
	return store, tbl
}

func TestLoadPredictorMissingArtifacts(t *testing.T) {
	store := artifacts.NewStore(serviceDisk.New(t.TempDir()))
	_, err := LoadPredictor(store, "")
	assert.Equal(t, artifacts.ErrArtifactNotFound, err)
}

func TestLoadPredictorBestModel(t *testing.T) {
	store, _ := seedStore(t)
	p, err := LoadPredictor(store, "")
	assert.Nil(t, err)
	assert.True(t, p.Family().Valid())
	assert.NotEmpty(t, p.RunID())
}

func TestLoadPredictorFamilyOverride(t *testing.T) {
	store, _ := seedStore(t)
	p, err := LoadPredictor(store, model.FamilyLogisticRegression)
	assert.Nil(t, err)
	assert.Equal(t, model.FamilyLogisticRegression, p.Family())
}

func TestPredictTable(t *testing.T) {
	store, tbl := seedStore(t)
	p, err := LoadPredictor(store, "")
	assert.Nil(t, err)

	preds := p.PredictTable(tbl)
	assert.Equal(t, tbl.NumRows(), len(preds))
	for _, pred := range preds {
		assert.GreaterOrEqual(t, pred.ChurnProbability, 0.0)
		assert.LessOrEqual(t, pred.ChurnProbability, 1.0)
		assert.Equal(t, RiskCategory(pred.ChurnProbability), pred.RiskCategory)
		if pred.ChurnProbability >= Threshold {
			assert.Equal(t, 1, pred.Prediction)
		} else {
			assert.Equal(t, 0, pred.Prediction)
		}
	}
}

func TestSingleRecordMatchesBatch(t *testing.T) {
	store, tbl := seedStore(t)
	p, err := LoadPredictor(store, "")
	assert.Nil(t, err)

	batch := p.PredictTable(tbl)
	for i := 0; i < 10; i++ {
		record := map[string]string{
			"tenure_months": tbl.Value(i, "tenure_months"),
			"contract_type": tbl.Value(i, "contract_type"),
		}
		single := p.PredictRecord(record)
		assert.InDelta(t, batch[i].ChurnProbability, single.ChurnProbability, 1e-6)
		assert.Equal(t, batch[i].Prediction, single.Prediction)
		assert.Equal(t, batch[i].RiskCategory, single.RiskCategory)
	}
}

func TestWriteScoredTable(t *testing.T) {
	tbl := table.New([]string{"customer_id", "tenure_months"})
	tbl.AddRow([]string{"c1", "2"})
	tbl.AddRow([]string{"c2", "36"})
	preds := []Prediction{
		{Prediction: 1, ChurnProbability: 0.9, RiskCategory: RiskHigh},
		{Prediction: 0, ChurnProbability: 0.1, RiskCategory: RiskVeryLow},
	}

	out, err := WriteScoredTable(tbl, preds)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Equal(t, "customer_id,prediction,churn_probability,risk_category", lines[0])
	assert.Equal(t, "c1,1,0.900000,High Risk", lines[1])
	assert.Equal(t, "c2,0,0.100000,Very Low Risk", lines[2])
}

func TestWriteScoredTableWithoutCustomerID(t *testing.T) {
	tbl := table.New([]string{"tenure_months"})
	tbl.AddRow([]string{"2"})
	preds := []Prediction{{Prediction: 1, ChurnProbability: 0.8, RiskCategory: RiskHigh}}

	out, err := WriteScoredTable(tbl, preds)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "prediction,churn_probability,risk_category", lines[0])
}
