package table

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLowercasesColumns(t *testing.T) {
	tbl := New([]string{"CUSTOMER_ID", " Tenure_Months", "churn_flag"})
	assert.Equal(t, []string{"customer_id", "tenure_months", "churn_flag"}, tbl.Columns)
	assert.True(t, tbl.HasColumn("customer_id"))
	assert.False(t, tbl.HasColumn("CUSTOMER_ID"))
}

func TestValueAbsentColumn(t *testing.T) {
	tbl := New([]string{"a"})
	tbl.AddRow([]string{"1"})
	assert.Equal(t, "1", tbl.Value(0, "a"))
	assert.Equal(t, "", tbl.Value(0, "missing"))
}

func TestAddRowPadsShortRows(t *testing.T) {
	tbl := New([]string{"a", "b", "c"})
	tbl.AddRow([]string{"1"})
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "", tbl.Value(0, "b"))
	assert.Equal(t, "", tbl.Value(0, "c"))
}

func TestFromRecord(t *testing.T) {
	tbl := FromRecord(map[string]string{"Tenure_Months": "12", "contract_type": "monthly"})
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "12", tbl.Value(0, "tenure_months"))
	assert.Equal(t, "monthly", tbl.Value(0, "contract_type"))
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")
	content := "CUSTOMER_ID,TENURE_MONTHS,CHURN_FLAG\nc1,12,0\nc2,3,1\n"
	assert.Nil(t, os.WriteFile(path, []byte(content), 0644))

	tbl, err := LoadCSV(path)
	assert.Nil(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "3", tbl.Value(1, "tenure_months"))
	assert.Equal(t, "1", tbl.Value(1, "churn_flag"))
}

func TestLoadCSVGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv.gz")
	f, err := os.Create(path)
	assert.Nil(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("customer_id,tenure_months,churn_flag\nc1,12,0\n"))
	assert.Nil(t, err)
	assert.Nil(t, gz.Close())
	assert.Nil(t, f.Close())

	tbl, err := LoadCSV(path)
	assert.Nil(t, err)
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "12", tbl.Value(0, "tenure_months"))
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.NotNil(t, err)
}
