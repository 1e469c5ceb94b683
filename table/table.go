package table

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var tableLog = log.WithField("prefix", "Table")

// Table is a column-ordered tabular structure with lower-cased column names.
// Cell values stay raw strings until dataprep parses them; an empty string is
// a missing value.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

func New(columns []string) *Table {
	t := &Table{Columns: make([]string, len(columns))}
	for i, c := range columns {
		t.Columns[i] = strings.ToLower(strings.TrimSpace(c))
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

func (t *Table) AddRow(row []string) {
	padded := make([]string, len(t.Columns))
	copy(padded, row)
	t.Rows = append(t.Rows, padded)
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at (row, column name); empty string when the column
// is absent.
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// FromRecord wraps a single key->value record into a one-row table so that
// single-record and batch scoring share one code path.
func FromRecord(record map[string]string) *Table {
	columns := make([]string, 0, len(record))
	for k := range record {
		columns = append(columns, strings.ToLower(k))
	}
	t := New(columns)
	row := make([]string, len(t.Columns))
	for k, v := range record {
		i := t.index[strings.ToLower(k)]
		row[i] = v
	}
	t.Rows = append(t.Rows, row)
	return t
}

// LoadCSV reads a churn_features export. Gzip is inferred from the .gz
// suffix. Column names are lower-cased; Snowflake exports them upper-case.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open csv")
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open gzip reader")
		}
		defer gz.Close()
		reader = gz
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}
	t := New(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read csv row")
		}
		t.AddRow(record)
	}
	tableLog.WithFields(log.Fields{"rows": t.NumRows(), "columns": len(t.Columns), "path": path}).
		Info("Loaded table from csv")
	return t, nil
}
