package table

import (
	C "churn/config"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const featuresQuery = "SELECT * FROM churn_features"

// LoadWarehouse pulls the churn_features mart from the warehouse. Point in
// time, non streaming, not retried.
func LoadWarehouse(dbConf C.DBConf) (*Table, error) {
	if err := dbConf.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open("postgres", dbConf.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to warehouse")
	}
	defer db.Close()

	rows, err := db.Raw(featuresQuery).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query churn_features")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read result columns")
	}

	t := New(columns)
	values := make([]interface{}, len(columns))
	for i := range values {
		values[i] = new([]byte)
	}
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return nil, errors.Wrap(err, "failed to scan warehouse row")
		}
		row := make([]string, len(columns))
		for i := range values {
			raw := *(values[i].(*[]byte))
			row[i] = string(raw)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "warehouse row iteration failed")
	}

	tableLog.WithFields(log.Fields{"rows": t.NumRows(), "columns": len(t.Columns)}).
		Info("Loaded churn_features from warehouse")
	return t, nil
}
