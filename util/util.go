package util

import (
	"fmt"
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const DefaultPrecision = 4

func ContainsStringInArray(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

func FloatRoundOffWithPrecision(value float64, precision int) (float64, error) {
	rounded, err := strconv.ParseFloat(fmt.Sprintf("%.*f", precision, value), 64)
	if err != nil {
		return 0, err
	}
	return rounded, nil
}

// IsNumericValue reports whether s parses as a finite float64.
func IsNumericValue(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// RecoverAndLog logs a recovered panic with the job name. Intended for
// use as `defer util.RecoverAndLog("Task#TrainChurnModels")` in job mains.
func RecoverAndLog(task string) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{"task": task, "panic": r}).Error("Recovered from panic")
	}
}
