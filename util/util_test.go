package util

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestContainsStringInArray(t *testing.T) {
	arr := []string{"contract_type", "plan_type", "gender"}
	assert.True(t, ContainsStringInArray(arr, "plan_type"))
	assert.False(t, ContainsStringInArray(arr, "tenure_months"))
	assert.False(t, ContainsStringInArray(nil, "anything"))
}

func TestFloatRoundOffWithPrecision(t *testing.T) {
	rounded, err := FloatRoundOffWithPrecision(0.123456, 4)
	assert.Nil(t, err)
	assert.Equal(t, 0.1235, rounded)

	rounded, err = FloatRoundOffWithPrecision(2.0, 2)
	assert.Nil(t, err)
	assert.Equal(t, 2.0, rounded)
}

func TestIsNumericValue(t *testing.T) {
	assert.True(t, IsNumericValue("42"))
	assert.True(t, IsNumericValue("-3.14"))
	assert.False(t, IsNumericValue(""))
	assert.False(t, IsNumericValue("monthly"))
	assert.False(t, IsNumericValue("NaN"))
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("target column %q not found", "churn_flag")
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "churn_flag")

	assert.False(t, IsConfigurationError(errors.New("transient failure")))
	assert.False(t, IsConfigurationError(nil))
}
