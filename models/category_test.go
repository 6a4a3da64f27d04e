package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType(TypeIncome))
	assert.True(t, IsValidType(TypeExpense))
	assert.False(t, IsValidType(""))
	assert.False(t, IsValidType("transfer"))
}

func TestIsValidPeriod(t *testing.T) {
	assert.True(t, IsValidPeriod(PeriodMonthly))
	assert.True(t, IsValidPeriod(PeriodYearly))
	assert.False(t, IsValidPeriod(""))
	assert.False(t, IsValidPeriod("weekly"))
}
