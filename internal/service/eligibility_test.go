package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
)

func strPtr(s string) *string { return &s }

func daysAgo(today time.Time, days int) *time.Time {
	t := today.AddDate(0, 0, -days)
	return &t
}

func TestComputeEligibilityNoHistory(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	status, next := ComputeEligibility(strPtr("male"), nil, today)
	assert.Equal(t, models.Eligible, status)
	assert.Nil(t, next)

	status, next = ComputeEligibility(nil, nil, today)
	assert.Equal(t, models.Eligible, status)
	assert.Nil(t, next)
}

func TestComputeEligibilityMaleBoundary(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	status, next := ComputeEligibility(strPtr("male"), daysAgo(today, 120), today)
	assert.Equal(t, models.Eligible, status)
	assert.Nil(t, next)

	last := daysAgo(today, 119)
	status, next = ComputeEligibility(strPtr("male"), last, today)
	assert.Equal(t, models.NotEligible, status)
	require.NotNil(t, next)
	assert.Equal(t, last.AddDate(0, 0, 120), *next)
}

func TestComputeEligibilityFemaleBoundary(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	status, next := ComputeEligibility(strPtr("female"), daysAgo(today, 90), today)
	assert.Equal(t, models.Eligible, status)
	assert.Nil(t, next)

	last := daysAgo(today, 89)
	status, next = ComputeEligibility(strPtr("female"), last, today)
	assert.Equal(t, models.NotEligible, status)
	require.NotNil(t, next)
	assert.Equal(t, last.AddDate(0, 0, 90), *next)
}

func TestComputeEligibilityOtherGenderUsesConservativeGap(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	status, _ := ComputeEligibility(strPtr("other"), daysAgo(today, 100), today)
	assert.Equal(t, models.NotEligible, status)

	status, _ = ComputeEligibility(nil, daysAgo(today, 100), today)
	assert.Equal(t, models.NotEligible, status)

	status, _ = ComputeEligibility(strPtr("other"), daysAgo(today, 120), today)
	assert.Equal(t, models.Eligible, status)
}

func TestComputeEligibilityIdempotent(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	last := daysAgo(today, 30)

	s1, n1 := ComputeEligibility(strPtr("female"), last, today)
	s2, n2 := ComputeEligibility(strPtr("female"), last, today)
	assert.Equal(t, s1, s2)
	require.NotNil(t, n1)
	require.NotNil(t, n2)
	assert.Equal(t, *n1, *n2)
}

func TestComputeEligibilityIgnoresClock(t *testing.T) {
	// 90 whole calendar days even though the clock times differ.
	last := time.Date(2026, 1, 1, 23, 50, 0, 0, time.UTC)
	today := time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC)

	status, _ := ComputeEligibility(strPtr("female"), &last, today)
	assert.Equal(t, models.Eligible, status)
}

func TestDaysUntilEligible(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	next := today.AddDate(0, 0, 10)
	assert.Equal(t, 10, DaysUntilEligible(&next, today))

	past := today.AddDate(0, 0, -3)
	assert.Equal(t, 0, DaysUntilEligible(&past, today))

	assert.Equal(t, 0, DaysUntilEligible(nil, today))
}

func TestRequiredGapDays(t *testing.T) {
	assert.Equal(t, 120, RequiredGapDays(strPtr("Male")))
	assert.Equal(t, 90, RequiredGapDays(strPtr("FEMALE")))
	assert.Equal(t, 120, RequiredGapDays(strPtr("nonbinary")))
	assert.Equal(t, 120, RequiredGapDays(nil))
}
