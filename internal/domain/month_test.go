package domain

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2026-09")
	require.NoError(t, err)
	assert.Equal(t, Month("2026-09"), m)

	for _, bad := range []string{"", "2026", "2026-9", "2026-13", "2026-00", "09-2026", "2026-09-01", "September 2026"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, "input %q", bad)
	}
}

func TestMonthValidate(t *testing.T) {
	assert.NoError(t, Month("2024-01").Validate())
	assert.ErrorIs(t, Month("2024-1").Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Month("").Validate(), ErrInvalidMonth)
}

func TestMonthTime(t *testing.T) {
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Month("2026-03").Time())
}

func TestMonthStringOrderIsChronological(t *testing.T) {
	months := []string{"2026-02", "2025-12", "2026-10", "2026-09", "2025-01"}
	sort.Strings(months)
	assert.Equal(t, []string{"2025-01", "2025-12", "2026-02", "2026-09", "2026-10"}, months)
}

func TestWeekdayLabelFor(t *testing.T) {
	assert.Equal(t, "Monday", WeekdayLabelFor(1))
	assert.Equal(t, "Sunday", WeekdayLabelFor(7))
	assert.Equal(t, "Day 8", WeekdayLabelFor(8))
	assert.Equal(t, "Day 0", WeekdayLabelFor(0))
}
