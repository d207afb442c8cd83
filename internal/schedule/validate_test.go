package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, time.March, 11, 15, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2026, time.March, 11+offset, 0, 0, 0, 0, time.UTC)
	}

	assert.NoError(t, ValidateDate(day(0), now), "today is valid even though midnight passed")
	assert.NoError(t, ValidateDate(day(1), now))
	assert.NoError(t, ValidateDate(day(90), now), "horizon boundary is inclusive")
	assert.ErrorIs(t, ValidateDate(day(-1), now), ErrDateInPast)
	assert.ErrorIs(t, ValidateDate(day(91), now), ErrDateTooFar)
}

func TestValidateDateTime(t *testing.T) {
	now := time.Date(2026, time.March, 11, 15, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateDateTime(now.Add(time.Hour), now), "exactly the lead time is enough")
	assert.NoError(t, ValidateDateTime(now.Add(2*time.Hour), now))
	assert.ErrorIs(t, ValidateDateTime(now.Add(-time.Minute), now), ErrTimeInPast)
	assert.ErrorIs(t, ValidateDateTime(now, now), ErrTimeInPast)
	assert.ErrorIs(t, ValidateDateTime(now.Add(30*time.Minute), now), ErrInsufficientLead)
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)

	got, err := CombineDateTime(date, "15:04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 11, 15, 4, 0, 0, time.UTC), got)

	_, err = CombineDateTime(date, "25:99")
	assert.Error(t, err)
}

func TestValidateTime(t *testing.T) {
	assert.NoError(t, ValidateTime("09:00", nil))
	assert.NoError(t, ValidateTime("23:59", nil))
	assert.ErrorIs(t, ValidateTime("25:00", nil), ErrTimeInvalid)
	assert.ErrorIs(t, ValidateTime("10:75", nil), ErrTimeInvalid)
	assert.ErrorIs(t, ValidateTime("tarde", nil), ErrTimeInvalid)

	window := &Window{StartMin: 540, EndMin: 1080} // 09:00-18:00
	assert.NoError(t, ValidateTime("09:00", window))
	assert.NoError(t, ValidateTime("17:59", window))
	assert.ErrorIs(t, ValidateTime("08:59", window), ErrOutsideHours)
	assert.ErrorIs(t, ValidateTime("18:00", window), ErrOutsideHours, "window end is exclusive")
}
