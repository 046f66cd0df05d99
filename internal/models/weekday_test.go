package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekday(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), 3},
		{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), 6},
		{time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 7},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ISOWeekday(tc.date), tc.date.Format("2006-01-02"))
	}
}

func TestAbsenceContains(t *testing.T) {
	absence := Absence{
		TeacherID: 1,
		StartDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, absence.Contains(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, absence.Contains(time.Date(2024, 3, 6, 23, 30, 0, 0, time.UTC)))
	assert.False(t, absence.Contains(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, absence.Contains(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)))
}
