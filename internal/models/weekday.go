package models

import "time"

// ISOWeekday converts a calendar date to the 1..7 day-of-week encoding used
// throughout the schedule and duty tables: 1 is Monday, 7 is Sunday.
func ISOWeekday(date time.Time) int {
	day := int(date.Weekday())
	if day == 0 {
		return 7
	}
	return day
}
