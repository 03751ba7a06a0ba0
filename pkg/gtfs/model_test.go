package gtfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func weekdayCalendar() *Calendar {
	return &Calendar{
		ServiceID: "WEEKDAY",
		Monday:    1,
		Tuesday:   1,
		Wednesday: 1,
		Thursday:  1,
		Friday:    1,
		StartDate: "20260101",
		EndDate:   "20261231",
	}
}

func TestCalendarRunsOn(t *testing.T) {
	calendar := weekdayCalendar()

	// 20260828 is a Friday, 20260829 a Saturday
	assert.True(t, calendar.RunsOn("20260828", "friday"))
	assert.False(t, calendar.RunsOn("20260829", "saturday"))

	assert.False(t, calendar.RunsOn("20251231", "wednesday"), "before validity range")
	assert.False(t, calendar.RunsOn("20270101", "friday"), "after validity range")
}

func TestServiceRunsOnRemovedExceptionWins(t *testing.T) {
	calendar := weekdayCalendar()
	removed := &CalendarDate{ServiceID: "WEEKDAY", Date: "20260828", ExceptionType: ExceptionRemoved}

	// The calendar covers the date and the weekday flag is set, the removed
	// exception still forces the service out
	assert.False(t, ServiceRunsOn(calendar, removed, "20260828", "friday"))
}

func TestServiceRunsOnAddedExceptionWins(t *testing.T) {
	calendar := weekdayCalendar()
	added := &CalendarDate{ServiceID: "WEEKDAY", Date: "20260829", ExceptionType: ExceptionAdded}

	// Saturday is not covered by the calendar, the added exception forces
	// the service in
	assert.True(t, ServiceRunsOn(calendar, added, "20260829", "saturday"))
}

func TestServiceRunsOnAddedExceptionWithoutCalendar(t *testing.T) {
	added := &CalendarDate{ServiceID: "SPECIAL", Date: "20260829", ExceptionType: ExceptionAdded}

	assert.True(t, ServiceRunsOn(nil, added, "20260829", "saturday"))
	assert.False(t, ServiceRunsOn(nil, nil, "20260829", "saturday"))
}

func TestServiceRunsOnExceptionForOtherDateIgnored(t *testing.T) {
	calendar := weekdayCalendar()
	removed := &CalendarDate{ServiceID: "WEEKDAY", Date: "20260827", ExceptionType: ExceptionRemoved}

	assert.True(t, ServiceRunsOn(calendar, removed, "20260828", "friday"))
}
