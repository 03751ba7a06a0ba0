package servicedate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeZoneName is the civil time zone every service date and displayed clock
// time is computed in. It is a fixed constant so responses do not depend on
// the host locale.
const TimeZoneName = "America/Vancouver"

var location *time.Location

func init() {
	var err error
	location, err = time.LoadLocation(TimeZoneName)
	if err != nil {
		panic(fmt.Sprintf("failed to load time zone %s: %s", TimeZoneName, err))
	}
}

func Location() *time.Location {
	return location
}

// Date formats an instant as an 8 digit YYYYMMDD service date
func Date(t time.Time) string {
	return t.In(location).Format("20060102")
}

// Parse converts a YYYYMMDD service date back into an instant at local midnight
func Parse(dateString string) (time.Time, error) {
	return time.ParseInLocation("20060102", dateString, location)
}

// Weekday returns the lowercase weekday name for a service date, matching the
// per-day columns of the calendar table
func Weekday(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// ClockTime formats an instant as HH:MM local civil time
func ClockTime(t time.Time) string {
	return t.In(location).Format("15:04")
}

// TimeToMinutes converts a HH:MM or HH:MM:SS clock string into minutes since
// midnight. Hours may exceed 24 for post-midnight service. Returns -1 for a
// missing or malformed value.
func TimeToMinutes(clock string) int {
	if clock == "" {
		return -1
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return -1
	}

	hours, hoursErr := strconv.Atoi(parts[0])
	minutes, minutesErr := strconv.Atoi(parts[1])
	if hoursErr != nil || minutesErr != nil || hours < 0 || minutes < 0 || minutes > 59 {
		return -1
	}

	return hours*60 + minutes
}

// FormatClock truncates a stored HH:MM:SS clock string to HH:MM for display
func FormatClock(clock string) string {
	if len(clock) > 5 {
		return clock[:5]
	}
	return clock
}

// ShiftClock applies a delay in seconds to a HH:MM:SS clock string and returns
// the resulting HH:MM local clock time, wrapped onto the civil day.
func ShiftClock(clock string, delaySeconds int) string {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return ""
	}

	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds := 0
	if len(parts) > 2 {
		seconds, _ = strconv.Atoi(parts[2])
	}

	total := hours*3600 + minutes*60 + seconds + delaySeconds
	total = ((total % 86400) + 86400) % 86400

	return fmt.Sprintf("%02d:%02d", total/3600, (total%3600)/60)
}
