package gtfs

type Stop struct {
	StopID   string  `gorm:"column:stop_id;primaryKey" json:"stop_id"`
	StopName string  `gorm:"column:stop_name" json:"stop_name"`
	StopDesc string  `gorm:"column:stop_desc" json:"stop_desc"`
	StopLat  float64 `gorm:"column:stop_lat" json:"stop_lat"`
	StopLon  float64 `gorm:"column:stop_lon" json:"stop_lon"`
}

func (Stop) TableName() string { return "stops" }

type Route struct {
	RouteID        string `gorm:"column:route_id;primaryKey"`
	AgencyID       string `gorm:"column:agency_id"`
	RouteShortName string `gorm:"column:route_short_name"`
	RouteColor     string `gorm:"column:route_color"`
	RouteTextColor string `gorm:"column:route_text_color"`
}

func (Route) TableName() string { return "routes" }

type Trip struct {
	TripID       string `gorm:"column:trip_id;primaryKey"`
	RouteID      string `gorm:"column:route_id"`
	ServiceID    string `gorm:"column:service_id"`
	DirectionID  int    `gorm:"column:direction_id"`
	TripHeadsign string `gorm:"column:trip_headsign"`
}

func (Trip) TableName() string { return "trips" }

// StopTime holds the scheduled times of a trip at a stop. Clock times are
// stored as HH:MM:SS strings and hours may exceed 24 to represent
// post-midnight service on the previous service day.
type StopTime struct {
	TripID        string `gorm:"column:trip_id"`
	StopID        string `gorm:"column:stop_id"`
	ArrivalTime   string `gorm:"column:arrival_time"`
	DepartureTime string `gorm:"column:departure_time"`
	StopSequence  int    `gorm:"column:stop_sequence"`
	StopHeadsign  string `gorm:"column:stop_headsign"`
}

func (StopTime) TableName() string { return "stop_times" }

type Calendar struct {
	ServiceID string `gorm:"column:service_id;primaryKey"`
	Monday    int    `gorm:"column:monday"`
	Tuesday   int    `gorm:"column:tuesday"`
	Wednesday int    `gorm:"column:wednesday"`
	Thursday  int    `gorm:"column:thursday"`
	Friday    int    `gorm:"column:friday"`
	Saturday  int    `gorm:"column:saturday"`
	Sunday    int    `gorm:"column:sunday"`
	StartDate string `gorm:"column:start_date"`
	EndDate   string `gorm:"column:end_date"`
}

func (Calendar) TableName() string { return "calendar" }

const (
	ExceptionAdded   = 1
	ExceptionRemoved = 2
)

// CalendarDate is a per-date service exception taking precedence over the
// weekly calendar.
type CalendarDate struct {
	ServiceID     string `gorm:"column:service_id"`
	Date          string `gorm:"column:date"`
	ExceptionType int    `gorm:"column:exception_type"`
}

func (CalendarDate) TableName() string { return "calendar_dates" }

// RunsOn reports whether the weekly calendar covers a service date, ignoring
// exceptions. The weekday name must be the lowercase column name matching the
// date.
func (c *Calendar) RunsOn(date string, weekday string) bool {
	if c.StartDate > date || c.EndDate < date {
		return false
	}

	switch weekday {
	case "monday":
		return c.Monday == 1
	case "tuesday":
		return c.Tuesday == 1
	case "wednesday":
		return c.Wednesday == 1
	case "thursday":
		return c.Thursday == 1
	case "friday":
		return c.Friday == 1
	case "saturday":
		return c.Saturday == 1
	case "sunday":
		return c.Sunday == 1
	}

	return false
}

// ServiceRunsOn decides whether a service is valid for a date. An added
// exception forces the service in, a removed exception forces it out, and
// otherwise the weekly calendar decides. Either calendar or exception may be
// nil when the feed has no such record for the service.
func ServiceRunsOn(calendar *Calendar, exception *CalendarDate, date string, weekday string) bool {
	if exception != nil && exception.Date == date {
		switch exception.ExceptionType {
		case ExceptionAdded:
			return true
		case ExceptionRemoved:
			return false
		}
	}

	if calendar == nil {
		return false
	}

	return calendar.RunsOn(date, weekday)
}
