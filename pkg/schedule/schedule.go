package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/coastbus/coastbus/pkg/gtfs"
	"github.com/coastbus/coastbus/pkg/servicedate"
	"gorm.io/gorm"
)

// ErrStoreUnavailable wraps every schedule store failure so callers can map
// it to a retryable 500 without inspecting driver errors.
var ErrStoreUnavailable = errors.New("schedule store unavailable")

// Stops in bounds responses are capped to keep payload size sane when a
// client asks for a whole region
const stopsInBoundsLimit = 1000

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StopTimeRow is a scheduled stop time joined with its trip and route display
// metadata, as returned by ValidStopTimes.
type StopTimeRow struct {
	TripID         string
	ServiceID      string
	TripHeadsign   string
	RouteShortName string
	RouteColor     string
	RouteTextColor string
	ArrivalTime    string
	DepartureTime  string
	StopHeadsign   string
}

// RouteDisplay is the route metadata attached to matched vehicle positions
type RouteDisplay struct {
	ShortName string
	Color     string
	TextColor string
}

// ValidStopTimes returns every scheduled stop time at the stop whose service
// is valid on the date, ordered by scheduled arrival time ascending.
//
// Candidate rows are fetched with a single join and validity is decided in Go
// by gtfs.ServiceRunsOn, so exception precedence lives in one tested place
// rather than being duplicated into SQL.
func (r *Repository) ValidStopTimes(ctx context.Context, stopID string, date string) ([]StopTimeRow, error) {
	var rows []StopTimeRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.trip_id,
			t.service_id,
			t.trip_headsign,
			r.route_short_name,
			r.route_color,
			r.route_text_color,
			st.arrival_time,
			st.departure_time,
			st.stop_headsign
		FROM stop_times st
		JOIN trips t ON st.trip_id = t.trip_id
		JOIN routes r ON t.route_id = r.route_id
		WHERE st.stop_id = ?
		ORDER BY st.arrival_time
	`, stopID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	if len(rows) == 0 {
		return rows, nil
	}

	serviceIDs := map[string]bool{}
	for _, row := range rows {
		serviceIDs[row.ServiceID] = true
	}
	serviceIDList := make([]string, 0, len(serviceIDs))
	for serviceID := range serviceIDs {
		serviceIDList = append(serviceIDList, serviceID)
	}

	calendars, exceptions, err := r.serviceRecords(ctx, serviceIDList, date)
	if err != nil {
		return nil, err
	}

	dateObj, err := servicedate.Parse(date)
	if err != nil {
		return nil, fmt.Errorf("invalid service date %s: %s", date, err)
	}
	weekday := servicedate.Weekday(dateObj)

	valid := rows[:0]
	for _, row := range rows {
		if gtfs.ServiceRunsOn(calendars[row.ServiceID], exceptions[row.ServiceID], date, weekday) {
			valid = append(valid, row)
		}
	}

	return valid, nil
}

// ValidTrips collapses ValidStopTimes into the trip to route display mapping
// used by the vehicle position matcher.
func (r *Repository) ValidTrips(ctx context.Context, stopID string, date string) (map[string]RouteDisplay, error) {
	rows, err := r.ValidStopTimes(ctx, stopID, date)
	if err != nil {
		return nil, err
	}

	trips := map[string]RouteDisplay{}
	for _, row := range rows {
		trips[row.TripID] = RouteDisplay{
			ShortName: row.RouteShortName,
			Color:     row.RouteColor,
			TextColor: row.RouteTextColor,
		}
	}

	return trips, nil
}

func (r *Repository) serviceRecords(ctx context.Context, serviceIDs []string, date string) (map[string]*gtfs.Calendar, map[string]*gtfs.CalendarDate, error) {
	var calendarRows []gtfs.Calendar
	err := r.db.WithContext(ctx).
		Where("service_id IN ?", serviceIDs).
		Find(&calendarRows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	var exceptionRows []gtfs.CalendarDate
	err = r.db.WithContext(ctx).
		Where("service_id IN ? AND date = ?", serviceIDs, date).
		Find(&exceptionRows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	calendars := map[string]*gtfs.Calendar{}
	for index := range calendarRows {
		calendars[calendarRows[index].ServiceID] = &calendarRows[index]
	}

	exceptions := map[string]*gtfs.CalendarDate{}
	for index := range exceptionRows {
		exceptions[exceptionRows[index].ServiceID] = &exceptionRows[index]
	}

	return calendars, exceptions, nil
}

// StopsInBounds returns stops inside the rectangle, capped at a fixed limit
func (r *Repository) StopsInBounds(ctx context.Context, north float64, east float64, south float64, west float64) ([]gtfs.Stop, error) {
	var stops []gtfs.Stop

	err := r.db.WithContext(ctx).
		Where("stop_lat <= ? AND stop_lat >= ? AND stop_lon <= ? AND stop_lon >= ?", north, south, east, west).
		Limit(stopsInBoundsLimit).
		Find(&stops).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	return stops, nil
}

// AllStops returns the full stop list
func (r *Repository) AllStops(ctx context.Context) ([]gtfs.Stop, error) {
	var stops []gtfs.Stop

	err := r.db.WithContext(ctx).Find(&stops).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	return stops, nil
}
