package reconcile

import (
	"sort"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/coastbus/coastbus/pkg/servicedate"
)

type Status string

const (
	StatusScheduled   Status = "SCHEDULED"
	StatusSkipped     Status = "SKIPPED"
	StatusCanceled    Status = "CANCELED"
	StatusAdded       Status = "ADDED"
	StatusUnscheduled Status = "UNSCHEDULED"
)

// Rollover correction thresholds, in minutes. A realtime and scheduled time
// more than half a day apart are assumed to sit on opposite sides of
// midnight.
const (
	halfDayMinutes = 720
	fullDayMinutes = 1440
)

// Sort key for rows with neither a scheduled nor a realtime clock time,
// placing them after every resolvable row
const unsortableKey = 1 << 30

// Arrival is one reconciled output row
type Arrival struct {
	TripID          string  `json:"trip_id"`
	RouteShortName  string  `json:"route_short_name"`
	RouteColor      string  `json:"route_color"`
	RouteTextColor  string  `json:"route_text_color"`
	ArrivalTime     string  `json:"arrival_time"`
	DepartureTime   string  `json:"departure_time"`
	StopHeadsign    string  `json:"stop_headsign"`
	RealTimeArrival *string `json:"real_time_arrival"`
	Status          Status  `json:"status"`

	sortKey int
}

// EventKind tags which of the oneof fields a feed stop time event actually
// carried
type EventKind int

const (
	EventUnknown EventKind = iota
	EventAbsoluteTime
	EventDelay
)

// StopTimeEvent is the tagged form of a feed arrival update, either an
// absolute unix timestamp or a delay against the schedule
type StopTimeEvent struct {
	Kind         EventKind
	Time         int64
	DelaySeconds int
}

type tripStatus struct {
	status Status
	event  StopTimeEvent
}

type syntheticCandidate struct {
	tripID string
	status Status
	event  StopTimeEvent
}

func eventFromUpdate(update *gtfs.TripUpdate_StopTimeUpdate) StopTimeEvent {
	arrival := update.GetArrival()
	if arrival == nil {
		return StopTimeEvent{Kind: EventUnknown}
	}

	if arrival.Time != nil {
		return StopTimeEvent{Kind: EventAbsoluteTime, Time: arrival.GetTime()}
	}
	if arrival.Delay != nil {
		return StopTimeEvent{Kind: EventDelay, DelaySeconds: int(arrival.GetDelay())}
	}

	return StopTimeEvent{Kind: EventUnknown}
}

// buildStatusIndex classifies every feed trip update relevant to the stop.
// Entities missing a trip descriptor or stop time updates are skipped rather
// than failing the whole feed.
func buildStatusIndex(feedMessage *gtfs.FeedMessage, stopID string) (map[string]tripStatus, []syntheticCandidate) {
	index := map[string]tripStatus{}
	var synthetic []syntheticCandidate

	for _, entity := range feedMessage.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil || tripUpdate.GetTrip() == nil {
			continue
		}

		tripID := tripUpdate.GetTrip().GetTripId()
		if tripID == "" {
			continue
		}

		switch tripUpdate.GetTrip().GetScheduleRelationship() {
		case gtfs.TripDescriptor_CANCELED:
			index[tripID] = tripStatus{status: StatusCanceled}
			continue
		case gtfs.TripDescriptor_ADDED, gtfs.TripDescriptor_UNSCHEDULED:
			stopUpdate := findStopUpdate(tripUpdate, stopID)
			if stopUpdate == nil {
				continue
			}

			status := StatusAdded
			if tripUpdate.GetTrip().GetScheduleRelationship() == gtfs.TripDescriptor_UNSCHEDULED {
				status = StatusUnscheduled
			}

			synthetic = append(synthetic, syntheticCandidate{
				tripID: tripID,
				status: status,
				event:  eventFromUpdate(stopUpdate),
			})
			continue
		}

		stopUpdate := findStopUpdate(tripUpdate, stopID)
		if stopUpdate == nil {
			continue
		}

		status := StatusScheduled
		if stopUpdate.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED {
			status = StatusSkipped
		}

		index[tripID] = tripStatus{status: status, event: eventFromUpdate(stopUpdate)}
	}

	return index, synthetic
}

func findStopUpdate(tripUpdate *gtfs.TripUpdate, stopID string) *gtfs.TripUpdate_StopTimeUpdate {
	for _, update := range tripUpdate.GetStopTimeUpdate() {
		if update.GetStopId() == stopID {
			return update
		}
	}

	return nil
}

// Arrivals reconciles the statically valid stop times with a decoded trip
// update feed. The feed is only applied when the requested date is the
// current service day, otherwise static times pass through unchanged. A nil
// feed message means realtime enrichment was unavailable.
func Arrivals(rows []schedule.StopTimeRow, feedMessage *gtfs.FeedMessage, stopID string, isToday bool) []Arrival {
	var index map[string]tripStatus
	var synthetic []syntheticCandidate

	if isToday && feedMessage != nil {
		index, synthetic = buildStatusIndex(feedMessage, stopID)
	}

	arrivals := make([]Arrival, 0, len(rows)+len(synthetic))
	seenTrips := map[string]bool{}

	for _, row := range rows {
		seenTrips[row.TripID] = true
		arrivals = append(arrivals, reconcileRow(row, index))
	}

	for _, candidate := range synthetic {
		if seenTrips[candidate.tripID] {
			continue
		}

		// A delay can't be reconciled without a scheduled baseline, so only
		// candidates carrying an absolute time become rows
		if candidate.event.Kind != EventAbsoluteTime {
			continue
		}

		clock := servicedate.ClockTime(time.Unix(candidate.event.Time, 0))
		realTime := clock

		arrivals = append(arrivals, Arrival{
			TripID:          candidate.tripID,
			RouteShortName:  "?",
			RouteColor:      "000000",
			RouteTextColor:  "FFFFFF",
			ArrivalTime:     clock,
			DepartureTime:   clock,
			RealTimeArrival: &realTime,
			Status:          candidate.status,
			sortKey:         servicedate.TimeToMinutes(clock),
		})
	}

	sort.SliceStable(arrivals, func(a int, b int) bool {
		return arrivals[a].sortKey < arrivals[b].sortKey
	})

	return arrivals
}

func reconcileRow(row schedule.StopTimeRow, index map[string]tripStatus) Arrival {
	arrival := Arrival{
		TripID:         row.TripID,
		RouteShortName: row.RouteShortName,
		RouteColor:     row.RouteColor,
		RouteTextColor: row.RouteTextColor,
		ArrivalTime:    servicedate.FormatClock(row.ArrivalTime),
		DepartureTime:  servicedate.FormatClock(row.DepartureTime),
		StopHeadsign:   row.StopHeadsign,
		Status:         StatusScheduled,
	}

	scheduledMinutes := servicedate.TimeToMinutes(row.ArrivalTime)
	arrival.sortKey = scheduledMinutes
	if scheduledMinutes < 0 {
		arrival.sortKey = unsortableKey
	}

	status, ok := index[row.TripID]
	if !ok {
		return arrival
	}

	switch status.status {
	case StatusCanceled:
		// The scheduled time stays visible and stale delays never attach
		arrival.Status = StatusCanceled
		return arrival
	case StatusSkipped:
		arrival.Status = StatusSkipped
		return arrival
	}

	realTime := ""
	switch status.event.Kind {
	case EventAbsoluteTime:
		realTime = servicedate.ClockTime(time.Unix(status.event.Time, 0))
	case EventDelay:
		realTime = servicedate.ShiftClock(row.ArrivalTime, status.event.DelaySeconds)
	}

	if realTime == "" {
		return arrival
	}

	arrival.RealTimeArrival = &realTime

	realTimeMinutes := servicedate.TimeToMinutes(realTime)
	if realTimeMinutes >= 0 {
		if scheduledMinutes >= 0 {
			arrival.sortKey = rolloverCorrect(scheduledMinutes, realTimeMinutes)
		} else {
			arrival.sortKey = realTimeMinutes
		}
	}

	return arrival
}

// rolloverCorrect shifts a realtime sort value by a full day when it sits
// more than half a day from the schedule, so post-midnight updates order next
// to their trips instead of at the other end of the board. Displayed values
// are never touched.
func rolloverCorrect(scheduledMinutes int, realTimeMinutes int) int {
	difference := realTimeMinutes - scheduledMinutes

	if difference > halfDayMinutes {
		return realTimeMinutes - fullDayMinutes
	}
	if difference < -halfDayMinutes {
		return realTimeMinutes + fullDayMinutes
	}

	return realTimeMinutes
}
