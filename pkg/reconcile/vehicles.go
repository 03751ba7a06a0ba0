package reconcile

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/coastbus/coastbus/pkg/schedule"
)

// Vehicle is a realtime vehicle position enriched with the display metadata
// of its matched trip's route
type Vehicle struct {
	ID              string   `json:"id"`
	TripID          string   `json:"trip_id"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	Bearing         float64  `json:"bearing"`
	Speed           *float64 `json:"speed,omitempty"`
	OccupancyStatus *string  `json:"occupancy_status,omitempty"`
	RouteShortName  string   `json:"route_short_name"`
	RouteColor      string   `json:"route_color"`
	RouteTextColor  string   `json:"route_text_color"`
}

// Vehicles filters a vehicle position feed down to the vehicles serving trips
// in the valid trip set, keeping feed iteration order. Entities without a
// trip or position are skipped per entity.
func Vehicles(feedMessage *gtfs.FeedMessage, validTrips map[string]schedule.RouteDisplay) []Vehicle {
	vehicles := []Vehicle{}

	for _, entity := range feedMessage.GetEntity() {
		vehiclePosition := entity.GetVehicle()
		if vehiclePosition == nil || vehiclePosition.GetTrip() == nil || vehiclePosition.GetPosition() == nil {
			continue
		}

		tripID := vehiclePosition.GetTrip().GetTripId()
		display, ok := validTrips[tripID]
		if !ok {
			continue
		}

		position := vehiclePosition.GetPosition()

		vehicle := Vehicle{
			ID:             entity.GetId(),
			TripID:         tripID,
			Lat:            float64(position.GetLatitude()),
			Lon:            float64(position.GetLongitude()),
			Bearing:        float64(position.GetBearing()),
			RouteShortName: display.ShortName,
			RouteColor:     display.Color,
			RouteTextColor: display.TextColor,
		}

		if vehicle.RouteColor == "" {
			vehicle.RouteColor = "000000"
		}
		if vehicle.RouteTextColor == "" {
			vehicle.RouteTextColor = "FFFFFF"
		}

		if position.Speed != nil {
			speed := float64(position.GetSpeed())
			vehicle.Speed = &speed
		}

		if vehiclePosition.OccupancyStatus != nil {
			occupancy := vehiclePosition.GetOccupancyStatus().String()
			vehicle.OccupancyStatus = &occupancy
		}

		vehicles = append(vehicles, vehicle)
	}

	return vehicles
}
