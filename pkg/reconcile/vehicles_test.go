package reconcile

import (
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func vehicleEntity(entityID string, tripID string, lat float32, lon float32) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(entityID),
		Vehicle: &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{TripId: proto.String(tripID)},
			Position: &gtfs.Position{
				Latitude:  proto.Float32(lat),
				Longitude: proto.Float32(lon),
				Bearing:   proto.Float32(90),
			},
		},
	}
}

func TestVehiclesMatchValidTrips(t *testing.T) {
	validTrips := map[string]schedule.RouteDisplay{
		"T1": {ShortName: "15", Color: "005596", TextColor: "FFFFFF"},
	}

	feedMessage := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			vehicleEntity("v1", "T1", 48.43, -123.36),
			vehicleEntity("v2", "T-ELSEWHERE", 48.50, -123.40),
		},
	}

	vehicles := Vehicles(feedMessage, validTrips)

	require.Len(t, vehicles, 1)
	assert.Equal(t, "v1", vehicles[0].ID)
	assert.Equal(t, "T1", vehicles[0].TripID)
	assert.InDelta(t, 48.43, vehicles[0].Lat, 0.0001)
	assert.InDelta(t, -123.36, vehicles[0].Lon, 0.0001)
	assert.Equal(t, float64(90), vehicles[0].Bearing)
	assert.Equal(t, "15", vehicles[0].RouteShortName)
	assert.Equal(t, "005596", vehicles[0].RouteColor)
}

func TestVehiclesColourFallbacks(t *testing.T) {
	validTrips := map[string]schedule.RouteDisplay{
		"T1": {ShortName: "15"},
	}

	feedMessage := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{vehicleEntity("v1", "T1", 48.43, -123.36)},
	}

	vehicles := Vehicles(feedMessage, validTrips)

	require.Len(t, vehicles, 1)
	assert.Equal(t, "000000", vehicles[0].RouteColor)
	assert.Equal(t, "FFFFFF", vehicles[0].RouteTextColor)
}

func TestVehiclesOptionalMotionFields(t *testing.T) {
	validTrips := map[string]schedule.RouteDisplay{
		"T1": {ShortName: "15"},
	}

	bare := vehicleEntity("v1", "T1", 48.43, -123.36)

	rich := vehicleEntity("v2", "T1", 48.44, -123.37)
	rich.Vehicle.Position.Speed = proto.Float32(12.5)
	rich.Vehicle.OccupancyStatus = gtfs.VehiclePosition_FEW_SEATS_AVAILABLE.Enum()

	feedMessage := &gtfs.FeedMessage{Entity: []*gtfs.FeedEntity{bare, rich}}

	vehicles := Vehicles(feedMessage, validTrips)

	require.Len(t, vehicles, 2)

	assert.Nil(t, vehicles[0].Speed)
	assert.Nil(t, vehicles[0].OccupancyStatus)

	require.NotNil(t, vehicles[1].Speed)
	assert.InDelta(t, 12.5, *vehicles[1].Speed, 0.0001)
	require.NotNil(t, vehicles[1].OccupancyStatus)
	assert.Equal(t, "FEW_SEATS_AVAILABLE", *vehicles[1].OccupancyStatus)
}

func TestVehiclesMalformedEntitiesSkipped(t *testing.T) {
	validTrips := map[string]schedule.RouteDisplay{
		"T1": {ShortName: "15"},
	}

	noPosition := &gtfs.FeedEntity{
		Id: proto.String("v1"),
		Vehicle: &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{TripId: proto.String("T1")},
		},
	}
	noTrip := &gtfs.FeedEntity{
		Id: proto.String("v2"),
		Vehicle: &gtfs.VehiclePosition{
			Position: &gtfs.Position{Latitude: proto.Float32(48), Longitude: proto.Float32(-123)},
		},
	}

	feedMessage := &gtfs.FeedMessage{Entity: []*gtfs.FeedEntity{noPosition, noTrip}}

	assert.Empty(t, Vehicles(feedMessage, validTrips))
}

func TestVehiclesKeepFeedOrder(t *testing.T) {
	validTrips := map[string]schedule.RouteDisplay{
		"T1": {ShortName: "15"},
		"T2": {ShortName: "27"},
	}

	feedMessage := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			vehicleEntity("v2", "T2", 48.5, -123.4),
			vehicleEntity("v1", "T1", 48.4, -123.3),
		},
	}

	vehicles := Vehicles(feedMessage, validTrips)

	require.Len(t, vehicles, 2)
	assert.Equal(t, "v2", vehicles[0].ID)
	assert.Equal(t, "v1", vehicles[1].ID)
}
