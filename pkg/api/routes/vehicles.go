package routes

import (
	"errors"

	"github.com/coastbus/coastbus/pkg/feed"
	"github.com/coastbus/coastbus/pkg/metrics"
	"github.com/coastbus/coastbus/pkg/reconcile"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/coastbus/coastbus/pkg/servicedate"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Vehicles struct {
	Repository          *schedule.Repository
	Feeds               *feed.Cache
	VehiclePositionsURL string
	Clock               feed.Clock
}

func (v *Vehicles) Router(webApp *fiber.App) {
	webApp.Get("/vehicles_for_stop/:stop_id", v.getVehiclesForStop)
}

func (v *Vehicles) getVehiclesForStop(c *fiber.Ctx) error {
	stopID := c.Params("stop_id")

	date := c.Query("date")
	if date == "" {
		date = servicedate.Date(v.Clock())
	} else if _, err := servicedate.Parse(date); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Date must be an 8 digit YYYYMMDD string",
		})
	}

	validTrips, err := v.Repository.ValidTrips(c.Context(), stopID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrStoreUnavailable) {
			metrics.StoreErrors.Inc()
		}
		log.Error().Err(err).Str("stop", stopID).Str("date", date).Msg("Failed to fetch valid trips for stop")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to fetch vehicles",
		})
	}

	vehicles := []reconcile.Vehicle{}

	feedMessage, err := v.Feeds.Fetch(c.Context(), feed.KeyVehiclePositions, v.VehiclePositionsURL)
	if err != nil {
		log.Warn().Err(err).
			Str("feed", feed.KeyVehiclePositions).
			Str("stop", stopID).
			Str("date", date).
			Msg("Serving empty vehicle list without realtime")
	} else {
		vehicles = reconcile.Vehicles(feedMessage, validTrips)
	}

	return c.JSON(vehicles)
}
