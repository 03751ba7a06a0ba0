package routes

import (
	"errors"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/coastbus/coastbus/pkg/feed"
	"github.com/coastbus/coastbus/pkg/metrics"
	"github.com/coastbus/coastbus/pkg/reconcile"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/coastbus/coastbus/pkg/servicedate"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type StopTimes struct {
	Repository     *schedule.Repository
	Feeds          *feed.Cache
	TripUpdatesURL string
	Clock          feed.Clock
}

func (s *StopTimes) Router(webApp *fiber.App) {
	webApp.Get("/stop_times/:stop_id", s.getStopTimes)
}

func (s *StopTimes) getStopTimes(c *fiber.Ctx) error {
	stopID := c.Params("stop_id")

	today := servicedate.Date(s.Clock())

	date := c.Query("date")
	if date == "" {
		date = today
	} else if _, err := servicedate.Parse(date); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Date must be an 8 digit YYYYMMDD string",
		})
	}

	rows, err := s.Repository.ValidStopTimes(c.Context(), stopID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrStoreUnavailable) {
			metrics.StoreErrors.Inc()
		}
		log.Error().Err(err).Str("stop", stopID).Str("date", date).Msg("Failed to fetch static stop times")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to fetch stop times",
		})
	}

	// Realtime only applies to the current service day. A feed failure
	// degrades to static-only output rather than failing the request.
	isToday := date == today

	var feedMessage *gtfs.FeedMessage
	if isToday {
		feedMessage, err = s.Feeds.Fetch(c.Context(), feed.KeyTripUpdates, s.TripUpdatesURL)
		if err != nil {
			log.Warn().Err(err).
				Str("feed", feed.KeyTripUpdates).
				Str("stop", stopID).
				Str("date", date).
				Msg("Serving static stop times without realtime")
		}
	}

	return c.JSON(reconcile.Arrivals(rows, feedMessage, stopID, isToday))
}
