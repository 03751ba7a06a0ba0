package api

import (
	"time"

	"github.com/coastbus/coastbus/pkg/api/routes"
	"github.com/coastbus/coastbus/pkg/feed"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type FeedURLs struct {
	TripUpdates      string
	VehiclePositions string
}

func SetupServer(listen string, repository *schedule.Repository, feeds *feed.Cache, feedURLs FeedURLs) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())
	webApp.Use(cors.New())
	webApp.Use(compress.New())

	webApp.Get("/version", routes.APIVersion)
	webApp.Get("/health", routes.Health)

	stops := routes.Stops{Repository: repository}
	stops.Router(webApp)

	stopTimes := routes.StopTimes{
		Repository:     repository,
		Feeds:          feeds,
		TripUpdatesURL: feedURLs.TripUpdates,
		Clock:          time.Now,
	}
	stopTimes.Router(webApp)

	vehicles := routes.Vehicles{
		Repository:          repository,
		Feeds:               feeds,
		VehiclePositionsURL: feedURLs.VehiclePositions,
		Clock:               time.Now,
	}
	vehicles.Router(webApp)

	return webApp.Listen(listen)
}
