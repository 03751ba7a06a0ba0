package api

import (
	"context"

	"github.com/coastbus/coastbus/pkg/database"
	"github.com/coastbus/coastbus/pkg/feed"
	"github.com/coastbus/coastbus/pkg/metrics"
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/coastbus/coastbus/pkg/util"
	"github.com/urfave/cli/v2"
)

const (
	defaultTripUpdatesURL      = "https://bct.tmix.se/gtfs-realtime/tripupdates.pb?operatorIds=48"
	defaultVehiclePositionsURL = "https://bct.tmix.se/gtfs-realtime/vehicleupdates.pb?operatorIds=48"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the arrivals web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "metrics-listen",
						Value: ":9090",
						Usage: "listen target for the prometheus metrics server",
					},
					&cli.BoolFlag{
						Name:  "prefetch",
						Usage: "keep the realtime feed cache warm in the background",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					env := util.GetEnvironmentVariables()

					feedURLs := FeedURLs{
						TripUpdates:      defaultTripUpdatesURL,
						VehiclePositions: defaultVehiclePositionsURL,
					}
					if env["COASTBUS_TRIP_UPDATES_URL"] != "" {
						feedURLs.TripUpdates = env["COASTBUS_TRIP_UPDATES_URL"]
					}
					if env["COASTBUS_VEHICLE_POSITIONS_URL"] != "" {
						feedURLs.VehiclePositions = env["COASTBUS_VEHICLE_POSITIONS_URL"]
					}

					repository := schedule.NewRepository(database.GlobalGorm)
					feeds := feed.NewCache(feed.DefaultTTL, nil, nil)

					if c.Bool("prefetch") {
						refresher := feed.Refresher{
							Cache: feeds,
							Endpoints: []feed.Endpoint{
								{Key: feed.KeyTripUpdates, URL: feedURLs.TripUpdates},
								{Key: feed.KeyVehiclePositions, URL: feedURLs.VehiclePositions},
							},
						}
						go refresher.Run(context.Background())
					}

					metrics.Serve(c.String("metrics-listen"))

					return SetupServer(c.String("listen"), repository, feeds, feedURLs)
				},
			},
		},
	}
}
