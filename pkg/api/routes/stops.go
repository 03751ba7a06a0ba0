package routes

import (
	"github.com/coastbus/coastbus/pkg/schedule"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Stops struct {
	Repository *schedule.Repository

	validate *validator.Validate
}

func (s *Stops) Router(webApp *fiber.App) {
	s.validate = validator.New()

	webApp.Get("/stops", s.listStops)
	webApp.Get("/stops_in_bounds", s.listStopsInBounds)
}

type boundsQuery struct {
	North *float64 `query:"north" validate:"required"`
	East  *float64 `query:"east" validate:"required"`
	South *float64 `query:"south" validate:"required"`
	West  *float64 `query:"west" validate:"required"`
}

func (s *Stops) listStops(c *fiber.Ctx) error {
	stops, err := s.Repository.AllStops(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch stops")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to fetch stops",
		})
	}

	return c.JSON(stops)
}

func (s *Stops) listStopsInBounds(c *fiber.Ctx) error {
	var bounds boundsQuery
	if err := c.QueryParser(&bounds); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Malformed bounding box parameters",
		})
	}

	if err := s.validate.Struct(bounds); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Missing bounding box parameters (north, east, south, west)",
		})
	}

	stops, err := s.Repository.StopsInBounds(c.Context(), *bounds.North, *bounds.East, *bounds.South, *bounds.West)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch stops in bounds")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to fetch stops in bounds",
		})
	}

	return c.JSON(stops)
}
