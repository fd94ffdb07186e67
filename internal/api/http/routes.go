package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/city-weather-tracker/internal/cities"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *cities.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		list, err := service.ListCities(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list cities")
		}
		if list == nil {
			list = []cities.City{}
		}
		return c.JSON(list)
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req createCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city, err := service.AddCity(c.UserContext(), req.Name, *req.Latitude, *req.Longitude)
		if err != nil {
			if errors.Is(err, cities.ErrDuplicateName) {
				return fiber.NewError(fiber.StatusConflict, "city with this name already exists")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to add city")
		}

		return c.Status(fiber.StatusCreated).JSON(city)
	})

	v1.Delete("/cities/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city id")
		}

		if err := service.RemoveCity(c.UserContext(), id); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to delete city")
		}

		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/cities/reset", func(c *fiber.Ctx) error {
		count, err := service.ResetCities(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reset cities")
		}
		return c.JSON(fiber.Map{"count": count})
	})

	v1.Post("/cities/refresh", func(c *fiber.Ctx) error {
		summary, err := service.RefreshAll(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to refresh cities")
		}
		return c.JSON(summary)
	})
}

// createCityRequest holds the add-city payload. Coordinates are pointers so
// that 0.0 passes the required check.
type createCityRequest struct {
	Name      string   `json:"name" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}
