package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/station"
	"github.com/i474232898/forecaster-text/internal/store"
	"github.com/i474232898/forecaster-text/internal/weather"
	"github.com/i474232898/forecaster-text/internal/world"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorHandler renders every error as {"error":true,"message":...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *station.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/worlds", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"worlds": service.Worlds(),
		})
	})

	worlds := v1.Group("/worlds/:world")

	worlds.Put("/snapshot", func(c *fiber.Ctx) error {
		var snap world.Snapshot
		if err := c.BodyParser(&snap); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid snapshot body: "+err.Error())
		}
		if err := validate.Struct(snap); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		worldID := c.Params("world")
		if err := service.SaveSnapshot(worldID, snap); err != nil {
			return toFiberError(err, "failed to store snapshot")
		}

		latest, err := service.Latest(worldID)
		if err != nil {
			return toFiberError(err, "failed to store snapshot")
		}
		return c.Status(fiber.StatusCreated).JSON(latest)
	})

	worlds.Get("/snapshot", func(c *fiber.Ctx) error {
		snap, err := service.Latest(c.Params("world"))
		if err != nil {
			return toFiberError(err, "failed to fetch snapshot")
		}
		return c.JSON(snap)
	})

	worlds.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		worldID := c.Params("world")
		snapshots, err := service.History(worldID, req.From, req.To)
		if err != nil {
			return toFiberError(err, "failed to fetch snapshot history")
		}

		return c.JSON(fiber.Map{
			"world":     worldID,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	worlds.Get("/forecast", func(c *fiber.Ctx) error {
		farmerID := uuid.Nil
		if raw := c.Query("farmer"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "farmer must be a uuid")
			}
			farmerID = id
		}

		report, err := service.Forecast(c.UserContext(), c.Params("world"), farmerID, c.Query("locale"))
		if err != nil {
			return toFiberError(err, "failed to build forecast")
		}
		return c.JSON(report)
	})

	v1.Get("/forecast/test", func(c *fiber.Ctx) error {
		q := testQuery{Icon: c.Query("icon"), Locale: c.Query("locale")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		b, err := service.TestForecast(q.Icon, q.Locale)
		if err != nil {
			return toFiberError(err, "failed to build test forecast")
		}
		return c.JSON(b)
	})

	v1.Post("/farmers", func(c *fiber.Ctx) error {
		var req createFarmerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		f, err := service.CreateFarmer(c.UserContext(), req.Name)
		if err != nil {
			return toFiberError(err, "failed to create farmer")
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	})

	v1.Get("/farmers/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "id must be a uuid")
		}

		f, err := service.Farmer(c.UserContext(), id)
		if err != nil {
			return toFiberError(err, "failed to fetch farmer")
		}
		return c.JSON(f)
	})

	v1.Post("/farmers/:id/mail", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "id must be a uuid")
		}

		var req addMailRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
		req.Flag = strings.TrimSpace(req.Flag)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		f, err := service.AddMail(c.UserContext(), id, req.Flag)
		if err != nil {
			return toFiberError(err, "failed to add mail")
		}
		return c.JSON(f)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(settingsResponse(service.Settings()))
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}

		settings, err := service.UpdateSettings(req.PrimaryWeather, req.SecondaryWeather)
		if err != nil {
			return toFiberError(err, "failed to update settings")
		}
		return c.JSON(settingsResponse(settings))
	})

	v1.Get("/weathers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"weathers": service.Weathers(),
		})
	})

	v1.Post("/weathers", func(c *fiber.Ctx) error {
		var req station.WeatherDefinition
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		def, err := service.RegisterWeather(req)
		if err != nil {
			return toFiberError(err, "failed to register weather")
		}
		return c.Status(fiber.StatusCreated).JSON(def)
	})
}

// toFiberError maps service errors to HTTP status codes. Unclassified
// errors become a 500 with a generic message.
func toFiberError(err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrFarmerNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, station.ErrReadOnlyReplica):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, forecast.ErrUnknownPolicy),
		errors.Is(err, weather.ErrUnknownIcon),
		errors.Is(err, station.ErrInvalidWeather):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

type testQuery struct {
	Icon   string `validate:"required"`
	Locale string
}

type createFarmerRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type addMailRequest struct {
	Flag string `json:"flag" validate:"required,max=128"`
}

type settingsRequest struct {
	PrimaryWeather   string `json:"primaryWeather"`
	SecondaryWeather string `json:"secondaryWeather"`
}

func settingsResponse(s forecast.Settings) fiber.Map {
	return fiber.Map{
		"primaryWeather":   s.PrimaryWeather,
		"secondaryWeather": s.SecondaryWeather,
		"allowed":          forecast.DisplayPolicyValues(),
	}
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
