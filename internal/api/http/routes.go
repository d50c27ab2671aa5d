package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
	"github.com/i474232898/weather-widget/web"
)

var validate = validator.New()

const invalidUnitsMessage = "Units must be metric or imperial."

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, provider weather.Provider, sessions *store.MemoryStore, opts widget.Options) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(web.Index)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var q weatherQuery
		q.bind(c)
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, q.validationMessage(err))
		}

		report, err := provider.Fetch(c.UserContext(), q.Q)
		if err != nil {
			return fetchError(err)
		}

		return c.JSON(weather.Render(report, weather.ParseUnitSystem(q.Units)))
	})

	v1.Post("/sessions", func(c *fiber.Ctx) error {
		w := widget.New(uuid.NewString(), provider, opts)
		sessions.Save(w)
		if err := w.Start(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start widget session")
		}
		return c.Status(fiber.StatusCreated).JSON(w.State())
	})

	v1.Get("/sessions/:id", withSession(sessions, func(c *fiber.Ctx, w *widget.Widget) error {
		return c.JSON(w.State())
	}))

	v1.Get("/sessions/:id/widget", withSession(sessions, func(c *fiber.Ctx, w *widget.Widget) error {
		body, err := widget.RenderHTML(w.State())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render widget")
		}
		c.Type("html", "utf-8")
		return c.Send(body)
	}))

	v1.Post("/sessions/:id/submit", withSession(sessions, func(c *fiber.Ctx, w *widget.Widget) error {
		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if err := w.Submit(req.Query); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(w.State())
		}
		return c.Status(fiber.StatusAccepted).JSON(w.State())
	}))

	v1.Post("/sessions/:id/locate", withSession(sessions, func(c *fiber.Ctx, w *widget.Widget) error {
		var req locateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := req.locator()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := w.Geolocate(c.UserContext(), loc); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(w.State())
		}
		return c.Status(fiber.StatusAccepted).JSON(w.State())
	}))

	v1.Post("/sessions/:id/units", withSession(sessions, func(c *fiber.Ctx, w *widget.Widget) error {
		var req unitsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		w.SetUnits(weather.ParseUnitSystem(req.Units))
		return c.JSON(w.State())
	}))
}

func withSession(sessions *store.MemoryStore, h func(*fiber.Ctx, *widget.Widget) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := sessions.Get(c.Params("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no widget session with that id")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load widget session")
		}
		return h(c, w)
	}
}

// fetchError maps a provider failure onto an HTTP error carrying the status line text.
func fetchError(err error) error {
	var fe *weather.FetchError
	if errors.As(err, &fe) && fe.Kind == weather.KindUnavailable {
		return fiber.NewError(fiber.StatusServiceUnavailable, weather.StatusMessage(err))
	}
	return fiber.NewError(fiber.StatusBadGateway, weather.StatusMessage(err))
}

// weatherQuery holds query parameters for the one-shot weather endpoint.
type weatherQuery struct {
	Q     string `validate:"required"`
	Units string `validate:"omitempty,oneof=metric imperial"`
}

func (q *weatherQuery) bind(c *fiber.Ctx) {
	q.Q = strings.TrimSpace(c.Query("q"))
	q.Units = strings.ToLower(strings.TrimSpace(c.Query("units")))
}

// validationMessage names the first failing parameter; a missing query wins over bad units.
func (q weatherQuery) validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	for _, fe := range verrs {
		if fe.Field() == "Q" {
			return widget.EmptyQueryMessage
		}
	}
	return invalidUnitsMessage
}

type submitRequest struct {
	Query string `json:"query"`
}

// locateRequest is the browser's answer to a device position request.
type locateRequest struct {
	Supported *bool    `json:"supported" validate:"required"`
	Lat       *float64 `json:"lat" validate:"omitempty,latitude"`
	Lon       *float64 `json:"lon" validate:"omitempty,longitude"`
	Error     string   `json:"error"`
}

func (r locateRequest) locator() (widget.Locator, error) {
	if !*r.Supported {
		return nil, nil
	}
	if r.Error != "" {
		return widget.ReportedPosition{Err: errors.New(r.Error)}, nil
	}
	if r.Lat == nil || r.Lon == nil {
		return nil, errors.New("lat and lon are required when no error is reported")
	}
	return widget.ReportedPosition{Position: widget.Position{Latitude: *r.Lat, Longitude: *r.Lon}}, nil
}

type unitsRequest struct {
	Units string `json:"units" validate:"required,oneof=metric imperial"`
}
