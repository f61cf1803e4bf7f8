package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/au-weather-proxy/internal/geocode"
	"github.com/i474232898/au-weather-proxy/internal/logger"
	"github.com/i474232898/au-weather-proxy/internal/query"
	"github.com/i474232898/au-weather-proxy/internal/weather"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "au-weather-proxy"

// Deps are the collaborators the handlers need.
type Deps struct {
	Resolver   *geocode.Resolver
	Dispatcher weather.Dispatcher
	Log        *logger.Logger

	// Cache is probed by /health when it implements Health(ctx) error.
	Cache geocode.Cache

	// Now overrides the clock used for date window checks.
	Now func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := newHandlers(deps)

	app.Get("/health", h.health)

	api := app.Group("/api", corsGate)
	api.Get("/air-quality", h.airQuality)
	api.Get("/historical-weather", h.historicalWeather)
	api.Get("/suburb-lookup", h.suburbLookup)
}

// corsGate stamps the cross-origin headers on every response, answers
// preflight requests and rejects every verb other than GET.
func corsGate(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")

	switch c.Method() {
	case fiber.MethodOptions:
		return c.Status(fiber.StatusNoContent).Send(nil)
	case fiber.MethodGet:
		return c.Next()
	default:
		return fiber.NewError(fiber.StatusMethodNotAllowed, "Method not allowed. Use GET.")
	}
}

type healthChecker interface {
	Health(ctx context.Context) error
}

func (h *handlers) health(c *fiber.Ctx) error {
	if hc, ok := h.cache.(healthChecker); ok {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := hc.Health(ctx); err != nil {
			h.log.CacheError("health", "", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "degraded",
				"service": ServiceName,
				"cache":   "unavailable",
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": ServiceName,
	})
}

func newHandlers(deps Deps) *handlers {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	window := query.DefaultWindow()
	if deps.Now != nil {
		window.Now = deps.Now
	}
	return &handlers{
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		log:        deps.Log,
		window:     window,
		cache:      deps.Cache,
	}
}
