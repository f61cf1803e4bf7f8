package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/au-weather-proxy/internal/geocode"
	"github.com/i474232898/au-weather-proxy/internal/logger"
	"github.com/i474232898/au-weather-proxy/internal/query"
	"github.com/i474232898/au-weather-proxy/internal/weather"
)

const (
	SourceOpenMeteo = "open-meteo"

	msgUnresolved = "Unable to resolve suburb coordinates."
	msgQuota      = "The data provider quota has been exceeded. Please try again later."
)

// envelope is the body of every successful response.
type envelope struct {
	Source string `json:"source"`
	Data   any    `json:"data"`
}

// failureMessages are the client-visible texts for one endpoint.
type failureMessages struct {
	label      string
	upstream   string
	unexpected string
}

var (
	airQualityMessages = failureMessages{
		label:      "Air quality",
		upstream:   "Failed to fetch air quality data.",
		unexpected: "Unexpected error while looking up air quality.",
	}
	historicalMessages = failureMessages{
		label:      "Historical weather",
		upstream:   "Failed to fetch historical weather data.",
		unexpected: "Unexpected error while looking up historical weather.",
	}
	suburbMessages = failureMessages{
		label:      "Suburb lookup",
		upstream:   "Failed to fetch suburb data.",
		unexpected: "Unexpected error while looking up suburb.",
	}
)

type handlers struct {
	resolver   *geocode.Resolver
	dispatcher weather.Dispatcher
	log        *logger.Logger
	window     query.Window
	cache      geocode.Cache
}

func (h *handlers) airQuality(c *fiber.Ctx) error {
	q, err := query.ParseAirQuality(rawQuery(c), h.window)
	if err != nil {
		return badRequest(err)
	}
	coords, err := h.coordinates(c, q.Location)
	if err != nil {
		return err
	}
	return h.proxy(c, weather.EndpointAirQuality, q.Spec(coords), airQualityMessages)
}

func (h *handlers) historicalWeather(c *fiber.Ctx) error {
	q, err := query.ParseHistoricalWeather(rawQuery(c))
	if err != nil {
		return badRequest(err)
	}
	coords, err := h.coordinates(c, q.Location)
	if err != nil {
		return err
	}
	return h.proxy(c, weather.EndpointArchive, q.Spec(coords), historicalMessages)
}

func (h *handlers) suburbLookup(c *fiber.Ctx) error {
	q, err := query.ParseSuburbLookup(rawQuery(c))
	if err != nil {
		return badRequest(err)
	}

	results, source, err := h.resolver.Results(c.UserContext(), q.Suburb, q.State)
	if err != nil {
		h.log.UpstreamFailure(geocode.SourceNominatim, 0, "", err)
		if errors.Is(err, geocode.ErrUpstreamStatus) {
			return fiber.NewError(fiber.StatusBadGateway, suburbMessages.upstream)
		}
		return fiber.NewError(fiber.StatusInternalServerError, suburbMessages.unexpected)
	}
	if results == nil {
		results = []geocode.Result{}
	}
	return c.JSON(envelope{Source: source, Data: results})
}

// coordinates returns the literal coordinates or resolves the suburb.
func (h *handlers) coordinates(c *fiber.Ctx, loc query.Location) (weather.Coordinates, error) {
	if !loc.NeedsGeocoding() {
		return weather.Coordinates{
			Latitude:  loc.Coordinates.Latitude(),
			Longitude: loc.Coordinates.Longitude(),
		}, nil
	}

	coord, source, err := h.resolver.Coordinate(c.UserContext(), loc.Suburb, loc.State)
	if err != nil {
		h.log.Error("suburb resolution failed",
			slog.String("suburb", loc.Suburb),
			slog.String("state", loc.State),
			slog.String("error", err.Error()),
		)
		return weather.Coordinates{}, fiber.NewError(fiber.StatusNotFound, msgUnresolved)
	}
	h.log.Debug("suburb resolved", slog.String("state", loc.State), slog.String("source", source))
	return weather.Coordinates{Latitude: coord.Lat, Longitude: coord.Lon}, nil
}

// proxy dispatches spec and maps the outcome onto the response envelope.
func (h *handlers) proxy(c *fiber.Ctx, endpoint weather.Endpoint, spec *weather.RequestSpec, msgs failureMessages) error {
	data, err := h.dispatcher.Dispatch(c.UserContext(), endpoint, spec)
	if err == nil {
		return c.JSON(envelope{Source: SourceOpenMeteo, Data: data})
	}

	var upErr *weather.UpstreamError
	if errors.As(err, &upErr) {
		h.log.UpstreamFailure(string(endpoint), upErr.Status, upErr.Message, nil)
		if upErr.Quota() {
			return fiber.NewError(fiber.StatusTooManyRequests, msgQuota)
		}
		return fiber.NewError(fiber.StatusBadGateway, msgs.upstream)
	}

	h.log.UpstreamFailure(string(endpoint), 0, msgs.label+" request failed", err)
	return fiber.NewError(fiber.StatusInternalServerError, msgs.unexpected)
}

// rawQuery copies the query parameters out of fiber's reusable request
// buffers; parsed values may outlive the request in the geocode cache.
func rawQuery(c *fiber.Ctx) query.Raw {
	params := c.Queries()
	raw := make(query.Raw, len(params))
	for k, v := range params {
		raw[utils.CopyString(k)] = utils.CopyString(v)
	}
	return raw
}

func badRequest(err error) error {
	var pe *query.ParamError
	if errors.As(err, &pe) {
		return fiber.NewError(fiber.StatusBadRequest, pe.Message)
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
