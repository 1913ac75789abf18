package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/rutabus/internal/core/domain"
	"github.com/samirrijal/rutabus/internal/core/usecases"
	"github.com/samirrijal/rutabus/internal/pkg/metrics"
)

// SearchSchedulesHandler runs the schedule availability search.
// GET /v1/schedules/search?source=BIO&destination=MAD&date=2026-09-01
//
// The service distinguishes an omitted parameter from an empty one, so the
// query is built from parameter presence rather than value defaults.
func SearchSchedulesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Context().QueryArgs()

		var q usecases.SearchQuery
		if args.Has("source") {
			v := c.Query("source")
			q.SourceCode = &v
		}
		if args.Has("destination") {
			v := c.Query("destination")
			q.DestinationCode = &v
		}
		if args.Has("date") {
			v := c.Query("date")
			q.Date = &v
		}

		result, err := deps.Schedules.Search(c.Context(), q)
		if err != nil {
			metrics.ScheduleSearches.WithLabelValues("error").Inc()
			return errInternal(c, err.Error())
		}

		status := fiber.StatusOK
		outcome := "ok"
		switch result.Status {
		case domain.SearchBadRequest:
			status = fiber.StatusBadRequest
			outcome = "bad_request"
		case domain.SearchNotFound:
			status = fiber.StatusNotFound
			outcome = "not_found"
		}
		metrics.ScheduleSearches.WithLabelValues(outcome).Inc()

		return c.Status(status).JSON(result)
	}
}

// CreateScheduleHandler registers a new travel schedule.
// POST /v1/schedules
func CreateScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.ScheduleCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Source.Code == "" || req.Destination.Code == "" {
			return errBadRequest(c, "source and destination station codes are required")
		}
		if req.EstimatedArrival.IsZero() {
			return errBadRequest(c, "estimated_arrival is required")
		}

		created, err := deps.Schedules.Create(c.Context(), &req)
		switch {
		case errors.Is(err, domain.ErrSameStation):
			return errBadRequest(c, "source and destination station codes cannot be the same")
		case errors.Is(err, domain.ErrStationNotFound):
			return errNotFound(c, "invalid source or destination station code")
		case err != nil:
			return errInternal(c, err.Error())
		}

		if !created {
			return errInternal(c, "schedule was not persisted")
		}

		metrics.SchedulesCreated.Inc()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": true})
	}
}

// GetScheduleHandler returns a single schedule by ID.
func GetScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "schedule id is required")
		}
		schedule, err := deps.Schedules.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "schedule not found")
		}
		return c.JSON(schedule)
	}
}

// ListStationsHandler returns all stations in the directory.
func ListStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stations, err := deps.Stations.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, stations, 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// SearchStationsHandler performs a name search on stations.
func SearchStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		stations, err := deps.Stations.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(stations)
	}
}

// GetStationHandler returns a single station by code.
func GetStationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")
		if code == "" {
			return errBadRequest(c, "station code is required")
		}
		station, err := deps.Stations.GetByCode(c.Context(), code)
		if err != nil {
			return errNotFound(c, "station not found")
		}
		return c.JSON(station)
	}
}

// StationDeparturesHandler returns the next schedules leaving a station.
func StationDeparturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")
		if code == "" {
			return errBadRequest(c, "station code is required")
		}
		limit := c.QueryInt("limit", 10)

		departures, err := deps.Schedules.DeparturesFrom(c.Context(), code, limit)
		if errors.Is(err, domain.ErrStationNotFound) {
			return errNotFound(c, "station not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(departures)
	}
}

// FeedStats holds row counts for the schedule tables.
type FeedStats struct {
	Stations     int    `json:"stations"`
	Schedules    int    `json:"schedules"`
	LastSchedule string `json:"last_schedule,omitempty"`
}

// FeedStatsHandler returns row counts from the schedule tables.
func FeedStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats FeedStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM stations),
				(SELECT count(*) FROM schedules),
				COALESCE((SELECT max(created_at)::text FROM schedules), '')
		`)
		if err := row.Scan(&stats.Stations, &stats.Schedules, &stats.LastSchedule); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
