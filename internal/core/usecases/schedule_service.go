package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/rutabus/internal/core/domain"
	"github.com/samirrijal/rutabus/internal/core/ports"
)

const (
	// maxSearchDays bounds how far ahead a search may look.
	maxSearchDays = 30

	// sameDayLeadTime is the minimum booking lead time for same-day searches.
	sameDayLeadTime = time.Hour

	dateLayout = "2006-01-02"
)

// SearchQuery is a raw, unvalidated schedule search. Nil fields mean the
// caller omitted the parameter entirely, as opposed to sending it empty.
type SearchQuery struct {
	SourceCode      *string
	DestinationCode *string
	Date            *string
}

// ScheduleService finds available schedules between two stations and
// registers new ones. The clock is injected so time-window behaviour is
// testable.
type ScheduleService struct {
	stations  ports.StationRepository
	schedules ports.ScheduleRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewScheduleService creates a new ScheduleService. publisher may be nil.
func NewScheduleService(stations ports.StationRepository, schedules ports.ScheduleRepository, publisher ports.EventPublisher) *ScheduleService {
	return &ScheduleService{
		stations:  stations,
		schedules: schedules,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the service clock.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// Search validates the query, resolves both stations, and runs the windowed
// availability search. Input and lookup failures come back as a structured
// result with a BadRequest or NotFound status; the error return is reserved
// for repository failures.
func (s *ScheduleService) Search(ctx context.Context, q SearchQuery) (*domain.ScheduleSearchResult, error) {
	if q.SourceCode == nil || q.DestinationCode == nil || q.Date == nil {
		return searchRejected(domain.SearchBadRequest, "Invalid input parameters"), nil
	}
	sourceCode, destinationCode, date := *q.SourceCode, *q.DestinationCode, *q.Date

	if strings.TrimSpace(destinationCode) == "" {
		msg := fmt.Sprintf("Destination station code is null or empty. Source code: %s", sourceCode)
		slog.Warn(msg)
		return searchRejected(domain.SearchBadRequest, msg), nil
	}
	if strings.TrimSpace(sourceCode) == "" {
		msg := "Source station code is null or empty"
		slog.Warn(msg)
		return searchRejected(domain.SearchBadRequest, msg), nil
	}

	source, err := s.stationByCode(ctx, sourceCode)
	if err != nil {
		return nil, err
	}
	destination, err := s.stationByCode(ctx, destinationCode)
	if err != nil {
		return nil, err
	}
	if source == nil || destination == nil {
		msg := "Invalid source or destination station code"
		slog.Warn(msg, "source", sourceCode, "destination", destinationCode)
		return searchRejected(domain.SearchNotFound, msg), nil
	}

	if sourceCode == destinationCode {
		msg := "Source and destination station codes cannot be the same"
		slog.Warn(msg, "code", sourceCode)
		return searchRejected(domain.SearchBadRequest, msg), nil
	}

	now := s.now()
	searchDate, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		msg := fmt.Sprintf("Invalid date format. The correct format is ISO date (yyyy-MM-dd). Source code: %s, Date: %s", sourceCode, date)
		slog.Warn(msg)
		return searchRejected(domain.SearchBadRequest, msg), nil
	}

	schedules, err := s.FindAvailable(ctx, source, destination, searchDate)
	if err != nil {
		return nil, err
	}

	if len(schedules) == 0 {
		msg := emptyResultMessage(searchDate, now)
		slog.Info(msg, "source", sourceCode, "destination", destinationCode, "date", date)
		return &domain.ScheduleSearchResult{
			Message:   msg,
			Schedules: []domain.TravelSchedule{},
			Status:    domain.SearchNotFound,
		}, nil
	}

	msg := fmt.Sprintf("Available schedules between %s and %s on %s", source.Name, destination.Name, date)
	slog.Info(msg, "count", len(schedules))
	return &domain.ScheduleSearchResult{
		Message:   msg,
		Schedules: schedules,
		Status:    domain.SearchOK,
	}, nil
}

// FindAvailable runs the windowed search for a resolved station pair.
// Past dates and dates beyond the look-ahead horizon yield an empty result
// without touching the store. For same-day searches the effective minimum
// instant is now plus the booking lead time; for future dates it is midnight
// of the search date. The store query filters on that single instant.
func (s *ScheduleService) FindAvailable(ctx context.Context, source, destination *domain.Station, searchDate time.Time) ([]domain.TravelSchedule, error) {
	now := s.now()
	today := midnight(now)

	if searchDate.Before(today) {
		slog.Warn("cannot search for schedules in the past", "date", searchDate.Format(dateLayout))
		return nil, nil
	}

	effective := searchDate
	if searchDate.Equal(today) {
		effective = now.Add(sameDayLeadTime)
	}

	if effective.After(now.Add(maxSearchDays * 24 * time.Hour)) {
		slog.Warn("search window exceeded", "date", searchDate.Format(dateLayout), "max_days", maxSearchDays)
		return nil, nil
	}

	schedules, err := s.schedules.FindBySourceDestinationAfter(ctx, source.ID, destination.ID, effective)
	if err != nil {
		return nil, fmt.Errorf("find schedules: %w", err)
	}

	if len(schedules) == 0 {
		slog.Warn("no available schedules for search criteria",
			"source", source.Code, "destination", destination.Code, "date", searchDate.Format(dateLayout))
	}
	return schedules, nil
}

// Create resolves both station codes and persists a new schedule. It returns
// true iff the store assigned an identifier. An unresolvable station code
// aborts the create: nothing is persisted and domain.ErrStationNotFound is
// returned.
func (s *ScheduleService) Create(ctx context.Context, req *domain.ScheduleCreateRequest) (bool, error) {
	slog.Info("creating travel schedule", "source", req.Source.Code, "destination", req.Destination.Code)

	if req.Source.Code == req.Destination.Code {
		return false, domain.ErrSameStation
	}

	destination, err := s.stations.FindByCode(ctx, req.Destination.Code)
	if err != nil {
		if errors.Is(err, domain.ErrStationNotFound) {
			slog.Warn("destination station does not resolve", "code", req.Destination.Code)
		}
		return false, err
	}
	source, err := s.stations.FindByCode(ctx, req.Source.Code)
	if err != nil {
		if errors.Is(err, domain.ErrStationNotFound) {
			slog.Warn("source station does not resolve", "code", req.Source.Code)
		}
		return false, err
	}

	saved, err := s.schedules.Save(ctx, &domain.TravelSchedule{
		Source:           source,
		Destination:      destination,
		EstimatedArrival: req.EstimatedArrival,
	})
	if err != nil {
		return false, fmt.Errorf("save schedule: %w", err)
	}

	if saved.ID != "" && s.publisher != nil {
		// Best effort: a broker outage must not fail the create.
		if err := s.publisher.PublishScheduleCreated(ctx, saved); err != nil {
			slog.Warn("publish schedule.created failed", "error", err)
		}
	}

	slog.Info("created travel schedule", "id", saved.ID)
	return saved.ID != "", nil
}

// DeparturesFrom returns the next schedules leaving a station.
func (s *ScheduleService) DeparturesFrom(ctx context.Context, stationCode string, limit int) ([]domain.TravelSchedule, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	station, err := s.stations.FindByCode(ctx, stationCode)
	if err != nil {
		return nil, err
	}
	return s.schedules.DeparturesFrom(ctx, station.ID, s.now(), limit)
}

// GetByID returns the schedule with the given ID.
func (s *ScheduleService) GetByID(ctx context.Context, id string) (*domain.TravelSchedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *ScheduleService) stationByCode(ctx context.Context, code string) (*domain.Station, error) {
	station, err := s.stations.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrStationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve station %q: %w", code, err)
	}
	return station, nil
}

// emptyResultMessage explains an empty result set. The "too far" check uses
// the same 30-day horizon the window computation uses, so the message can
// never disagree with the filter.
func emptyResultMessage(searchDate, now time.Time) string {
	today := midnight(now)

	switch {
	case searchDate.Before(today):
		return "No schedule is available for the date you searched for because it is in the past"
	case effectiveInstant(searchDate, now).After(now.Add(maxSearchDays * 24 * time.Hour)):
		return fmt.Sprintf("No schedule is available for the date you searched for because it is more than %d days in the future", maxSearchDays)
	default:
		return "No schedule is available for the date you searched for"
	}
}

func effectiveInstant(searchDate, now time.Time) time.Time {
	if searchDate.Equal(midnight(now)) {
		return now.Add(sameDayLeadTime)
	}
	return searchDate
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func searchRejected(status domain.SearchStatus, msg string) *domain.ScheduleSearchResult {
	return &domain.ScheduleSearchResult{
		Message:   msg,
		Schedules: []domain.TravelSchedule{},
		Status:    status,
	}
}
