package ports

import (
	"context"
	"time"

	"github.com/samirrijal/rutabus/internal/core/domain"
)

// StationRepository is the station directory.
type StationRepository interface {
	Upsert(ctx context.Context, station *domain.Station) error
	// FindByCode resolves a station code. Returns domain.ErrStationNotFound
	// when no station carries the code.
	FindByCode(ctx context.Context, code string) (*domain.Station, error)
	List(ctx context.Context) ([]domain.Station, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Station, error)
}

// ScheduleRepository is the schedule store.
type ScheduleRepository interface {
	// Save persists a schedule and returns the record with its assigned ID.
	Save(ctx context.Context, schedule *domain.TravelSchedule) (*domain.TravelSchedule, error)
	GetByID(ctx context.Context, id string) (*domain.TravelSchedule, error)
	// FindBySourceDestinationAfter returns schedules for the station pair
	// whose estimated arrival is strictly after the given instant, ordered
	// by arrival time.
	FindBySourceDestinationAfter(ctx context.Context, sourceID, destinationID string, after time.Time) ([]domain.TravelSchedule, error)
	// DeparturesFrom returns the next schedules leaving a station after the
	// given instant, ordered by arrival time.
	DeparturesFrom(ctx context.Context, sourceID string, after time.Time, limit int) ([]domain.TravelSchedule, error)
}
