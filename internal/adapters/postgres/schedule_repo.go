package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/rutabus/internal/core/domain"
)

// ScheduleRepo implements ports.ScheduleRepository with pgx.
type ScheduleRepo struct {
	db *DB
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `
	sch.id, sch.estimated_arrival, sch.created_at,
	src.id, src.code, src.name, src.created_at,
	dst.id, dst.code, dst.name, dst.created_at`

const scheduleJoins = `
	FROM schedules sch
	JOIN stations src ON src.id = sch.source_id
	JOIN stations dst ON dst.id = sch.destination_id`

func scanSchedule(row pgx.Row) (*domain.TravelSchedule, error) {
	var s domain.TravelSchedule
	var src, dst domain.Station
	if err := row.Scan(
		&s.ID, &s.EstimatedArrival, &s.CreatedAt,
		&src.ID, &src.Code, &src.Name, &src.CreatedAt,
		&dst.ID, &dst.Code, &dst.Name, &dst.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Source = &src
	s.Destination = &dst
	return &s, nil
}

// Save persists a schedule and returns it with the assigned identifier.
func (r *ScheduleRepo) Save(ctx context.Context, schedule *domain.TravelSchedule) (*domain.TravelSchedule, error) {
	var id string
	var createdAt time.Time
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO schedules (source_id, destination_id, estimated_arrival)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, schedule.Source.ID, schedule.Destination.ID, schedule.EstimatedArrival).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}

	saved := *schedule
	saved.ID = id
	saved.CreatedAt = createdAt
	return &saved, nil
}

// GetByID returns a schedule with both stations resolved.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*domain.TravelSchedule, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT`+scheduleColumns+scheduleJoins+` WHERE sch.id = $1`, id)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, pgx.ErrNoRows)
	}
	return s, err
}

// FindBySourceDestinationAfter returns schedules for the station pair whose
// estimated arrival is strictly after the given instant.
func (r *ScheduleRepo) FindBySourceDestinationAfter(ctx context.Context, sourceID, destinationID string, after time.Time) ([]domain.TravelSchedule, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT`+scheduleColumns+scheduleJoins+`
		WHERE sch.source_id = $1 AND sch.destination_id = $2 AND sch.estimated_arrival > $3
		ORDER BY sch.estimated_arrival
	`, sourceID, destinationID, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// DeparturesFrom returns the next schedules leaving a station.
func (r *ScheduleRepo) DeparturesFrom(ctx context.Context, sourceID string, after time.Time, limit int) ([]domain.TravelSchedule, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT`+scheduleColumns+scheduleJoins+`
		WHERE sch.source_id = $1 AND sch.estimated_arrival > $2
		ORDER BY sch.estimated_arrival
		LIMIT $3
	`, sourceID, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]domain.TravelSchedule, error) {
	var schedules []domain.TravelSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}
