package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/rutabus/internal/core/domain"
	"github.com/samirrijal/rutabus/internal/core/ports"
)

// StationService handles station directory reads.
type StationService struct {
	stations ports.StationRepository
	cache    ports.CacheService
}

// NewStationService creates a new StationService.
func NewStationService(stations ports.StationRepository, cache ports.CacheService) *StationService {
	return &StationService{stations: stations, cache: cache}
}

// GetByCode returns a single station by its unique code.
func (s *StationService) GetByCode(ctx context.Context, code string) (*domain.Station, error) {
	cacheKey := "stations:code:" + code
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var station domain.Station
			if err := json.Unmarshal(data, &station); err == nil {
				return &station, nil
			}
		}
	}

	station, err := s.stations.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// Stations are reference data, 10 min is safe
	if s.cache != nil {
		if data, err := json.Marshal(station); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return station, nil
}

// List returns all stations.
func (s *StationService) List(ctx context.Context) ([]domain.Station, error) {
	return s.stations.List(ctx)
}

// Search performs a name search on stations.
func (s *StationService) Search(ctx context.Context, query string, limit int) ([]domain.Station, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("stations:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stations []domain.Station
			if err := json.Unmarshal(data, &stations); err == nil {
				return stations, nil
			}
		}
	}

	stations, err := s.stations.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stations); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return stations, nil
}

// Upsert registers or updates a station and drops its cache entry.
func (s *StationService) Upsert(ctx context.Context, station *domain.Station) error {
	if err := s.stations.Upsert(ctx, station); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "stations:code:"+station.Code)
	}
	return nil
}
