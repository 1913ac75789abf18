package domain

import (
	"errors"
	"time"
)

// ErrStationNotFound is returned when a station code does not resolve.
var ErrStationNotFound = errors.New("station not found")

// ErrSameStation is returned when a schedule would link a station to itself.
var ErrSameStation = errors.New("source and destination station are the same")

// Station is a named location identified by a unique code (e.g. BIO, MAD).
// Stations are immutable reference data owned by the station directory.
type Station struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TravelSchedule is a directed trip between two stations with an
// estimated arrival time. The identifier is assigned on creation.
type TravelSchedule struct {
	ID               string    `json:"id"`
	Source           *Station  `json:"source"`
	Destination      *Station  `json:"destination"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	CreatedAt        time.Time `json:"created_at"`
}

// SearchStatus classifies the outcome of a schedule search.
type SearchStatus int

const (
	SearchOK SearchStatus = iota
	SearchBadRequest
	SearchNotFound
)

// ScheduleSearchResult carries the matches plus a message explaining
// why the sequence has its contents (success, past date, too far in
// the future, or no match).
type ScheduleSearchResult struct {
	Message   string           `json:"message"`
	Schedules []TravelSchedule `json:"schedules"`
	Status    SearchStatus     `json:"-"`
}

// StationRef references a station by code in create payloads.
type StationRef struct {
	Code string `json:"station_code"`
}

// ScheduleCreateRequest is the payload for registering a new schedule.
type ScheduleCreateRequest struct {
	Source           StationRef `json:"source"`
	Destination      StationRef `json:"destination"`
	EstimatedArrival time.Time  `json:"estimated_arrival"`
}
