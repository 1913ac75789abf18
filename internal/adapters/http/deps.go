package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/rutabus/internal/adapters/postgres"
	"github.com/samirrijal/rutabus/internal/adapters/valkey"
	"github.com/samirrijal/rutabus/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Schedules *usecases.ScheduleService
	Stations  *usecases.StationService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
