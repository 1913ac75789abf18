package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/rutabus/internal/adapters/http"
	"github.com/samirrijal/rutabus/internal/core/domain"
	"github.com/samirrijal/rutabus/internal/core/usecases"
)

// ---- Mock repositories ----

type mockStationRepo struct {
	findByCodeFn func(ctx context.Context, code string) (*domain.Station, error)
	listFn       func(ctx context.Context) ([]domain.Station, error)
	searchFn     func(ctx context.Context, query string, limit int) ([]domain.Station, error)
}

func (m *mockStationRepo) Upsert(ctx context.Context, st *domain.Station) error { return nil }
func (m *mockStationRepo) FindByCode(ctx context.Context, code string) (*domain.Station, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, domain.ErrStationNotFound
}
func (m *mockStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockStationRepo) Search(ctx context.Context, query string, limit int) ([]domain.Station, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

type mockScheduleRepo struct {
	saveFn       func(ctx context.Context, sch *domain.TravelSchedule) (*domain.TravelSchedule, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.TravelSchedule, error)
	findAfterFn  func(ctx context.Context, sourceID, destinationID string, after time.Time) ([]domain.TravelSchedule, error)
	departuresFn func(ctx context.Context, sourceID string, after time.Time, limit int) ([]domain.TravelSchedule, error)
}

func (m *mockScheduleRepo) Save(ctx context.Context, sch *domain.TravelSchedule) (*domain.TravelSchedule, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, sch)
	}
	return sch, nil
}
func (m *mockScheduleRepo) GetByID(ctx context.Context, id string) (*domain.TravelSchedule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockScheduleRepo) FindBySourceDestinationAfter(ctx context.Context, sourceID, destinationID string, after time.Time) ([]domain.TravelSchedule, error) {
	if m.findAfterFn != nil {
		return m.findAfterFn(ctx, sourceID, destinationID, after)
	}
	return nil, nil
}
func (m *mockScheduleRepo) DeparturesFrom(ctx context.Context, sourceID string, after time.Time, limit int) ([]domain.TravelSchedule, error) {
	if m.departuresFn != nil {
		return m.departuresFn(ctx, sourceID, after, limit)
	}
	return nil, nil
}

// ---- Test helpers ----

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

var (
	bilbao = domain.Station{ID: "st-1", Code: "BIO", Name: "Bilbao Termibus"}
	madrid = domain.Station{ID: "st-2", Code: "MAD", Name: "Madrid Sur"}
)

func knownStations() *mockStationRepo {
	return &mockStationRepo{
		findByCodeFn: func(ctx context.Context, code string) (*domain.Station, error) {
			switch code {
			case "BIO":
				return &bilbao, nil
			case "MAD":
				return &madrid, nil
			}
			return nil, domain.ErrStationNotFound
		},
		listFn: func(ctx context.Context) ([]domain.Station, error) {
			return []domain.Station{bilbao, madrid}, nil
		},
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(stations *mockStationRepo, schedules *mockScheduleRepo) *handler.Dependencies {
	return &handler.Dependencies{
		Schedules: usecases.NewScheduleService(stations, schedules, nil).
			WithClock(func() time.Time { return fixedNow }),
		Stations: usecases.NewStationService(stations, nil),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Schedule search handler tests ----

func TestSearchSchedules_MissingParams(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/schedules/search", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var result domain.ScheduleSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Message != "Invalid input parameters" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestSearchSchedules_EmptyDestination(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/schedules/search?source=BIO&destination=&date=2025-06-20", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), "Destination station code is null or empty") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestSearchSchedules_UnknownStation(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/schedules/search?source=XXX&destination=MAD&date=2025-06-20", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchSchedules_Success(t *testing.T) {
	schedules := &mockScheduleRepo{
		findAfterFn: func(ctx context.Context, sourceID, destinationID string, after time.Time) ([]domain.TravelSchedule, error) {
			return []domain.TravelSchedule{
				{ID: "sch-1", Source: &bilbao, Destination: &madrid,
					EstimatedArrival: time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	app := setupApp(makeDeps(knownStations(), schedules))

	req := httptest.NewRequest("GET", "/v1/schedules/search?source=BIO&destination=MAD&date=2025-06-20", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.ScheduleSearchResult
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Schedules) != 1 {
		t.Errorf("expected 1 schedule, got %d", len(result.Schedules))
	}
	if !strings.Contains(result.Message, "Bilbao Termibus") {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestSearchSchedules_NoResults(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/schedules/search?source=BIO&destination=MAD&date=2025-06-20", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var result domain.ScheduleSearchResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Message != "No schedule is available for the date you searched for" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.Schedules == nil || len(result.Schedules) != 0 {
		t.Errorf("expected empty schedule list, got %v", result.Schedules)
	}
}

func TestSearchSchedules_PastDate(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/schedules/search?source=BIO&destination=MAD&date=2024-01-01", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), "because it is in the past") {
		t.Errorf("unexpected body: %s", body)
	}
}

// ---- Schedule create handler tests ----

func createPayload(source, destination string) *strings.Reader {
	return strings.NewReader(`{
		"source": {"station_code": "` + source + `"},
		"destination": {"station_code": "` + destination + `"},
		"estimated_arrival": "2025-06-20T12:00:00Z"
	}`)
}

func TestCreateSchedule_Success(t *testing.T) {
	schedules := &mockScheduleRepo{
		saveFn: func(ctx context.Context, sch *domain.TravelSchedule) (*domain.TravelSchedule, error) {
			saved := *sch
			saved.ID = "sch-42"
			return &saved, nil
		},
	}
	app := setupApp(makeDeps(knownStations(), schedules))

	req := httptest.NewRequest("POST", "/v1/schedules", createPayload("BIO", "MAD"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result map[string]bool
	json.NewDecoder(resp.Body).Decode(&result)
	if !result["created"] {
		t.Error("expected created=true")
	}
}

func TestCreateSchedule_UnknownStation(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("POST", "/v1/schedules", createPayload("BIO", "XXX"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateSchedule_SameStation(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("POST", "/v1/schedules", createPayload("BIO", "BIO"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateSchedule_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("POST", "/v1/schedules", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Station handler tests ----

func TestListStations_Success(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Station `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
}

func TestGetStation_Success(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations/BIO", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var station domain.Station
	json.NewDecoder(resp.Body).Decode(&station)
	if station.Name != "Bilbao Termibus" {
		t.Errorf("unexpected station: %s", station.Name)
	}
}

func TestGetStation_NotFound(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations/XXX", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchStations_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStationDepartures_Success(t *testing.T) {
	schedules := &mockScheduleRepo{
		departuresFn: func(ctx context.Context, sourceID string, after time.Time, limit int) ([]domain.TravelSchedule, error) {
			return []domain.TravelSchedule{
				{ID: "sch-1", Source: &bilbao, Destination: &madrid,
					EstimatedArrival: fixedNow.Add(2 * time.Hour)},
			}, nil
		},
	}
	app := setupApp(makeDeps(knownStations(), schedules))

	req := httptest.NewRequest("GET", "/v1/stations/BIO/departures", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var departures []domain.TravelSchedule
	json.NewDecoder(resp.Body).Decode(&departures)
	if len(departures) != 1 {
		t.Errorf("expected 1 departure, got %d", len(departures))
	}
}

func TestStationDepartures_UnknownStation(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations/XXX/departures", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Legacy search alias ----

func TestLegacySearch_DeprecationHeaders(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/search?source=BIO&destination=MAD&date=2024-01-01", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header on legacy route")
	}
	if !strings.Contains(resp.Header.Get("Link"), "/v1/schedules/search") {
		t.Errorf("expected successor link, got %q", resp.Header.Get("Link"))
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NoDB(t *testing.T) {
	// DB, NATS, Cache are nil → should report not ready
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

// ---- Link header on pagination ----

func TestListStations_LinkHeader(t *testing.T) {
	stations := knownStations()
	stations.listFn = func(ctx context.Context) ([]domain.Station, error) {
		out := make([]domain.Station, 10)
		for i := range out {
			out[i] = domain.Station{ID: string(rune('a' + i)), Code: string(rune('A' + i))}
		}
		return out, nil
	}
	app := setupApp(makeDeps(stations, &mockScheduleRepo{}))

	req := httptest.NewRequest("GET", "/v1/stations?offset=0&limit=3", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %s", link)
	}
	if !strings.Contains(link, `rel="first"`) {
		t.Errorf("expected first link, got %s", link)
	}
}

// ---- GraphQL ----

func TestGraphQL_Stations(t *testing.T) {
	app := setupApp(makeDeps(knownStations(), &mockScheduleRepo{}))

	body := strings.NewReader(`{"query": "{ stations { code name } }"}`)
	req := httptest.NewRequest("POST", "/graphql", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Stations []domain.Station `json:"stations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data.Stations) != 2 {
		t.Errorf("expected 2 stations, got %d", len(result.Data.Stations))
	}
}
