package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/api/middleware"
	"github.com/ducvu/wasteflow-backend/internal/depots"
	"github.com/ducvu/wasteflow-backend/internal/dispatch"
	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/orders"
	routesvc "github.com/ducvu/wasteflow-backend/internal/routes"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/config"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateOrderDTO) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New(), CustomerID: input.CustomerID, Status: enums.OrderStatusPending}, nil
}

func (stubOrdersService) GetByID(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: id, Status: enums.OrderStatusPending}, nil
}

func (stubOrdersService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) Cancel(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) Complete(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

type stubVehiclesService struct{}

func (stubVehiclesService) Create(ctx context.Context, input vehicles.CreateVehicleDTO) (*vehicles.VehicleDTO, error) {
	return &vehicles.VehicleDTO{ID: uuid.New()}, nil
}

func (stubVehiclesService) GetByID(ctx context.Context, id uuid.UUID) (*vehicles.VehicleDTO, error) {
	return &vehicles.VehicleDTO{ID: id}, nil
}

func (stubVehiclesService) List(ctx context.Context) ([]vehicles.VehicleDTO, error) {
	return nil, nil
}

func (stubVehiclesService) Update(ctx context.Context, id uuid.UUID, input vehicles.UpdateVehicleInput) (*vehicles.VehicleDTO, error) {
	return &vehicles.VehicleDTO{ID: id}, nil
}

func (stubVehiclesService) ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) error {
	return nil
}

type stubDepotsService struct{}

func (stubDepotsService) Create(ctx context.Context, input depots.CreateDepotDTO) (*depots.DepotDTO, error) {
	return &depots.DepotDTO{ID: uuid.New()}, nil
}

func (stubDepotsService) GetByID(ctx context.Context, id uuid.UUID) (*depots.DepotDTO, error) {
	return &depots.DepotDTO{ID: id}, nil
}

func (stubDepotsService) List(ctx context.Context) ([]depots.DepotDTO, error) { return nil, nil }

func (stubDepotsService) Update(ctx context.Context, id uuid.UUID, input depots.UpdateDepotInput) (*depots.DepotDTO, error) {
	return &depots.DepotDTO{ID: id}, nil
}

func (stubDepotsService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubDispatchService struct{}

func (stubDispatchService) RunRound(ctx context.Context) (*dispatch.RoundSummary, error) {
	return &dispatch.RoundSummary{NoOp: true}, nil
}

func (stubDispatchService) GetByID(ctx context.Context, id uuid.UUID) (*dispatch.DispatchDTO, error) {
	return &dispatch.DispatchDTO{ID: id}, nil
}

func (stubDispatchService) GetActive(ctx context.Context) (*dispatch.DispatchDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active dispatch")
}

func (stubDispatchService) List(ctx context.Context, limit int) ([]dispatch.DispatchDTO, error) {
	return nil, nil
}

type stubRoutesService struct{}

func (stubRoutesService) GetByID(ctx context.Context, id uuid.UUID) (*routesvc.RouteDTO, error) {
	return &routesvc.RouteDTO{ID: id}, nil
}

func (stubRoutesService) GetActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*routesvc.RouteDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle has no active route")
}

func (stubRoutesService) ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]routesvc.RouteDTO, error) {
	return nil, nil
}

func (stubRoutesService) Complete(ctx context.Context, id uuid.UUID) (*routesvc.RouteDTO, error) {
	return &routesvc.RouteDTO{ID: id, Status: enums.RouteStatusCompleted}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) NotifyBatch(ctx context.Context, batch notifications.Batch) {}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubOrdersService{},
		stubVehiclesService{},
		stubDepotsService{},
		stubDispatchService{},
		stubRoutesService{},
		stubNotificationsService{},
	)
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if got := w.Header().Get("X-WasteFlow-Env"); got != "test" {
		t.Fatalf("expected env header 'test' but got %q", got)
	}
}

func TestRouterCreateOrderRequiresUserHeader(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"latitude":10.7,"longitude":106.6,"weight":"3.5","category":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user header but got %d", w.Code)
	}
}

func TestRouterCreateOrderWithUserHeader(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"latitude":10.7,"longitude":106.6,"weight":"3.5","category":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, uuid.NewString())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouterRejectsMalformedPathID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id but got %d", w.Code)
	}
}

func TestRouterActiveDispatchNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatches/active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 but got %d", w.Code)
	}
}

func TestRouterTriggerDispatchRound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatches/rounds", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouterNotificationsRequireUser(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user header but got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	req.Header.Set(middleware.UserIDHeader, uuid.NewString())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with user header but got %d", w.Code)
	}
}
