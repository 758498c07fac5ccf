package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/orders"
	"github.com/ducvu/wasteflow-backend/internal/routes"
	"github.com/ducvu/wasteflow-backend/internal/solver"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/config"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeDispatchRepo struct {
	active  *models.Dispatch
	created []*models.Dispatch
}

func (f *fakeDispatchRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeDispatchRepo) Create(ctx context.Context, dispatch *models.Dispatch) error {
	f.created = append(f.created, dispatch)
	f.active = dispatch
	return nil
}

func (f *fakeDispatchRepo) Save(ctx context.Context, dispatch *models.Dispatch) error { return nil }

func (f *fakeDispatchRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	if f.active != nil && f.active.ID == id {
		return f.active, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) FindActive(ctx context.Context) (*models.Dispatch, error) {
	return f.active, nil
}

func (f *fakeDispatchRepo) List(ctx context.Context, limit int) ([]models.Dispatch, error) {
	return nil, nil
}

type fakeRoutesRepo struct {
	live    []models.Route
	created []*models.Route
	saved   []*models.Route
}

func (f *fakeRoutesRepo) WithTx(tx *gorm.DB) routes.Repository { return f }

func (f *fakeRoutesRepo) Create(ctx context.Context, route *models.Route) error {
	f.created = append(f.created, route)
	return nil
}

func (f *fakeRoutesRepo) Save(ctx context.Context, route *models.Route) error {
	f.saved = append(f.saved, route)
	return nil
}

func (f *fakeRoutesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoutesRepo) FindByDispatchAndVehicle(ctx context.Context, dispatchID, vehicleID uuid.UUID) (*models.Route, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoutesRepo) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Route, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoutesRepo) ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]models.Route, error) {
	out := make([]models.Route, len(f.live))
	copy(out, f.live)
	return out, nil
}

func (f *fakeRoutesRepo) CountOpenByDispatch(ctx context.Context, dispatchID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRoutesRepo) CompleteDispatch(ctx context.Context, dispatchID uuid.UUID, at time.Time) error {
	return nil
}

type fakeOrdersRepo struct {
	pool    []models.Order
	updated map[uuid.UUID]models.Order
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{updated: map[uuid.UUID]models.Order{}}
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (f *fakeOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrdersRepo) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrdersRepo) ListRoutable(ctx context.Context, limit int) ([]models.Order, error) {
	out := make([]models.Order, len(f.pool))
	copy(out, f.pool)
	return out, nil
}

func (f *fakeOrdersRepo) ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrdersRepo) CountOpenByRoute(ctx context.Context, routeID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeOrdersRepo) Update(ctx context.Context, order *models.Order) error {
	f.updated[order.ID] = *order
	return nil
}

type fakeVehiclesRepo struct {
	fleet    []models.Vehicle
	statuses map[uuid.UUID]enums.VehicleStatus
}

func newFakeVehiclesRepo() *fakeVehiclesRepo {
	return &fakeVehiclesRepo{statuses: map[uuid.UUID]enums.VehicleStatus{}}
}

func (f *fakeVehiclesRepo) WithTx(tx *gorm.DB) vehicles.Repository { return f }

func (f *fakeVehiclesRepo) Create(ctx context.Context, vehicle *models.Vehicle) error { return nil }

func (f *fakeVehiclesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVehiclesRepo) List(ctx context.Context) ([]models.Vehicle, error) { return nil, nil }

func (f *fakeVehiclesRepo) ListDispatchable(ctx context.Context) ([]models.Vehicle, error) {
	out := make([]models.Vehicle, len(f.fleet))
	copy(out, f.fleet)
	return out, nil
}

func (f *fakeVehiclesRepo) Update(ctx context.Context, vehicle *models.Vehicle) error { return nil }

func (f *fakeVehiclesRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeVehiclesRepo) ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) (bool, error) {
	return false, nil
}

func (f *fakeVehiclesRepo) CountOpenRoutes(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeDepots struct {
	rows []models.Depot
}

func (f *fakeDepots) List(ctx context.Context) ([]models.Depot, error) { return f.rows, nil }

type fakeGateway struct {
	requests []solver.Request
	handler  func(req solver.Request) (*solver.Result, error)
}

func (f *fakeGateway) Solve(ctx context.Context, req solver.Request) (*solver.Result, error) {
	f.requests = append(f.requests, req)
	return f.handler(req)
}

type fakeNotifier struct {
	batches []notifications.Batch
}

func (f *fakeNotifier) NotifyBatch(ctx context.Context, batch notifications.Batch) {
	f.batches = append(f.batches, batch)
}

type fakeLocker struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLocker) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLocker) Del(ctx context.Context, keys ...string) error {
	f.held = false
	f.releases++
	return nil
}

func (f *fakeLocker) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1, nil
}

func (f *fakeLocker) LockKey(scope string) string { return "wf:lock:" + scope }

func (f *fakeLocker) RoundSequenceKey(day string) string { return "wf:counter:rounds:" + day }

type roundFixture struct {
	svc      Service
	repo     *fakeDispatchRepo
	routes   *fakeRoutesRepo
	orders   *fakeOrdersRepo
	vehicles *fakeVehiclesRepo
	depots   *fakeDepots
	gateway  *fakeGateway
	notifier *fakeNotifier
	locker   *fakeLocker
}

func newRoundFixture(t *testing.T) *roundFixture {
	t.Helper()

	f := &roundFixture{
		repo:     &fakeDispatchRepo{},
		routes:   &fakeRoutesRepo{},
		orders:   newFakeOrdersRepo(),
		vehicles: newFakeVehiclesRepo(),
		depots:   &fakeDepots{},
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		locker:   &fakeLocker{},
	}
	cfg := config.DispatchConfig{
		RoundInterval:     2 * time.Minute,
		RoundLockTTL:      5 * time.Minute,
		MaxOrdersPerRound: 500,
	}
	svc, err := NewService(cfg, fakeTx{}, f.repo, f.routes, f.orders, f.vehicles, f.depots, f.gateway, f.notifier, f.locker, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func poolOrder(category enums.WasteCategory, created time.Time) models.Order {
	return models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Latitude:   10.77,
		Longitude:  106.7,
		Weight:     decimal.NewFromInt(20),
		Category:   category,
		Status:     enums.OrderStatusPending,
		CreatedAt:  created,
	}
}

func fleetVehicle(category enums.WasteCategory, vehicleType enums.VehicleType, depotID uuid.UUID) models.Vehicle {
	return models.Vehicle{
		ID:           uuid.New(),
		DepotID:      depotID,
		LicensePlate: fmt.Sprintf("51C-%s", uuid.NewString()[:6]),
		Capacity:     decimal.NewFromInt(60),
		Type:         vehicleType,
		Category:     category,
		Status:       enums.VehicleStatusIdle,
	}
}

// assignFirst builds a solver result giving the first n jobs to the vehicle
// and reporting the rest unassigned.
func assignFirst(req solver.Request, n int) *solver.Result {
	if n > len(req.Jobs) {
		n = len(req.Jobs)
	}
	return &solver.Result{
		Routes: []solver.Route{{
			VehicleID: req.Vehicles[0].ID,
			Steps:     req.Jobs[:n],
			Distance:  1200,
			Duration:  900,
		}},
		Unassigned: req.Jobs[n:],
	}
}

func TestRunRound_TwoTierFallback(t *testing.T) {
	f := newRoundFixture(t)
	depot := models.Depot{ID: uuid.New(), Latitude: 10.8, Longitude: 106.6, Category: enums.WasteCategoryGeneral}
	f.depots.rows = []models.Depot{depot}

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.orders.pool = append(f.orders.pool, poolOrder(enums.WasteCategoryGeneral, base.Add(time.Duration(i)*time.Minute)))
	}
	light := fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeThreeWheeler, depot.ID)
	heavy := fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeCompactorTruck, depot.ID)
	f.vehicles.fleet = []models.Vehicle{light, heavy}

	f.gateway.handler = func(req solver.Request) (*solver.Result, error) {
		switch req.Profile {
		case solver.ProfileDrivingCar:
			return assignFirst(req, 3), nil
		case solver.ProfileDrivingHGV:
			return assignFirst(req, len(req.Jobs)), nil
		}
		return nil, fmt.Errorf("unexpected profile %q", req.Profile)
	}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.Dynamic)
	assert.False(t, summary.NoOp)
	assert.Equal(t, 2, summary.RoutesCreated)
	assert.Equal(t, 5, summary.OrdersAssigned)
	require.Len(t, f.repo.created, 1)
	assert.Equal(t, summary.DispatchID, f.repo.created[0].ID)

	// tier B only saw the two jobs tier A left unassigned
	require.Len(t, f.gateway.requests, 2)
	tierA, tierB := f.gateway.requests[0], f.gateway.requests[1]
	assert.Equal(t, solver.ProfileDrivingCar, tierA.Profile)
	assert.Len(t, tierA.Jobs, 5)
	assert.Equal(t, solver.ProfileDrivingHGV, tierB.Profile)
	require.Len(t, tierB.Jobs, 2)
	assert.Equal(t, f.orders.pool[3].ID.String(), tierB.Jobs[0].ID)
	assert.Equal(t, f.orders.pool[4].ID.String(), tierB.Jobs[1].ID)

	// oldest order leads the tier A job list
	assert.Equal(t, f.orders.pool[0].ID.String(), tierA.Jobs[0].ID)

	assert.Equal(t, enums.VehicleStatusActive, f.vehicles.statuses[light.ID])
	assert.Equal(t, enums.VehicleStatusActive, f.vehicles.statuses[heavy.ID])

	for _, order := range f.orders.updated {
		assert.Equal(t, enums.OrderStatusInProgress, order.Status)
		require.NotNil(t, order.RouteID)
		require.NotNil(t, order.SequenceIndex)
	}
	assert.Len(t, f.orders.updated, 5)

	// customers notified only after commit
	assert.Len(t, f.notifier.batches, 5)
	assert.Equal(t, 1, f.locker.releases)
}

func TestRunRound_DynamicExtendKeepsRouteIdentity(t *testing.T) {
	f := newRoundFixture(t)
	depot := models.Depot{ID: uuid.New(), Latitude: 10.8, Longitude: 106.6}
	f.depots.rows = []models.Depot{depot}

	active := &models.Dispatch{ID: uuid.New(), Status: enums.DispatchStatusInProgress, StartedAt: time.Now().UTC()}
	f.repo.active = active

	vehicle := fleetVehicle(enums.WasteCategoryOrganic, enums.VehicleTypeThreeWheeler, depot.ID)
	vehicle.Status = enums.VehicleStatusActive
	vehicle.CurrentLatitude = 10.75
	vehicle.CurrentLongitude = 106.71
	f.vehicles.fleet = []models.Vehicle{vehicle}

	liveRoute := models.Route{
		ID:         uuid.New(),
		DispatchID: active.ID,
		VehicleID:  vehicle.ID,
		Status:     enums.RouteStatusInProgress,
	}
	seq0, seq1 := 0, 1
	committed := []models.Order{
		{ID: uuid.New(), CustomerID: uuid.New(), Category: enums.WasteCategoryOrganic, Status: enums.OrderStatusInProgress, RouteID: &liveRoute.ID, SequenceIndex: &seq0, Weight: decimal.NewFromInt(5)},
		{ID: uuid.New(), CustomerID: uuid.New(), Category: enums.WasteCategoryOrganic, Status: enums.OrderStatusInProgress, RouteID: &liveRoute.ID, SequenceIndex: &seq1, Weight: decimal.NewFromInt(5)},
	}
	liveRoute.Orders = committed
	f.routes.live = []models.Route{liveRoute}

	newOrder := poolOrder(enums.WasteCategoryOrganic, time.Now().UTC())
	f.orders.pool = []models.Order{newOrder}

	f.gateway.handler = func(req solver.Request) (*solver.Result, error) {
		// full plan: both committed stops plus the new one
		return assignFirst(req, len(req.Jobs)), nil
	}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Dynamic)
	assert.Equal(t, 0, summary.RoutesCreated)
	assert.Equal(t, 1, summary.RoutesUpdated)
	assert.Equal(t, 1, summary.OrdersAssigned)
	assert.Empty(t, f.routes.created)
	require.Len(t, f.routes.saved, 1)
	assert.Equal(t, liveRoute.ID, f.routes.saved[0].ID)

	// request carried the live route as a fixed prefix
	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	require.Len(t, req.Routes, 1)
	assert.Equal(t, vehicle.ID.String(), req.Routes[0].VehicleID)
	assert.Len(t, req.Routes[0].Steps, 2)
	assert.Len(t, req.Jobs, 3)
	// mid-dispatch vehicles start from their live position, not the depot
	assert.Equal(t, [2]float64{10.75, 106.71}, req.Vehicles[0].Location)

	updated, ok := f.orders.updated[newOrder.ID]
	require.True(t, ok)
	assert.Equal(t, enums.OrderStatusInProgress, updated.Status)
	require.NotNil(t, updated.RouteID)
	assert.Equal(t, liveRoute.ID, *updated.RouteID)
}

func TestRunRound_DroppedStopIsReassigned(t *testing.T) {
	f := newRoundFixture(t)
	depot := models.Depot{ID: uuid.New()}
	f.depots.rows = []models.Depot{depot}

	active := &models.Dispatch{ID: uuid.New(), Status: enums.DispatchStatusInProgress, StartedAt: time.Now().UTC()}
	f.repo.active = active

	vehicle := fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeThreeWheeler, depot.ID)
	vehicle.Status = enums.VehicleStatusActive
	f.vehicles.fleet = []models.Vehicle{vehicle}

	liveRoute := models.Route{ID: uuid.New(), DispatchID: active.ID, VehicleID: vehicle.ID, Status: enums.RouteStatusInProgress}
	seq0 := 0
	dropped := models.Order{ID: uuid.New(), CustomerID: uuid.New(), Category: enums.WasteCategoryGeneral, Status: enums.OrderStatusInProgress, RouteID: &liveRoute.ID, SequenceIndex: &seq0, Weight: decimal.NewFromInt(5)}
	liveRoute.Orders = []models.Order{dropped}
	f.routes.live = []models.Route{liveRoute}

	newOrder := poolOrder(enums.WasteCategoryGeneral, time.Now().UTC())
	f.orders.pool = []models.Order{newOrder}

	f.gateway.handler = func(req solver.Request) (*solver.Result, error) {
		// rebuilt plan keeps only the new order, dropping the committed stop
		var fresh []solver.Job
		for _, job := range req.Jobs {
			if job.ID == newOrder.ID.String() {
				fresh = append(fresh, job)
			}
		}
		return &solver.Result{
			Routes: []solver.Route{{VehicleID: vehicle.ID.String(), Steps: fresh}},
		}, nil
	}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OrdersReassigned)

	pulled, ok := f.orders.updated[dropped.ID]
	require.True(t, ok)
	assert.Equal(t, enums.OrderStatusReassigned, pulled.Status)
	assert.Nil(t, pulled.RouteID)
	assert.Nil(t, pulled.SequenceIndex)
}

func TestRunRound_CategoryFailureIsIsolated(t *testing.T) {
	f := newRoundFixture(t)
	depot := models.Depot{ID: uuid.New()}
	f.depots.rows = []models.Depot{depot}

	f.orders.pool = []models.Order{
		poolOrder(enums.WasteCategoryGeneral, time.Now().UTC()),
		poolOrder(enums.WasteCategoryOrganic, time.Now().UTC()),
	}
	f.vehicles.fleet = []models.Vehicle{
		fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeThreeWheeler, depot.ID),
		fleetVehicle(enums.WasteCategoryOrganic, enums.VehicleTypeThreeWheeler, depot.ID),
	}

	f.gateway.handler = func(req solver.Request) (*solver.Result, error) {
		if req.Category == enums.WasteCategoryGeneral.String() {
			return nil, pkgerrors.New(pkgerrors.CodeSolverFailure, "route solver rejected request")
		}
		return assignFirst(req, len(req.Jobs)), nil
	}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"general"}, summary.FailedCategories)
	assert.Equal(t, 1, summary.RoutesCreated)
	assert.Equal(t, 1, summary.OrdersAssigned)

	// failed category's order never left the pool
	_, touched := f.orders.updated[f.orders.pool[0].ID]
	assert.False(t, touched)
}

func TestRunRound_TierAFailureAbortsCategory(t *testing.T) {
	f := newRoundFixture(t)
	depot := models.Depot{ID: uuid.New()}
	f.depots.rows = []models.Depot{depot}

	f.orders.pool = []models.Order{poolOrder(enums.WasteCategoryGeneral, time.Now().UTC())}
	f.vehicles.fleet = []models.Vehicle{
		fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeThreeWheeler, depot.ID),
		fleetVehicle(enums.WasteCategoryGeneral, enums.VehicleTypeCompactorTruck, depot.ID),
	}

	f.gateway.handler = func(req solver.Request) (*solver.Result, error) {
		return nil, pkgerrors.New(pkgerrors.CodeSolverFailure, "timeout")
	}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.NoOp)
	assert.Equal(t, []string{"general"}, summary.FailedCategories)
	// heavy tier never ran for jobs the light tier never attempted
	assert.Len(t, f.gateway.requests, 1)
	assert.Empty(t, f.repo.created)
}

func TestRunRound_EmptyPoolIsNoOp(t *testing.T) {
	f := newRoundFixture(t)

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.NoOp)
	assert.Empty(t, f.gateway.requests)
	assert.Empty(t, f.repo.created)
	assert.Equal(t, 1, f.locker.releases)
}

func TestRunRound_SkipsCategoryWithoutVehicles(t *testing.T) {
	f := newRoundFixture(t)
	f.orders.pool = []models.Order{poolOrder(enums.WasteCategoryRecyclable, time.Now().UTC())}

	summary, err := f.svc.RunRound(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.NoOp)
	assert.Equal(t, []string{"recyclable"}, summary.SkippedCategories)
	assert.Empty(t, f.gateway.requests)
}

func TestRunRound_ConcurrentRoundRejected(t *testing.T) {
	f := newRoundFixture(t)
	f.locker.held = true

	_, err := f.svc.RunRound(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Equal(t, 0, f.locker.releases)
}
