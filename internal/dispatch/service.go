package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
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

const roundLockScope = "dispatch-round"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type depotSource interface {
	List(ctx context.Context) ([]models.Depot, error)
}

type notifier interface {
	NotifyBatch(ctx context.Context, batch notifications.Batch)
}

// roundLocker serializes rounds across processes and numbers them per day.
type roundLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	LockKey(scope string) string
	RoundSequenceKey(day string) string
}

// Service runs orchestration rounds and exposes dispatch reads.
type Service interface {
	RunRound(ctx context.Context) (*RoundSummary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*DispatchDTO, error)
	GetActive(ctx context.Context) (*DispatchDTO, error)
	List(ctx context.Context, limit int) ([]DispatchDTO, error)
}

type service struct {
	cfg      config.DispatchConfig
	tx       txRunner
	repo     Repository
	routes   routes.Repository
	orders   orders.Repository
	vehicles vehicles.Repository
	depots   depotSource
	gateway  solver.Gateway
	notifier notifier
	locker   roundLocker
	logg     *logger.Logger
}

// NewService wires the orchestration engine.
func NewService(
	cfg config.DispatchConfig,
	tx txRunner,
	repo Repository,
	routesRepo routes.Repository,
	ordersRepo orders.Repository,
	vehiclesRepo vehicles.Repository,
	depots depotSource,
	gateway solver.Gateway,
	notifier notifier,
	locker roundLocker,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if routesRepo == nil {
		return nil, fmt.Errorf("routes repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if vehiclesRepo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if depots == nil {
		return nil, fmt.Errorf("depot source required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("solver gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if locker == nil {
		return nil, fmt.Errorf("round locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cfg:      cfg,
		tx:       tx,
		repo:     repo,
		routes:   routesRepo,
		orders:   ordersRepo,
		vehicles: vehiclesRepo,
		depots:   depots,
		gateway:  gateway,
		notifier: notifier,
		locker:   locker,
		logg:     logg,
	}, nil
}

// RunRound executes one orchestration round: partition the order pool by
// category and tier, solve each sub-problem, reconcile results, commit all
// mutations atomically, then notify. A failed category keeps its orders in the
// pool and never blocks the other categories.
func (s *service) RunRound(ctx context.Context) (*RoundSummary, error) {
	lockKey := s.locker.LockKey(roundLockScope)
	acquired, err := s.locker.SetNX(ctx, lockKey, time.Now().UTC().UnixNano(), s.cfg.RoundLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire round lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a dispatch round is already running")
	}
	defer func() {
		if err := s.locker.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Error(ctx, "failed to release round lock", err)
		}
	}()

	now := time.Now().UTC()
	summary := &RoundSummary{}
	if seq, err := s.locker.IncrWithTTL(ctx, s.locker.RoundSequenceKey(now.Format("2006-01-02")), 48*time.Hour); err == nil {
		summary.Sequence = seq
	}

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find active dispatch")
	}
	summary.Dynamic = active != nil

	pool, err := s.orders.ListRoutable(ctx, s.cfg.MaxOrdersPerRound)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order pool")
	}
	if len(pool) == 0 {
		summary.NoOp = true
		s.logg.Info(ctx, "dispatch round skipped: no routable orders")
		return summary, nil
	}

	fleet, err := s.vehicles.ListDispatchable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fleet")
	}
	depotRows, err := s.depots.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depots")
	}
	depotIndex := make(map[uuid.UUID]models.Depot, len(depotRows))
	for _, depot := range depotRows {
		depotIndex[depot.ID] = depot
	}

	dispatch := active
	if dispatch == nil {
		dispatch = &models.Dispatch{
			ID:        uuid.New(),
			Status:    enums.DispatchStatusInProgress,
			StartedAt: now,
		}
	}

	existing, orderIndex, vehicleIndex, err := s.buildRoundIndexes(ctx, active, pool, fleet)
	if err != nil {
		return nil, err
	}

	acc := newRoundAccumulator()
	rec := newReconciler(dispatch, existing, orderIndex, vehicleIndex, acc)

	ordersByCategory := groupOrdersByCategory(pool)
	vehiclesByCategory := groupVehiclesByCategory(fleet)

	var solveErrs error
	for _, category := range enums.WasteCategories() {
		catOrders := ordersByCategory[category]
		if len(catOrders) == 0 {
			continue
		}
		catVehicles := vehiclesByCategory[category]
		if len(catVehicles) == 0 {
			summary.SkippedCategories = append(summary.SkippedCategories, category.String())
			s.logg.Warn(s.logg.WithCategory(ctx, category.String()), "category skipped: no eligible vehicles")
			continue
		}

		if err := s.solveCategory(ctx, category, catOrders, catVehicles, depotIndex, existing, rec); err != nil {
			summary.FailedCategories = append(summary.FailedCategories, category.String())
			solveErrs = multierr.Append(solveErrs, err)
			s.logg.Error(s.logg.WithCategory(ctx, category.String()), "category aborted", err)
		}
	}

	if acc.empty() {
		summary.NoOp = true
		if solveErrs != nil {
			s.logg.Warn(ctx, "dispatch round produced no routes")
		}
		return summary, nil
	}

	if err := s.commit(ctx, dispatch, active == nil, acc); err != nil {
		return nil, err
	}

	for _, batch := range acc.notices {
		s.notifier.NotifyBatch(ctx, batch)
	}

	summary.DispatchID = dispatch.ID
	summary.RoutesCreated = len(acc.createdRoutes)
	summary.RoutesUpdated = len(acc.updatedRoutes)
	summary.OrdersAssigned = rec.assigned
	summary.OrdersReassigned = rec.reassigned
	s.logg.Info(s.logg.WithDispatchID(ctx, dispatch.ID.String()), "dispatch round committed")
	return summary, nil
}

// solveCategory runs the tier ladder for one category. A tier that fails aborts
// the remaining tiers: jobs the failed tier never attempted must not escalate.
func (s *service) solveCategory(
	ctx context.Context,
	category enums.WasteCategory,
	catOrders []models.Order,
	catVehicles []models.Vehicle,
	depots map[uuid.UUID]models.Depot,
	existing map[uuid.UUID]*models.Route,
	rec *reconciler,
) error {
	remaining := catOrders
	for _, t := range tierTable {
		sub := subProblem{
			Category: category,
			Tier:     t,
			Vehicles: vehiclesOfType(catVehicles, t.VehicleType),
			Orders:   remaining,
		}
		if sub.Empty() {
			continue
		}

		result, err := s.gateway.Solve(ctx, buildRequest(sub, depots, existing))
		if err != nil {
			return err
		}
		if err := rec.apply(result); err != nil {
			return err
		}
		remaining = leftoverOrders(remaining, result.Unassigned)
		if len(remaining) == 0 {
			break
		}
	}
	return nil
}

// buildRoundIndexes loads the live route graph for dynamic rounds and indexes
// every order and vehicle the reconciler may touch.
func (s *service) buildRoundIndexes(ctx context.Context, active *models.Dispatch, pool []models.Order, fleet []models.Vehicle) (map[uuid.UUID]*models.Route, map[uuid.UUID]*models.Order, map[uuid.UUID]*models.Vehicle, error) {
	existing := make(map[uuid.UUID]*models.Route)
	orderIndex := make(map[uuid.UUID]*models.Order, len(pool))
	vehicleIndex := make(map[uuid.UUID]*models.Vehicle, len(fleet))

	for i := range pool {
		orderIndex[pool[i].ID] = &pool[i]
	}
	for i := range fleet {
		vehicleIndex[fleet[i].ID] = &fleet[i]
	}

	if active == nil {
		return existing, orderIndex, vehicleIndex, nil
	}

	liveRoutes, err := s.routes.ListByDispatch(ctx, active.ID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load live routes")
	}
	for i := range liveRoutes {
		route := &liveRoutes[i]
		if route.Status != enums.RouteStatusInProgress {
			continue
		}
		existing[route.VehicleID] = route
		for j := range route.Orders {
			order := &route.Orders[j]
			if order.Status == enums.OrderStatusInProgress {
				orderIndex[order.ID] = order
			}
		}
	}
	return existing, orderIndex, vehicleIndex, nil
}

// commit writes everything the round accumulated as one transaction. Vehicle
// activations land in the same unit so no reader ever observes an active
// vehicle without its route.
func (s *service) commit(ctx context.Context, dispatch *models.Dispatch, fresh bool, acc *roundAccumulator) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		dispatchRepo := s.repo.WithTx(tx)
		routesRepo := s.routes.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)
		vehiclesRepo := s.vehicles.WithTx(tx)

		if fresh {
			if err := dispatchRepo.Create(ctx, dispatch); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "create dispatch")
			}
		}
		for _, route := range acc.createdRoutes {
			// detach stop snapshots so gorm does not upsert them twice
			route.Orders = nil
			if err := routesRepo.Create(ctx, route); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create route")
			}
		}
		for _, route := range acc.updatedRoutes {
			route.Orders = nil
			if err := routesRepo.Save(ctx, route); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update route")
			}
		}
		for _, order := range acc.orders {
			if err := ordersRepo.Update(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
			}
		}
		for vehicleID, status := range acc.vehicleStatus {
			if err := vehiclesRepo.UpdateStatus(ctx, vehicleID, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle status")
			}
		}
		return nil
	})
	if err != nil {
		if perr := pkgerrors.As(err); perr != nil {
			return perr
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit round")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*DispatchDTO, error) {
	dispatch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispatch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispatch")
	}
	return FromModel(dispatch), nil
}

func (s *service) GetActive(ctx context.Context) (*DispatchDTO, error) {
	dispatch, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find active dispatch")
	}
	if dispatch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active dispatch")
	}
	return FromModel(dispatch), nil
}

func (s *service) List(ctx context.Context, limit int) ([]DispatchDTO, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dispatches")
	}
	dtos := make([]DispatchDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}
