package routes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/orders"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	NotifyBatch(ctx context.Context, batch notifications.Batch)
}

// Service exposes route read and completion operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RouteDTO, error)
	GetActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*RouteDTO, error)
	ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]RouteDTO, error)
	Complete(ctx context.Context, id uuid.UUID) (*RouteDTO, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	orders   orders.Repository
	vehicles vehicles.Repository
	notifier notifier
	logg     *logger.Logger
}

// NewService wires route dependencies.
func NewService(tx txRunner, repo Repository, ordersRepo orders.Repository, vehiclesRepo vehicles.Repository, notifier notifier, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("route repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if vehiclesRepo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		orders:   ordersRepo,
		vehicles: vehiclesRepo,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*RouteDTO, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route")
	}
	return FromModel(route), nil
}

// GetActiveByVehicle returns the route the vehicle is currently driving.
func (s *service) GetActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*RouteDTO, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	route, err := s.repo.FindActiveByVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle has no active route")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active route")
	}
	return FromModel(route), nil
}

func (s *service) ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]RouteDTO, error) {
	if dispatchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispatch id required")
	}
	rows, err := s.repo.ListByDispatch(ctx, dispatchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list routes")
	}
	dtos := make([]RouteDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// Complete closes a route once every stop has been settled. Completion never
// infers order state: the route stays open while any stop is neither completed
// nor cancelled. Closing the last open route of a dispatch closes the dispatch.
func (s *service) Complete(ctx context.Context, id uuid.UUID) (*RouteDTO, error) {
	var (
		completed    *models.Route
		driverID     *uuid.UUID
		dispatchDone bool
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)
		vehiclesRepo := s.vehicles.WithTx(tx)

		route, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route")
		}
		if route.Status == enums.RouteStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "route already completed")
		}

		open, err := ordersRepo.CountOpenByRoute(ctx, route.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open stops")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "route still has open stops").
				WithDetails(map[string]any{"open_orders": open})
		}

		now := time.Now().UTC()
		route.Status = enums.RouteStatusCompleted
		route.CompletedAt = &now
		stops := route.Orders
		route.Orders = nil
		if err := repo.Save(ctx, route); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save route")
		}
		route.Orders = stops

		if err := vehiclesRepo.UpdateStatus(ctx, route.VehicleID, enums.VehicleStatusIdle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release vehicle")
		}
		if vehicle, err := vehiclesRepo.FindByID(ctx, route.VehicleID); err == nil {
			driverID = vehicle.DriverID
		}

		remaining, err := repo.CountOpenByDispatch(ctx, route.DispatchID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open routes")
		}
		if remaining == 0 {
			if err := repo.CompleteDispatch(ctx, route.DispatchID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete dispatch")
			}
			dispatchDone = true
		}

		completed = route
		return nil
	})
	if err != nil {
		return nil, err
	}

	if driverID != nil {
		s.notifier.NotifyBatch(ctx, notifications.Batch{
			Type:         enums.NotificationTypeRoute,
			TargetID:     completed.ID,
			Message:      "route completed",
			RecipientIDs: []uuid.UUID{*driverID},
		})
	}
	if dispatchDone {
		s.logg.Info(s.logg.WithDispatchID(ctx, completed.DispatchID.String()), "dispatch completed")
	}

	return FromModel(completed), nil
}
