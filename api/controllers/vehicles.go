package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducvu/wasteflow-backend/api/responses"
	"github.com/ducvu/wasteflow-backend/api/validators"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type createVehicleRequest struct {
	DepotID      uuid.UUID       `json:"depot_id" validate:"required"`
	DriverID     *uuid.UUID      `json:"driver_id"`
	LicensePlate string          `json:"license_plate" validate:"required,max=32"`
	Capacity     decimal.Decimal `json:"capacity" validate:"required"`
	Type         string          `json:"type" validate:"required"`
	Category     string          `json:"category" validate:"required"`
}

type updateVehicleRequest struct {
	DriverID *uuid.UUID       `json:"driver_id"`
	Capacity *decimal.Decimal `json:"capacity"`
	Status   *string          `json:"status"`
}

// CreateVehicle registers a new collection vehicle at a depot.
func CreateVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVehicleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleType, err := enums.ParseVehicleType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle type"))
			return
		}
		category, err := enums.ParseWasteCategory(req.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		dto, err := svc.Create(r.Context(), vehicles.CreateVehicleDTO{
			DepotID:      req.DepotID,
			DriverID:     req.DriverID,
			LicensePlate: validators.SanitizeString(req.LicensePlate, 32),
			Capacity:     req.Capacity,
			Type:         vehicleType,
			Category:     category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// GetVehicle returns one vehicle by id.
func GetVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ListVehicles returns the whole fleet.
func ListVehicles(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

// UpdateVehicle applies partial changes to a vehicle.
func UpdateVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vehicles.UpdateVehicleInput{
			DriverID: req.DriverID,
			Capacity: req.Capacity,
		}
		if req.Status != nil {
			status, err := enums.ParseVehicleStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle status"))
				return
			}
			input.Status = &status
		}

		dto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
