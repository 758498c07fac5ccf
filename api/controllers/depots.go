package controllers

import (
	"net/http"

	"github.com/ducvu/wasteflow-backend/api/responses"
	"github.com/ducvu/wasteflow-backend/api/validators"
	"github.com/ducvu/wasteflow-backend/internal/depots"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type createDepotRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address   string  `json:"address" validate:"omitempty,max=500"`
	Category  string  `json:"category" validate:"required"`
}

type updateDepotRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address   *string  `json:"address" validate:"omitempty,max=500"`
}

// CreateDepot registers a new depot.
func CreateDepot(svc depots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDepotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := enums.ParseWasteCategory(req.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		dto, err := svc.Create(r.Context(), depots.CreateDepotDTO{
			Name:      validators.SanitizeString(req.Name, 200),
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Address:   validators.SanitizeString(req.Address, 500),
			Category:  category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// GetDepot returns one depot by id.
func GetDepot(svc depots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "depotId")
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

// ListDepots returns all depots.
func ListDepots(svc depots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

// UpdateDepot applies partial changes to a depot.
func UpdateDepot(svc depots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "depotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateDepotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, depots.UpdateDepotInput{
			Name:      req.Name,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Address:   req.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteDepot removes a depot.
func DeleteDepot(svc depots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "depotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
