package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexwaste/nexwaste-backend/api/middleware"
	"github.com/nexwaste/nexwaste-backend/api/responses"
	"github.com/nexwaste/nexwaste-backend/api/validators"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/portal"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	pkgerrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/metrics"
)

type bookPickupRequest struct {
	CustomerName string   `json:"customerName" validate:"omitempty,max=120"`
	WasteTypes   []string `json:"wasteTypes" validate:"required,min=1,dive,max=32"`
	SubType      string   `json:"subType" validate:"omitempty,max=64"`
	Address      string   `json:"address" validate:"omitempty,max=300"`
	Date         string   `json:"date" validate:"required,max=32"`
	TimeSlot     string   `json:"timeSlot" validate:"required,max=40"`
}

// PickupList returns the customer's own bookings, newest first.
func PickupList(svc *pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListOwned(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// PickupCreate books a pickup. An omitted address falls back to the stored
// profile address, mirroring the booking form behavior.
func PickupCreate(svc *pickups.Service, profileSvc *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookPickupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		uid := middleware.UserIDFromContext(ctx)

		address := validators.SanitizeString(req.Address, 300)
		customerName := validators.SanitizeString(req.CustomerName, 120)
		if address == "" || customerName == "" {
			profile := profileSvc.LoadUser(ctx, identity.Identity{
				UID:         uid,
				Email:       middleware.EmailFromContext(ctx),
				DisplayName: middleware.DisplayNameFromContext(ctx),
			})
			if address == "" {
				address = profile.FullAddress
			}
			if customerName == "" {
				customerName = profile.Name
			}
		}

		wasteTypes := make([]enums.WasteType, 0, len(req.WasteTypes))
		for _, raw := range req.WasteTypes {
			wasteTypes = append(wasteTypes, enums.WasteType(raw))
		}

		rec, err := svc.Create(ctx, pickups.CreateInput{
			OwnerID:      uid,
			CustomerName: customerName,
			WasteTypes:   wasteTypes,
			SubType:      req.SubType,
			Address:      address,
			Date:         req.Date,
			TimeSlot:     enums.TimeSlot(req.TimeSlot),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rec)
	}
}

// PickupDelete cancels a pending booking owned by the caller.
func PickupDelete(svc *pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID := chi.URLParam(r, "pickupId")
		if pickupID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "pickup id is required"))
			return
		}
		if err := svc.Delete(r.Context(), pickupID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// PickupStream holds an SSE connection pushing the caller's bookings as full
// snapshots on every change.
func PickupStream(profileSvc *profiles.Service, svc *pickups.Service, logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ident := identity.Identity{
			UID:         middleware.UserIDFromContext(ctx),
			Email:       middleware.EmailFromContext(ctx),
			DisplayName: middleware.DisplayNameFromContext(ctx),
			Role:        middleware.RoleFromContext(ctx),
		}

		sess, err := portal.OpenCustomerSession(ctx, ident, profileSvc, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer sess.Close()

		snapshotStream(w, r, logg, httpMetrics, sess.Snapshots())
	}
}
