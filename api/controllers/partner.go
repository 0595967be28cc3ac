package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nexwaste/nexwaste-backend/api/middleware"
	"github.com/nexwaste/nexwaste-backend/api/responses"
	"github.com/nexwaste/nexwaste-backend/api/validators"
	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/portal"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/internal/views"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	pkgerrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/metrics"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

// filtersFromQuery maps the fleet/status/subType query parameters onto the
// view filter pipeline.
func filtersFromQuery(r *http.Request) views.Filters {
	q := r.URL.Query()
	return views.Filters{
		Fleet:   enums.WasteType(strings.TrimSpace(q.Get("fleet"))),
		Status:  enums.PickupStatus(strings.TrimSpace(q.Get("status"))),
		SubType: strings.TrimSpace(q.Get("subType")),
	}
}

func partnerPortfolio(r *http.Request, profileSvc *profiles.Service) ([]enums.WasteType, error) {
	agency, err := profileSvc.LoadAgency(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, nil
	}
	return agency.Portfolio, nil
}

// PartnerTasks lists the queue visible to the agency, run through the
// portfolio and query filters.
func PartnerTasks(svc *pickups.Service, profileSvc *profiles.Service, cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		f := filtersFromQuery(r)
		portfolio, err := partnerPortfolio(r, profileSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		f.Portfolio = portfolio

		responses.WriteSuccess(w, views.Apply(cat, records, f))
	}
}

// PartnerUpdateStatus advances one pickup along the status chain.
func PartnerUpdateStatus(svc *pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID := chi.URLParam(r, "pickupId")
		if pickupID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "pickup id is required"))
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.AdvanceStatus(r.Context(), pickupID,
			enums.PickupStatus(req.Status), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// PartnerStats returns the derived queue counters for the dashboard.
func PartnerStats(svc *pickups.Service, profileSvc *profiles.Service, cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		portfolio, err := partnerPortfolio(r, profileSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scoped := views.Apply(cat, records, views.Filters{Portfolio: portfolio})
		active := views.ActiveByVertical(cat, scoped)
		verticals := make(map[string]int, len(active))
		for t, n := range active {
			verticals[string(t)] = n
		}

		responses.WriteSuccess(w, map[string]any{
			"queue":            views.Stats(scoped),
			"activeByVertical": verticals,
		})
	}
}

// PartnerStream holds an SSE connection pushing the whole queue as full
// snapshots on every change.
func PartnerStream(cat *catalog.Catalog, profileSvc *profiles.Service, svc *pickups.Service, logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ident := identity.Identity{
			UID:         middleware.UserIDFromContext(ctx),
			Email:       middleware.EmailFromContext(ctx),
			DisplayName: middleware.DisplayNameFromContext(ctx),
			Role:        middleware.RoleFromContext(ctx),
		}

		sess, err := portal.OpenPartnerSession(ctx, ident, cat, profileSvc, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer sess.Close()

		snapshotStream(w, r, logg, httpMetrics, sess.Snapshots())
	}
}

// PartnerCategories returns the categories visible to the agency.
func PartnerCategories(cat *catalog.Catalog, profileSvc *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio, err := partnerPortfolio(r, profileSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visible := cat.Categories()
		if len(portfolio) > 0 {
			visible = visible[:0:0]
			for _, t := range portfolio {
				if c, ok := cat.Get(t); ok {
					visible = append(visible, c)
				}
			}
		}

		payload := make([]categoryPayload, 0, len(visible))
		for _, c := range visible {
			entry := categoryPayload{Type: string(c.Type), Label: c.Label}
			for _, sub := range c.SubCategories {
				entry.SubCategories = append(entry.SubCategories, subCategoryPayload{ID: sub.ID, Label: sub.Label})
			}
			payload = append(payload, entry)
		}
		responses.WriteSuccess(w, payload)
	}
}
