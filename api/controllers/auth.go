package controllers

import (
	"context"
	"net/http"

	"github.com/nexwaste/nexwaste-backend/api/middleware"
	"github.com/nexwaste/nexwaste-backend/api/responses"
	"github.com/nexwaste/nexwaste-backend/api/validators"
	"github.com/nexwaste/nexwaste-backend/internal/geocode"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	pkgerrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Area     string `json:"area" validate:"omitempty,max=120"`
	FlatNo   string `json:"flatNo" validate:"omitempty,max=40"`
	Street   string `json:"street" validate:"omitempty,max=120"`
}

type registerAgencyRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	Name      string   `json:"name" validate:"required,max=120"`
	City      string   `json:"city" validate:"omitempty,max=120"`
	HubLat    float64  `json:"hubLat" validate:"omitempty,latitude"`
	HubLng    float64  `json:"hubLng" validate:"omitempty,longitude"`
	Portfolio []string `json:"portfolio" validate:"omitempty,dive,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token    string            `json:"token"`
	Identity identity.Identity `json:"identity"`
}

// writeAuthError maps provider failures onto the error envelope, attaching
// the portal-facing friendly message.
func writeAuthError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	code := identity.CodeOf(err)
	friendly := identity.FriendlyMessage(code)

	var appCode pkgerrors.Code
	switch code {
	case identity.AuthErrEmailInUse, identity.AuthErrInvalidEmail, identity.AuthErrWeakPassword:
		appCode = pkgerrors.CodeValidation
	case identity.AuthErrUserNotFound, identity.AuthErrWrongPassword, identity.AuthErrInvalidCredential:
		appCode = pkgerrors.CodeUnauthorized
	case identity.AuthErrTooManyRequests:
		appCode = pkgerrors.CodeRateLimit
	default:
		appCode = pkgerrors.CodeDependency
	}

	typed := pkgerrors.Wrap(appCode, err, friendly)
	if appCode == pkgerrors.CodeValidation {
		typed = typed.WithDetails(map[string]string{"reason": string(code)})
	}
	responses.WriteError(ctx, logg, w, typed)
}

// AuthRegister creates a customer account and opens its session.
func AuthRegister(provider identity.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := provider.Register(r.Context(), identity.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Role:     enums.ActorRoleCustomer,
			Details: identity.CustomerDetails{
				Name:   validators.SanitizeString(req.Name, 120),
				Phone:  validators.SanitizeString(req.Phone, 20),
				Area:   validators.SanitizeString(req.Area, 120),
				FlatNo: validators.SanitizeString(req.FlatNo, 40),
				Street: validators.SanitizeString(req.Street, 120),
			},
		})
		if err != nil {
			writeAuthError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			Token:    sess.Token,
			Identity: sess.Identity,
		})
	}
}

// AuthRegisterAgency creates a partner account, reverse-geocodes the hub pin
// for a display label, and stores the agency profile. Geocoding is best
// effort: a failed lookup leaves the label empty rather than failing the
// registration.
func AuthRegisterAgency(provider identity.Provider, profileSvc *profiles.Service, geocoder *geocode.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerAgencyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Portfolio categories validate before the account exists, so a bad
		// request can be retried with the same email.
		portfolio := make([]enums.WasteType, 0, len(req.Portfolio))
		for _, raw := range req.Portfolio {
			t, perr := enums.ParseWasteType(raw)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown portfolio category").WithDetails(map[string]string{"category": raw}))
				return
			}
			portfolio = append(portfolio, t)
		}

		sess, err := provider.Register(r.Context(), identity.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Role:     enums.ActorRolePartner,
			Details:  identity.CustomerDetails{Name: validators.SanitizeString(req.Name, 120)},
		})
		if err != nil {
			writeAuthError(r.Context(), logg, w, err)
			return
		}

		hubLabel := ""
		if req.HubLat != 0 || req.HubLng != 0 {
			if addr, gerr := geocoder.Reverse(r.Context(), req.HubLat, req.HubLng); gerr != nil {
				logg.Warn(r.Context(), "hub reverse geocode failed")
			} else {
				hubLabel = addr.Label
			}
		}

		if err := profileSvc.SaveAgency(r.Context(), profiles.AgencyProfile{
			UID:       sess.Identity.UID,
			Name:      validators.SanitizeString(req.Name, 120),
			City:      validators.SanitizeString(req.City, 120),
			HubLat:    req.HubLat,
			HubLng:    req.HubLng,
			HubLabel:  hubLabel,
			Portfolio: portfolio,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			Token:    sess.Token,
			Identity: sess.Identity,
		})
	}
}

// AuthLogin verifies credentials and opens a session.
func AuthLogin(provider identity.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := provider.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeAuthError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionResponse{
			Token:    sess.Token,
			Identity: sess.Identity,
		})
	}
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(provider identity.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}
		if err := provider.Logout(r.Context(), accessID); err != nil {
			writeAuthError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}
