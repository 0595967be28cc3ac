// Package profiles loads and saves the per-account profile documents. A
// failed customer profile read never blocks a session: the portal falls back
// to a minimal profile derived from the identity.
package profiles

import (
	"context"
	"errors"

	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	apperrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
)

const (
	usersCollection    = "users"
	agenciesCollection = "agencies"
)

// UserProfile is a customer's stored profile.
type UserProfile struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Area        string `json:"area"`
	FlatNo      string `json:"flatNo"`
	Street      string `json:"street"`
	FullAddress string `json:"fullAddress"`
}

// AgencyProfile is a partner agency's stored profile.
type AgencyProfile struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	City      string            `json:"city"`
	HubLat    float64           `json:"hubLat"`
	HubLng    float64           `json:"hubLng"`
	HubLabel  string            `json:"hubLabel"`
	Portfolio []enums.WasteType `json:"portfolio"`
}

// Service reads and writes profile documents.
type Service struct {
	store docstore.Store
	logg  *logger.Logger
}

// NewService wires the profile service to the document store.
func NewService(store docstore.Store, logg *logger.Logger) *Service {
	return &Service{store: store, logg: logg}
}

// LoadUser fetches the customer profile. Store failures and missing
// documents degrade to a minimal profile built from the identity so the
// portal session still opens; the failure is logged, never surfaced.
func (s *Service) LoadUser(ctx context.Context, ident identity.Identity) UserProfile {
	doc, err := s.store.Get(ctx, usersCollection, ident.UID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.logg.Warn(s.logg.WithUserID(ctx, ident.UID), "profile load failed, using minimal profile")
		}
		return UserProfile{
			UID:   ident.UID,
			Name:  ident.DisplayName,
			Email: ident.Email,
		}
	}

	return UserProfile{
		UID:         ident.UID,
		Name:        stringField(doc, "name"),
		Email:       stringField(doc, "email"),
		Phone:       stringField(doc, "phone"),
		Area:        stringField(doc, "area"),
		FlatNo:      stringField(doc, "flatNo"),
		Street:      stringField(doc, "street"),
		FullAddress: stringField(doc, "fullAddress"),
	}
}

// SaveAgency merge-writes the agency document keyed by the partner's uid.
func (s *Service) SaveAgency(ctx context.Context, profile AgencyProfile) error {
	portfolio := make([]any, 0, len(profile.Portfolio))
	for _, t := range profile.Portfolio {
		portfolio = append(portfolio, string(t))
	}
	fields := map[string]any{
		"uid":       profile.UID,
		"name":      profile.Name,
		"city":      profile.City,
		"hubLat":    profile.HubLat,
		"hubLng":    profile.HubLng,
		"hubLabel":  profile.HubLabel,
		"portfolio": portfolio,
	}
	if err := s.store.Set(ctx, agenciesCollection, profile.UID, fields); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "saving agency profile")
	}
	return nil
}

// LoadAgency returns the agency profile, or nil when the partner has not
// registered agency details yet.
func (s *Service) LoadAgency(ctx context.Context, uid string) (*AgencyProfile, error) {
	doc, err := s.store.Get(ctx, agenciesCollection, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading agency profile")
	}

	profile := &AgencyProfile{
		UID:      uid,
		Name:     stringField(doc, "name"),
		City:     stringField(doc, "city"),
		HubLabel: stringField(doc, "hubLabel"),
	}
	if v, ok := doc.Fields["hubLat"].(float64); ok {
		profile.HubLat = v
	}
	if v, ok := doc.Fields["hubLng"].(float64); ok {
		profile.HubLng = v
	}
	if raw, ok := doc.Fields["portfolio"].([]any); ok {
		for _, v := range raw {
			if t, ok := v.(string); ok {
				profile.Portfolio = append(profile.Portfolio, enums.WasteType(t))
			}
		}
	}
	return profile, nil
}

func stringField(doc docstore.Document, key string) string {
	if v, ok := doc.Fields[key].(string); ok {
		return v
	}
	return ""
}
