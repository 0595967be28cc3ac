// Package pickups implements the pickup booking commands and the status
// state machine guards. All validation and authorization runs before any
// store write, so a rejected command leaves no partial state behind.
package pickups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	apperrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
)

// Service executes booking and mutation commands against the repository.
type Service struct {
	repo *Repository
	cat  *catalog.Catalog
	logg *logger.Logger
}

// NewService builds the command layer.
func NewService(repo *Repository, cat *catalog.Catalog, logg *logger.Logger) *Service {
	return &Service{repo: repo, cat: cat, logg: logg}
}

// CreateInput carries a booking request. Address is the already-resolved
// display address; resolution failures upstream leave it empty and fail
// validation here.
type CreateInput struct {
	OwnerID      string
	CustomerName string
	WasteTypes   []enums.WasteType
	SubType      string
	Address      string
	Date         string
	TimeSlot     enums.TimeSlot
}

func (s *Service) validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.OwnerID) == "" {
		return apperrors.New(apperrors.CodeValidation, "owner is required")
	}
	if len(in.WasteTypes) == 0 {
		return apperrors.New(apperrors.CodeValidation, "select at least one waste type")
	}
	for _, t := range in.WasteTypes {
		if !s.cat.Known(t) {
			return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown waste type %q", t))
		}
	}
	if strings.TrimSpace(in.Date) == "" {
		return apperrors.New(apperrors.CodeValidation, "pickup date is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return apperrors.New(apperrors.CodeValidation, "pickup address is required")
	}
	if !in.TimeSlot.IsValid() {
		return apperrors.New(apperrors.CodeValidation, "invalid time slot")
	}
	if in.SubType != "" {
		if _, ok := s.cat.SubCategoryOf(in.WasteTypes[0], in.SubType); !ok {
			return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("sub-type %q is not defined for %s", in.SubType, in.WasteTypes[0]))
		}
	}
	return nil
}

// Create validates the booking and writes it with status pending.
func (s *Service) Create(ctx context.Context, in CreateInput) (PickupRecord, error) {
	if err := s.validateCreate(in); err != nil {
		return PickupRecord{}, err
	}

	rec, err := s.repo.Create(ctx, PickupRecord{
		OwnerID:      in.OwnerID,
		CustomerName: in.CustomerName,
		WasteTypes:   in.WasteTypes,
		SubType:      in.SubType,
		Address:      in.Address,
		Date:         in.Date,
		TimeSlot:     in.TimeSlot,
		Status:       enums.PickupStatusPending,
	})
	if err != nil {
		return PickupRecord{}, apperrors.Wrap(apperrors.CodeDependency, err, "storing pickup")
	}

	s.logg.Info(s.logg.WithField(ctx, "pickup_id", rec.ID), "pickup scheduled")
	return rec, nil
}

// Delete removes a booking. Only the owner may delete, and only while the
// pickup is still pending; once a partner has picked it up the record is
// part of their active queue.
func (s *Service) Delete(ctx context.Context, pickupID, requesterID string) error {
	rec, err := s.repo.Find(ctx, pickupID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "pickup not found")
		}
		return apperrors.Wrap(apperrors.CodeDependency, err, "loading pickup")
	}

	if rec.OwnerID != requesterID {
		return apperrors.New(apperrors.CodeForbidden, "only the owner can cancel a pickup")
	}
	if rec.Status != enums.PickupStatusPending {
		return apperrors.New(apperrors.CodeForbidden, "only pending pickups can be cancelled")
	}

	if err := s.repo.Delete(ctx, pickupID); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "deleting pickup")
	}
	s.logg.Info(s.logg.WithField(ctx, "pickup_id", pickupID), "pickup cancelled")
	return nil
}

// AdvanceStatus moves a pickup one step forward. Only partners advance
// status, and only along pending -> in-progress -> completed; anything else
// is rejected before the store is touched.
func (s *Service) AdvanceStatus(ctx context.Context, pickupID string, next enums.PickupStatus, role enums.ActorRole) (PickupRecord, error) {
	if role != enums.ActorRolePartner {
		return PickupRecord{}, apperrors.New(apperrors.CodeForbidden, "only partners can update pickup status")
	}
	if !next.IsValid() {
		return PickupRecord{}, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown status %q", next))
	}

	rec, err := s.repo.Find(ctx, pickupID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return PickupRecord{}, apperrors.New(apperrors.CodeNotFound, "pickup not found")
		}
		return PickupRecord{}, apperrors.Wrap(apperrors.CodeDependency, err, "loading pickup")
	}

	if !rec.Status.CanTransitionTo(next) {
		return PickupRecord{}, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot move pickup from %s to %s", rec.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, pickupID, next); err != nil {
		return PickupRecord{}, apperrors.Wrap(apperrors.CodeDependency, err, "updating pickup status")
	}

	rec.Status = next
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"pickup_id": pickupID,
		"status":    string(next),
	}), "pickup status advanced")
	return rec, nil
}

// ListOwned returns the requester's bookings, newest first.
func (s *Service) ListOwned(ctx context.Context, ownerID string) ([]PickupRecord, error) {
	recs, err := s.repo.ListOwned(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing pickups")
	}
	return recs, nil
}

// ListAll returns every booking for the partner queue.
func (s *Service) ListAll(ctx context.Context) ([]PickupRecord, error) {
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing pickups")
	}
	return recs, nil
}

// WatchOwned subscribes to the owner's bookings.
func (s *Service) WatchOwned(ctx context.Context, ownerID string, fn SnapshotHandler) (func(), error) {
	stop, err := s.repo.WatchOwned(ctx, ownerID, fn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "subscribing to pickups")
	}
	return stop, nil
}

// WatchAll subscribes to the full queue.
func (s *Service) WatchAll(ctx context.Context, fn SnapshotHandler) (func(), error) {
	stop, err := s.repo.WatchAll(ctx, fn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "subscribing to pickups")
	}
	return stop, nil
}
