package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	partnerserrors "rentora/internal/partners/errors"
	"rentora/internal/partners/repository"
	"rentora/internal/partners/validator"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	"rentora/pkg/model"
	"rentora/pkg/notifier"
	"rentora/pkg/ratelimit"
)

type PartnerService interface {
	Create(ctx context.Context, partner *model.Partner) error
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) error
}

type partnerService struct {
	repo      repository.PartnerRepository
	limiter   ratelimit.Limiter
	notifier  notifier.Notifier
	validator *validator.PartnerValidator
	cfg       *config.Config
}

func NewPartnerService(
	repo repository.PartnerRepository,
	limiter ratelimit.Limiter,
	n notifier.Notifier,
	validator *validator.PartnerValidator,
	cfg *config.Config,
) PartnerService {
	return &partnerService{
		repo:      repo,
		limiter:   limiter,
		notifier:  n,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *partnerService) Create(ctx context.Context, partner *model.Partner) error {
	if err := s.validator.Validate(partner); err != nil {
		s.cfg.Log.Warn("Partner validation failed", "error", err)
		return apperrors.Validation("Partner validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, partner); err != nil {
		s.cfg.Log.Error("Failed to create partner", "error", err)
		return apperrors.Internal("Failed to create partner", err)
	}

	s.cfg.Log.Info("Partner created successfully", "id", partner.ID)
	return nil
}

func (s *partnerService) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Partner ID cannot be empty")
	}

	partner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(id, err, "Failed to retrieve partner")
	}

	return partner, nil
}

// UpdateLocation stores a GPS ping, bounded per partner by the shared rate
// limiter. The write is last-writer-wins; no lock is taken.
func (s *partnerService) UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Partner ID cannot be empty")
	}

	if err := s.validator.ValidateLocation(update); err != nil {
		s.cfg.Log.Warn("Location validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid location input", map[string]any{"error": err.Error()})
	}

	key := fmt.Sprintf("gps:%s", id)
	allowed, err := s.limiter.Allow(ctx, key, s.cfg.GpsRateLimitRequests, s.cfg.GpsRateLimitWindow)
	if err != nil {
		s.cfg.Log.Error("Rate-limit check failed", "id", id, "error", err)
		return apperrors.Internal("Failed to check location rate limit", err)
	}
	if !allowed {
		s.cfg.Log.Warn("Location update rate limited", "id", id)
		return apperrors.RateLimited("Too many location updates", s.cfg.GpsRateLimitWindow)
	}

	location := model.GeoPoint{Lat: update.Lat, Lng: update.Lng}
	at := time.Now().UTC().Truncate(time.Millisecond)

	if err := s.repo.UpdateLocation(ctx, id, location, at); err != nil {
		return s.mapLookupError(id, err, "Failed to update partner location")
	}

	event := model.PartnerLocationEvent{
		PartnerID: id,
		Location:  location,
		At:        at,
	}
	if err := s.notifier.Publish(ctx, id, event); err != nil {
		// Best-effort telemetry; the location is already stored.
		s.cfg.Log.Warn("Failed to publish location-changed event", "id", id, "error", err)
	}

	s.cfg.Log.Debug("Partner location updated", "id", id, "lat", update.Lat, "lng", update.Lng)
	return nil
}

func (s *partnerService) mapLookupError(id string, err error, internalMsg string) error {
	if errors.Is(err, partnerserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Partner", id)
	}
	if errors.Is(err, partnerserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid partner ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}
