package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "rentora/internal/bookings/errors"
	"rentora/internal/bookings/repository"
	"rentora/internal/bookings/validator"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	"rentora/pkg/lock"
	"rentora/pkg/model"
	"rentora/pkg/notifier"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	ApproveAllDocuments(ctx context.Context, id string) error
	SetDocuments(ctx context.Context, id string, documents []model.DocumentRequirement) error
	Confirm(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	locker    lock.Locker
	notifier  notifier.Notifier
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	locker lock.Locker,
	n notifier.Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locker:    locker,
		notifier:  n,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"product_id", booking.ProductID,
		"documents", len(booking.Documents),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(id, err, "Failed to retrieve booking")
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// ApproveAllDocuments is a bulk, unconditional approval; per-document review
// is not modeled. It commutes with itself, so no lock is taken and concurrent
// duplicate calls are harmless.
func (s *bookingService) ApproveAllDocuments(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.mapLookupError(id, err, "Failed to check booking existence")
	}

	matched, err := s.repo.ApproveAllDocuments(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to approve booking documents", "id", id, "error", err)
		return apperrors.Internal("Failed to approve booking documents", err)
	}
	if matched == 0 {
		return apperrors.ConflictCode(bookingserrors.CodeUpdateFailed, "Booking documents were not updated")
	}

	s.cfg.Log.Info("Booking documents approved", "id", id)
	return nil
}

// SetDocuments replaces the document list wholesale, last writer wins. It is
// deliberately not serialized against Confirm: a replace can overwrite an
// approval a concurrent confirm already validated. Matches the observed
// contract; see DESIGN.md.
func (s *bookingService) SetDocuments(ctx context.Context, id string, documents []model.DocumentRequirement) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateDocuments(documents); err != nil {
		s.cfg.Log.Warn("Document validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid document input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.ReplaceDocuments(ctx, id, documents); err != nil {
		return s.mapLookupError(id, err, "Failed to replace booking documents")
	}

	s.cfg.Log.Info("Booking documents replaced", "id", id, "documents", len(documents))
	return nil
}

func (s *bookingService) Confirm(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	lockKey := fmt.Sprintf("booking:%s:confirm", id)

	err := s.locker.WithLock(ctx, lockKey, s.cfg.ConfirmLockTTL, func(ctx context.Context) error {
		return s.confirmLocked(ctx, id)
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		s.cfg.Log.Warn("Confirm lock busy", "id", id)
		return apperrors.LockBusy("Booking", s.cfg.ConfirmLockTTL)
	}
	return err
}

func (s *bookingService) confirmLocked(ctx context.Context, id string) error {
	// Fresh read inside the lock; a copy fetched before acquisition could
	// predate another caller's confirm.
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(id, err, "Failed to read booking for confirmation")
	}

	if booking.Status == model.StatusConfirmed {
		return apperrors.ConflictCode(bookingserrors.CodeAlreadyConfirmed, "Booking is already confirmed")
	}

	if !booking.DocumentsApproved() {
		return apperrors.ConflictCode(bookingserrors.CodeDocsNotApproved, "All booking documents must be approved before confirmation")
	}

	confirmedAt := time.Now().UTC().Truncate(time.Millisecond)
	modified, err := s.repo.ConfirmPending(ctx, id, confirmedAt)
	if err != nil {
		s.cfg.Log.Error("Failed to confirm booking", "id", id, "error", err)
		return apperrors.Internal("Failed to confirm booking", err)
	}
	if modified == 0 {
		// Another process won the conditional write. Possible when the lock
		// lease expired mid-operation; the status guard keeps exactly one winner.
		return apperrors.Conflict("Booking was confirmed by another request")
	}

	s.cfg.Log.Info("Booking confirmed", "id", id, "confirmed_at", confirmedAt)

	event := model.BookingConfirmedEvent{
		BookingID:   id,
		ProductID:   booking.ProductID,
		ConfirmedAt: confirmedAt,
	}
	if err := s.notifier.Publish(ctx, id, event); err != nil {
		// Best-effort notification; the confirm already happened.
		s.cfg.Log.Warn("Failed to publish booking-confirmed event", "id", id, "error", err)
	}

	return nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	// A nil slice would be stored as a BSON null, which array-position
	// updates cannot touch. Store an empty array instead.
	if b.Documents == nil {
		b.Documents = []model.DocumentRequirement{}
	}
	for i := range b.Documents {
		if b.Documents[i].Status == "" {
			b.Documents[i].Status = model.DocStatusPending
		}
	}
}

func (s *bookingService) mapLookupError(id string, err error, internalMsg string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}
