package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "rentora/internal/bookings/errors"
	"rentora/internal/bookings/validator"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	"rentora/pkg/lock"
	"rentora/pkg/logger"
	"rentora/pkg/model"
)

// Mock repository for testing
type mockBookingRepository struct {
	createFunc         func(ctx context.Context, booking *model.Booking) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc        func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	countFunc          func(ctx context.Context) (int64, error)
	approveAllFunc     func(ctx context.Context, id string) (int64, error)
	replaceDocsFunc    func(ctx context.Context, id string, documents []model.DocumentRequirement) error
	confirmPendingFunc func(ctx context.Context, id string, confirmedAt time.Time) (int64, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) ApproveAllDocuments(ctx context.Context, id string) (int64, error) {
	if m.approveAllFunc != nil {
		return m.approveAllFunc(ctx, id)
	}
	return 1, nil
}

func (m *mockBookingRepository) ReplaceDocuments(ctx context.Context, id string, documents []model.DocumentRequirement) error {
	if m.replaceDocsFunc != nil {
		return m.replaceDocsFunc(ctx, id, documents)
	}
	return nil
}

func (m *mockBookingRepository) ConfirmPending(ctx context.Context, id string, confirmedAt time.Time) (int64, error) {
	if m.confirmPendingFunc != nil {
		return m.confirmPendingFunc(ctx, id, confirmedAt)
	}
	return 1, nil
}

// passLocker grants every acquisition immediately.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// busyLocker refuses every acquisition.
type busyLocker struct{}

func (busyLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	return lock.ErrNotAcquired
}

// serialLocker serializes bodies per process, standing in for the Redis lock.
type serialLocker struct {
	mu sync.Mutex
}

func (l *serialLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type mockNotifier struct {
	mu          sync.Mutex
	published   []string
	publishFunc func(ctx context.Context, key string, payload any) error
}

func (m *mockNotifier) Publish(ctx context.Context, key string, payload any) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, key, payload)
	}
	m.mu.Lock()
	m.published = append(m.published, key)
	m.mu.Unlock()
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// memBookingRepo is a stateful in-memory stand-in for the Mongo collection,
// with the same conditional-update semantics as the real repository.
type memBookingRepo struct {
	mu      sync.Mutex
	booking *model.Booking
}

func (m *memBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booking = booking
	return nil
}

func (m *memBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.booking == nil || m.booking.ID != id {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *m.booking
	cp.Documents = append([]model.DocumentRequirement(nil), m.booking.Documents...)
	return &cp, nil
}

func (m *memBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *memBookingRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memBookingRepo) ApproveAllDocuments(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.booking == nil || m.booking.ID != id || m.booking.Documents == nil {
		return 0, nil
	}
	for i := range m.booking.Documents {
		m.booking.Documents[i].Status = model.DocStatusApproved
	}
	return 1, nil
}

func (m *memBookingRepo) ReplaceDocuments(ctx context.Context, id string, documents []model.DocumentRequirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.booking == nil || m.booking.ID != id {
		return bookingserrors.ErrNotFound
	}
	m.booking.Documents = documents
	return nil
}

func (m *memBookingRepo) ConfirmPending(ctx context.Context, id string, confirmedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.booking == nil || m.booking.ID != id || m.booking.Status == model.StatusConfirmed {
		return 0, nil
	}
	m.booking.Status = model.StatusConfirmed
	m.booking.ConfirmedAt = &confirmedAt
	return 1, nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log:            logger.New(logger.Config{Level: "error", Service: "test"}),
		ConfirmLockTTL: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	}
}

func newService(repo *mockBookingRepository, locker lock.Locker, n *mockNotifier) BookingService {
	cfg := newTestConfig()
	return NewBookingService(repo, locker, n, validator.NewBookingValidator(cfg.Log), cfg)
}

func pendingBooking(id string, docs ...model.DocumentRequirement) *model.Booking {
	return &model.Booking{
		ID:         id,
		CustomerID: "65a000000000000000000001",
		ProductID:  "65a000000000000000000002",
		Status:     model.StatusPending,
		Documents:  docs,
		StartDate:  time.Now().Add(24 * time.Hour),
		EndDate:    time.Now().Add(48 * time.Hour),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestConfirm_NotFound(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	err := svc.Confirm(context.Background(), "65a000000000000000000099")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestConfirm_DocsNotApproved(t *testing.T) {
	tests := []struct {
		name string
		docs []model.DocumentRequirement
	}{
		{
			name: "no documents",
			docs: nil,
		},
		{
			name: "one pending document",
			docs: []model.DocumentRequirement{
				{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved},
				{DocType: model.DocTypeSignature, Status: model.DocStatusPending},
			},
		},
		{
			name: "all pending",
			docs: []model.DocumentRequirement{
				{DocType: model.DocTypeSelfie, Status: model.DocStatusPending},
				{DocType: model.DocTypeSignature, Status: model.DocStatusPending},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
					return pendingBooking(id, tt.docs...), nil
				},
			}
			svc := newService(repo, passLocker{}, &mockNotifier{})

			err := svc.Confirm(context.Background(), "65a000000000000000000001")
			assertCode(t, err, bookingserrors.CodeDocsNotApproved)
		})
	}
}

func TestConfirm_AlreadyConfirmed(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := pendingBooking(id, model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved})
			b.Status = model.StatusConfirmed
			return b, nil
		},
	}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	// Retrying must not change the outcome.
	for i := 0; i < 3; i++ {
		err := svc.Confirm(context.Background(), "65a000000000000000000001")
		assertCode(t, err, bookingserrors.CodeAlreadyConfirmed)
	}
}

func TestConfirm_LockBusy(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			t.Fatal("booking must not be read when the lock is not acquired")
			return nil, nil
		},
	}
	svc := newService(repo, busyLocker{}, &mockNotifier{})

	err := svc.Confirm(context.Background(), "65a000000000000000000001")
	assertCode(t, err, apperrors.CodeLockBusy)
}

func TestConfirm_ConflictWhenConditionalWriteLoses(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(id, model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved}), nil
		},
		confirmPendingFunc: func(ctx context.Context, id string, confirmedAt time.Time) (int64, error) {
			// Another process confirmed between read and write.
			return 0, nil
		},
	}
	n := &mockNotifier{}
	svc := newService(repo, passLocker{}, n)

	err := svc.Confirm(context.Background(), "65a000000000000000000001")
	assertCode(t, err, apperrors.CodeConflict)
	if n.count() != 0 {
		t.Error("no event must be published when the conditional write loses")
	}
}

func TestConfirm_SuccessPublishesEvent(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(id,
				model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved},
				model.DocumentRequirement{DocType: model.DocTypeSignature, Status: model.DocStatusApproved},
			), nil
		},
	}
	n := &mockNotifier{}
	svc := newService(repo, passLocker{}, n)

	if err := svc.Confirm(context.Background(), "65a000000000000000000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", n.count())
	}
}

func TestConfirm_PublishFailureDoesNotFailConfirm(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(id, model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved}), nil
		},
	}
	n := &mockNotifier{
		publishFunc: func(ctx context.Context, key string, payload any) error {
			return errors.New("broker unreachable")
		},
	}
	svc := newService(repo, passLocker{}, n)

	if err := svc.Confirm(context.Background(), "65a000000000000000000001"); err != nil {
		t.Fatalf("publish failure must not fail the confirm, got %v", err)
	}
}

func TestConfirm_ConcurrentSingleWinner(t *testing.T) {
	const id = "65a000000000000000000001"
	repo := &memBookingRepo{
		booking: pendingBooking(id,
			model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusApproved},
			model.DocumentRequirement{DocType: model.DocTypeSignature, Status: model.DocStatusApproved},
		),
	}
	cfg := newTestConfig()
	n := &mockNotifier{}
	svc := NewBookingService(repo, &serialLocker{}, n, validator.NewBookingValidator(cfg.Log), cfg)

	const callers = 10
	results := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Confirm(context.Background(), id)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		code := apperrors.AsAppError(err).Code
		switch code {
		case bookingserrors.CodeAlreadyConfirmed, apperrors.CodeConflict, apperrors.CodeLockBusy:
		default:
			t.Errorf("unexpected error code for losing caller: %s", code)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful confirm, got %d", successes)
	}
	if n.count() != 1 {
		t.Errorf("expected exactly one published event, got %d", n.count())
	}
}

func TestApproveAllDocuments_Idempotent(t *testing.T) {
	const id = "65a000000000000000000001"
	repo := &memBookingRepo{
		booking: pendingBooking(id,
			model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusPending},
			model.DocumentRequirement{DocType: model.DocTypeSignature, Status: model.DocStatusPending},
		),
	}
	cfg := newTestConfig()
	svc := NewBookingService(repo, passLocker{}, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)

	for i := 0; i < 2; i++ {
		if err := svc.ApproveAllDocuments(context.Background(), id); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}

	got, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range got.Documents {
		if d.Status != model.DocStatusApproved {
			t.Errorf("expected document %s approved, got %s", d.DocType, d.Status)
		}
	}
}

func TestCreate_StoresEmptyDocumentArrayNotNull(t *testing.T) {
	var stored *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			stored = booking
			return nil
		},
	}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	b := pendingBooking("")
	b.ID = ""
	b.Documents = nil
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected booking to reach the repository")
	}
	// A nil slice reaches Mongo as a BSON null, against which the bulk
	// approval's array update is a server error.
	if stored.Documents == nil {
		t.Error("expected documents to be normalized to an empty array")
	}
	if len(stored.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(stored.Documents))
	}
}

func TestApproveAllDocuments_NotFound(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	err := svc.ApproveAllDocuments(context.Background(), "65a000000000000000000099")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestSetDocuments_RejectsUnknownDocType(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	err := svc.SetDocuments(context.Background(), "65a000000000000000000001", []model.DocumentRequirement{
		{DocType: "passport-scan", Status: model.DocStatusPending},
	})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestSetDocuments_NotFound(t *testing.T) {
	repo := &mockBookingRepository{
		replaceDocsFunc: func(ctx context.Context, id string, documents []model.DocumentRequirement) error {
			return bookingserrors.ErrNotFound
		},
	}
	svc := newService(repo, passLocker{}, &mockNotifier{})

	err := svc.SetDocuments(context.Background(), "65a000000000000000000099", []model.DocumentRequirement{
		{DocType: model.DocTypeSelfie, Status: model.DocStatusPending},
	})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestBookingLifecycle_EndToEnd(t *testing.T) {
	const id = "65a000000000000000000001"
	repo := &memBookingRepo{
		booking: pendingBooking(id,
			model.DocumentRequirement{DocType: model.DocTypeSelfie, Status: model.DocStatusPending},
			model.DocumentRequirement{DocType: model.DocTypeSignature, Status: model.DocStatusPending},
		),
	}
	cfg := newTestConfig()
	svc := NewBookingService(repo, &serialLocker{}, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)
	ctx := context.Background()

	// Two pending documents: confirm must be gated.
	assertCode(t, svc.Confirm(ctx, id), bookingserrors.CodeDocsNotApproved)

	if err := svc.ApproveAllDocuments(ctx, id); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := svc.Confirm(ctx, id); err != nil {
		t.Fatalf("confirm after approval failed: %v", err)
	}

	got, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", got.Status)
	}
	if got.ConfirmedAt == nil {
		t.Fatal("expected confirmed_at to be set")
	}

	assertCode(t, svc.Confirm(ctx, id), bookingserrors.CodeAlreadyConfirmed)
}
