package validator

import (
	"strings"
	"testing"
	"time"

	"rentora/pkg/logger"
	"rentora/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Service: "test",
	})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	return &model.Booking{
		CustomerID: "65a000000000000000000001",
		ProductID:  "65a000000000000000000002",
		Status:     model.StatusPending,
		Price:      120.50,
		StartDate:  time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidateBooking(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *model.Booking)
		wantError bool
	}{
		{
			name:      "valid booking",
			mutate:    func(b *model.Booking) {},
			wantError: false,
		},
		{
			name:      "missing customer id",
			mutate:    func(b *model.Booking) { b.CustomerID = "" },
			wantError: true,
		},
		{
			name:      "malformed customer id",
			mutate:    func(b *model.Booking) { b.CustomerID = "not-an-object-id" },
			wantError: true,
		},
		{
			name:      "unknown status",
			mutate:    func(b *model.Booking) { b.Status = "cancelled" },
			wantError: true,
		},
		{
			name:      "negative price",
			mutate:    func(b *model.Booking) { b.Price = -1 },
			wantError: true,
		},
		{
			name:      "end date before start date",
			mutate:    func(b *model.Booking) { b.EndDate = b.StartDate.Add(-time.Hour) },
			wantError: true,
		},
		{
			name:      "end date equals start date",
			mutate:    func(b *model.Booking) { b.EndDate = b.StartDate },
			wantError: true,
		},
		{
			name: "valid documents",
			mutate: func(b *model.Booking) {
				b.Documents = []model.DocumentRequirement{
					{DocType: model.DocTypeSelfie, Status: model.DocStatusPending},
				}
			},
			wantError: false,
		},
		{
			name: "document with unknown type",
			mutate: func(b *model.Booking) {
				b.Documents = []model.DocumentRequirement{
					{DocType: "diploma", Status: model.DocStatusPending},
				}
			},
			wantError: true,
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)

			err := v.Validate(b)
			if tt.wantError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateDocuments(t *testing.T) {
	tests := []struct {
		name      string
		documents []model.DocumentRequirement
		wantError bool
	}{
		{
			name:      "empty set is valid",
			documents: nil,
			wantError: false,
		},
		{
			name: "known types and statuses",
			documents: []model.DocumentRequirement{
				{DocType: model.DocTypeLicense, Status: model.DocStatusApproved},
				{DocType: model.DocTypeContract, Status: model.DocStatusPending},
			},
			wantError: false,
		},
		{
			name: "unknown doc type",
			documents: []model.DocumentRequirement{
				{DocType: "passport", Status: model.DocStatusPending},
			},
			wantError: true,
		},
		{
			name: "unknown status",
			documents: []model.DocumentRequirement{
				{DocType: model.DocTypeSelfie, Status: "rejected"},
			},
			wantError: true,
		},
		{
			name: "missing status",
			documents: []model.DocumentRequirement{
				{DocType: model.DocTypeSelfie},
			},
			wantError: true,
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDocuments(tt.documents)
			if tt.wantError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "CustomerID", Message: "CustomerID is required"},
		{Field: "Status", Message: "Status must be one of: pending confirmed"},
	}

	got := errs.Error()
	if got == "" {
		t.Fatal("expected non-empty message")
	}
	for _, want := range []string{"2 error(s)", "CustomerID is required"} {
		if !strings.Contains(got, want) {
			t.Errorf("message %q missing %q", got, want)
		}
	}
}
