package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

const (
	DocStatusPending  = "pending"
	DocStatusApproved = "approved"
)

const (
	DocTypeSelfie    = "selfie"
	DocTypeSignature = "signature"
	DocTypeLicense   = "license"
	DocTypeContract  = "contract"
)

type Booking struct {
	ID          string                `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID  string                `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	ProductID   string                `json:"product_id" bson:"product_id" validate:"required,mongodb"`
	Status      string                `json:"status" bson:"status" validate:"required,oneof=pending confirmed"`
	Documents   []DocumentRequirement `json:"documents" bson:"documents" validate:"omitempty,dive"`
	Price       float64               `json:"price" bson:"price" validate:"gte=0"`
	Address     string                `json:"address" bson:"address" validate:"omitempty,max=300"`
	StartDate   time.Time             `json:"start_date" bson:"start_date" validate:"required"`
	EndDate     time.Time             `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	CreatedAt   time.Time             `json:"created_at" bson:"created_at" validate:"omitempty"`
	ConfirmedAt *time.Time            `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
}

type DocumentRequirement struct {
	DocType string `json:"doc_type" bson:"doc_type" validate:"required,oneof=selfie signature license contract"`
	DocLink string `json:"doc_link" bson:"doc_link" validate:"omitempty,max=2048"`
	Status  string `json:"status" bson:"status" validate:"required,oneof=pending approved"`
}

// DocumentsApproved reports whether the booking can pass the document gate:
// at least one requirement, and every requirement approved.
func (b *Booking) DocumentsApproved() bool {
	if len(b.Documents) == 0 {
		return false
	}
	for _, d := range b.Documents {
		if d.Status != DocStatusApproved {
			return false
		}
	}
	return true
}

// DocumentSet is the request payload for replacing a booking's document list.
type DocumentSet struct {
	Documents []DocumentRequirement `json:"documents" validate:"dive"`
}
