package model

import "time"

// Events are best-effort notifications; consumers must tolerate gaps.

type BookingConfirmedEvent struct {
	BookingID   string    `json:"booking_id"`
	ProductID   string    `json:"product_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type PartnerLocationEvent struct {
	PartnerID string    `json:"partner_id"`
	Location  GeoPoint  `json:"location"`
	At        time.Time `json:"at"`
}
