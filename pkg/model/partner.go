package model

import "time"

type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"longitude"`
}

type Partner struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string     `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Location  *GeoPoint  `json:"location,omitempty" bson:"location,omitempty"`
	LastGpsAt *time.Time `json:"last_gps_at,omitempty" bson:"last_gps_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// LocationUpdate is the request payload for a partner GPS ping.
type LocationUpdate struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}
