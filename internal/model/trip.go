package model

import (
	"time"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusPlanning   TripStatus = "Planning"
	TripStatusReady      TripStatus = "Ready to Go"
	TripStatusInProgress TripStatus = "In Progress"
	TripStatusCompleted  TripStatus = "Completed"
)

// Trip represents one planned journey owned by a user.
type Trip struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	Purpose            string     `json:"purpose"`
	DestinationCountry string     `json:"destination_country"`
	StartDate          string     `json:"start_date"`
	EndDate            string     `json:"end_date"`
	Status             TripStatus `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateTripRequest is the request to create a trip.
type CreateTripRequest struct {
	Title              string     `json:"title"`
	Purpose            string     `json:"purpose"`
	DestinationCountry string     `json:"destination_country"`
	StartDate          string     `json:"start_date"`
	EndDate            string     `json:"end_date"`
	Status             TripStatus `json:"status,omitempty"`
}

// UpdateTripRequest is the request to update a trip. Zero-valued fields
// are left unchanged.
type UpdateTripRequest struct {
	Title              string     `json:"title,omitempty"`
	Purpose            string     `json:"purpose,omitempty"`
	DestinationCountry string     `json:"destination_country,omitempty"`
	StartDate          string     `json:"start_date,omitempty"`
	EndDate            string     `json:"end_date,omitempty"`
	Status             TripStatus `json:"status,omitempty"`
}

// ListTripsResponse is the response for listing a user's trips.
type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
	Total int    `json:"total"`
}
