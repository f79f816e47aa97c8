package model

import (
	"time"
)

// BorderBuddy is the per-trip assistant record. It owns the chat log,
// the travel context, and the generated place suggestions for its trip.
type BorderBuddy struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EnableBuddyResponse is returned by the enable endpoint.
type EnableBuddyResponse struct {
	Created     bool         `json:"created"`
	BorderBuddy *BorderBuddy `json:"border_buddy"`
}

// TravelContext holds per-buddy traveller preferences used to steer
// place generation and chat prompts.
type TravelContext struct {
	Interests   []string `json:"interests"`
	Regions     []string `json:"regions"`
	Budget      *string  `json:"budget"`
	Style       *string  `json:"style"`
	Constraints []string `json:"constraints"`
}

// EmptyTravelContext returns the default context for a buddy with no
// saved preferences.
func EmptyTravelContext() *TravelContext {
	return &TravelContext{
		Interests:   []string{},
		Regions:     []string{},
		Constraints: []string{},
	}
}

// PlaceItem is a single place suggestion.
type PlaceItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// PlaceSet is the most recent generated suggestion set for a buddy.
// GeneratedAt is nil when nothing has been generated yet.
type PlaceSet struct {
	GeneratedAt *time.Time  `json:"generated_at"`
	Items       []PlaceItem `json:"items"`
}

// GeneratePlacesRequest is the request to regenerate place suggestions.
type GeneratePlacesRequest struct {
	Seed string `json:"seed,omitempty"`
}
