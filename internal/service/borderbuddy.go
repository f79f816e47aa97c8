package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/borderbuddy/travel-platform/internal/llm"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

// BuddyStore is the buddy/context/places storage used by
// BorderBuddyService.
type BuddyStore interface {
	EnableBuddy(ctx context.Context, tripID string) (*model.BorderBuddy, bool, error)
	GetBuddyByTrip(ctx context.Context, tripID string) (*model.BorderBuddy, error)
	GetContext(ctx context.Context, buddyID string) (*model.TravelContext, error)
	SaveContext(ctx context.Context, buddyID string, tc *model.TravelContext) (*model.TravelContext, error)
	GetPlaces(ctx context.Context, buddyID string) (*model.PlaceSet, error)
	SavePlaces(ctx context.Context, buddyID string, items []model.PlaceItem) (*model.PlaceSet, error)
}

// BorderBuddyService handles the per-trip assistant record, the travel
// context preferences and place suggestion generation.
type BorderBuddyService struct {
	trips     TripFinder
	store     BuddyStore
	assistant Assistant
	logger    *logger.Logger
}

// NewBorderBuddyService creates a buddy service.
func NewBorderBuddyService(trips TripFinder, store BuddyStore, assistant Assistant, lg *logger.Logger) *BorderBuddyService {
	return &BorderBuddyService{
		trips:     trips,
		store:     store,
		assistant: assistant,
		logger:    lg,
	}
}

// Enable creates the buddy record for a trip. Idempotent: enabling an
// already enabled trip returns the existing record with created false.
func (s *BorderBuddyService) Enable(ctx context.Context, tripID, userID string) (*model.EnableBuddyResponse, error) {
	if _, err := s.ownedTrip(ctx, tripID, userID); err != nil {
		return nil, err
	}

	buddy, created, err := s.store.EnableBuddy(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &model.EnableBuddyResponse{Created: created, BorderBuddy: buddy}, nil
}

// GetContext returns the buddy's saved travel context, or the empty
// default when nothing has been saved yet.
func (s *BorderBuddyService) GetContext(ctx context.Context, tripID, userID string) (*model.TravelContext, error) {
	_, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	tc, err := s.store.GetContext(ctx, buddy.ID)
	if err != nil {
		return nil, err
	}
	if tc == nil {
		return model.EmptyTravelContext(), nil
	}
	return tc, nil
}

// SaveContext upserts the buddy's travel context.
func (s *BorderBuddyService) SaveContext(ctx context.Context, tripID, userID string, tc *model.TravelContext) (*model.TravelContext, error) {
	_, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	return s.store.SaveContext(ctx, buddy.ID, tc)
}

// GetPlaces returns the latest generated suggestion set, or an empty
// set when nothing has been generated.
func (s *BorderBuddyService) GetPlaces(ctx context.Context, tripID, userID string) (*model.PlaceSet, error) {
	_, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	set, err := s.store.GetPlaces(ctx, buddy.ID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return &model.PlaceSet{Items: []model.PlaceItem{}}, nil
	}
	return set, nil
}

// GeneratePlaces produces a fresh suggestion set for the trip and
// stores it (latest wins). Suggestions come from the assistant when a
// provider is configured; otherwise, or when the provider yields
// nothing usable, a canned set keeps the feature alive.
func (s *BorderBuddyService) GeneratePlaces(ctx context.Context, tripID, userID, seed string) (*model.PlaceSet, error) {
	trip, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	tc, err := s.store.GetContext(ctx, buddy.ID)
	if err != nil {
		return nil, err
	}

	items, source := s.suggest(ctx, trip, tc, seed)
	metrics.PlacesGenerationsTotal.WithLabelValues(source).Inc()

	return s.store.SavePlaces(ctx, buddy.ID, items)
}

func (s *BorderBuddyService) suggest(ctx context.Context, trip *model.Trip, tc *model.TravelContext, seed string) ([]model.PlaceItem, string) {
	answer, ok := s.assistant.Ask(ctx, placesPrompt(trip, tc, seed))
	if ok {
		if items := parsePlaceItems(answer); len(items) > 0 {
			return items, "llm"
		}
	}
	return cannedPlaces(), "canned"
}

func placesPrompt(trip *model.Trip, tc *model.TravelContext, seed string) []llm.ChatMessage {
	lines := []string{
		"You are BorderBuddy, a travel assistant suggesting places to visit.",
		"Reply with a JSON array of objects: {\"name\", \"description\", \"tags\"}.",
		"Suggest five places. No prose outside the JSON.",
	}
	if trip.DestinationCountry != "" {
		lines = append(lines, "Destination: "+trip.DestinationCountry)
	}
	if tc != nil {
		if len(tc.Interests) > 0 {
			lines = append(lines, "Interests: "+strings.Join(tc.Interests, ", "))
		}
		if len(tc.Regions) > 0 {
			lines = append(lines, "Regions: "+strings.Join(tc.Regions, ", "))
		}
		if tc.Budget != nil {
			lines = append(lines, "Budget: "+*tc.Budget)
		}
		if tc.Style != nil {
			lines = append(lines, "Style: "+*tc.Style)
		}
		if len(tc.Constraints) > 0 {
			lines = append(lines, "Constraints: "+strings.Join(tc.Constraints, ", "))
		}
	}

	user := "Suggest places for this trip."
	if seed != "" {
		user = fmt.Sprintf("Suggest places for this trip. Theme hint: %s", seed)
	}

	return []llm.ChatMessage{
		{Role: "system", Content: strings.Join(lines, "\n")},
		{Role: "user", Content: user},
	}
}

func cannedPlaces() []model.PlaceItem {
	return []model.PlaceItem{
		{Name: "Central Park", Description: "Iconic urban park for walks and picnics", Tags: []string{"scenic", "relax"}},
		{Name: "City Museum", Description: "Exhibits on local history and culture", Tags: []string{"history", "indoor"}},
	}
}

func (s *BorderBuddyService) ownedTrip(ctx context.Context, tripID, userID string) (*model.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrNotFound
	}
	if trip.UserID != userID {
		return nil, ErrForbidden
	}
	return trip, nil
}

func (s *BorderBuddyService) resolve(ctx context.Context, tripID, userID string) (*model.Trip, *model.BorderBuddy, error) {
	trip, err := s.ownedTrip(ctx, tripID, userID)
	if err != nil {
		return nil, nil, err
	}
	buddy, err := s.store.GetBuddyByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	if buddy == nil {
		return nil, nil, ErrNotEnabled
	}
	return trip, buddy, nil
}
