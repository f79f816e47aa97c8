package service

import (
	"context"

	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

// TripStore is the trip storage used by TripService.
type TripStore interface {
	CreateTrip(ctx context.Context, userID string, req *model.CreateTripRequest) (*model.Trip, error)
	GetTrip(ctx context.Context, id string) (*model.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]model.Trip, error)
	UpdateTrip(ctx context.Context, id string, req *model.UpdateTripRequest) (*model.Trip, error)
	DeleteTrip(ctx context.Context, id string) (bool, error)
}

// TripService handles trip CRUD with ownership enforcement.
type TripService struct {
	store  TripStore
	logger *logger.Logger
}

// NewTripService creates a trip service.
func NewTripService(store TripStore, lg *logger.Logger) *TripService {
	return &TripService{store: store, logger: lg}
}

// Create creates a trip owned by userID.
func (s *TripService) Create(ctx context.Context, userID string, req *model.CreateTripRequest) (*model.Trip, error) {
	trip, err := s.store.CreateTrip(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	metrics.TripsTotal.Inc()
	return trip, nil
}

// Get returns a trip owned by userID.
func (s *TripService) Get(ctx context.Context, tripID, userID string) (*model.Trip, error) {
	return s.owned(ctx, tripID, userID)
}

// List returns all trips owned by userID, newest-first.
func (s *TripService) List(ctx context.Context, userID string) ([]model.Trip, error) {
	return s.store.ListTrips(ctx, userID)
}

// Update applies changes to a trip owned by userID.
func (s *TripService) Update(ctx context.Context, tripID, userID string, req *model.UpdateTripRequest) (*model.Trip, error) {
	if _, err := s.owned(ctx, tripID, userID); err != nil {
		return nil, err
	}
	trip, err := s.store.UpdateTrip(ctx, tripID, req)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrNotFound
	}
	return trip, nil
}

// Delete removes a trip owned by userID; the buddy record, chat
// pointers, context and places cascade with it.
func (s *TripService) Delete(ctx context.Context, tripID, userID string) error {
	if _, err := s.owned(ctx, tripID, userID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *TripService) owned(ctx context.Context, tripID, userID string) (*model.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
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
