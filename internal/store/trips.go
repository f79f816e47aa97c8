package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/borderbuddy/travel-platform/internal/model"
)

const tripColumns = "id, user_id, title, purpose, destination_country, start_date, end_date, status, created_at, updated_at"

// CreateTrip inserts a new trip owned by userID.
func (s *Store) CreateTrip(ctx context.Context, userID string, req *model.CreateTripRequest) (*model.Trip, error) {
	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = model.TripStatusPlanning
	}

	trip := &model.Trip{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		UserID:             userID,
		Title:              req.Title,
		Purpose:            req.Purpose,
		DestinationCountry: req.DestinationCountry,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trips ("+tripColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		trip.ID, trip.UserID, trip.Title, trip.Purpose, trip.DestinationCountry,
		trip.StartDate, trip.EndDate, string(trip.Status),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// GetTrip looks up a trip by id.
func (s *Store) GetTrip(ctx context.Context, id string) (*model.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+tripColumns+" FROM trips WHERE id = ?", id)
	return scanTrip(row)
}

// ListTrips returns every trip owned by userID, newest-first.
func (s *Store) ListTrips(ctx context.Context, userID string) ([]model.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+tripColumns+" FROM trips WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []model.Trip{}
	for rows.Next() {
		trip, err := scanTripRows(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, rows.Err()
}

// UpdateTrip applies non-zero fields of req to the trip. Returns
// (nil, nil) when the trip does not exist.
func (s *Store) UpdateTrip(ctx context.Context, id string, req *model.UpdateTripRequest) (*model.Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil || trip == nil {
		return nil, err
	}

	if req.Title != "" {
		trip.Title = req.Title
	}
	if req.Purpose != "" {
		trip.Purpose = req.Purpose
	}
	if req.DestinationCountry != "" {
		trip.DestinationCountry = req.DestinationCountry
	}
	if req.StartDate != "" {
		trip.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		trip.EndDate = req.EndDate
	}
	if req.Status != "" {
		trip.Status = req.Status
	}
	trip.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE trips SET title = ?, purpose = ?, destination_country = ?, start_date = ?,
			end_date = ?, status = ?, updated_at = ? WHERE id = ?`,
		trip.Title, trip.Purpose, trip.DestinationCountry, trip.StartDate,
		trip.EndDate, string(trip.Status), trip.UpdatedAt.Format(time.RFC3339Nano), trip.ID,
	)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// DeleteTrip removes a trip; buddy, context and places cascade.
// Returns false when the trip does not exist.
func (s *Store) DeleteTrip(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanTrip(row *sql.Row) (*model.Trip, error) {
	var t model.Trip
	var status, createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Purpose, &t.DestinationCountry,
		&t.StartDate, &t.EndDate, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Status = model.TripStatus(status)
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &t, nil
}

func scanTripRows(rows *sql.Rows) (*model.Trip, error) {
	var t model.Trip
	var status, createdAt, updatedAt string
	err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Purpose, &t.DestinationCountry,
		&t.StartDate, &t.EndDate, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = model.TripStatus(status)
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &t, nil
}
