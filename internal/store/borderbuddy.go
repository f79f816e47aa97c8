package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/borderbuddy/travel-platform/internal/model"
)

// EnableBuddy creates the buddy record for a trip if it does not exist.
// The insert is race tolerant: two concurrent enables both succeed and
// return the same record, created reporting which caller inserted it.
func (s *Store) EnableBuddy(ctx context.Context, tripID string) (*model.BorderBuddy, bool, error) {
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO border_buddies (id, trip_id, created_at) VALUES (?, ?, ?)",
		id, tripID, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	buddy, err := s.GetBuddyByTrip(ctx, tripID)
	if err != nil {
		return nil, false, err
	}
	if buddy == nil {
		return nil, false, fmt.Errorf("buddy vanished after enable for trip %s", tripID)
	}
	return buddy, inserted > 0, nil
}

// GetBuddyByTrip looks up the buddy record for a trip.
func (s *Store) GetBuddyByTrip(ctx context.Context, tripID string) (*model.BorderBuddy, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, created_at FROM border_buddies WHERE trip_id = ?", tripID)

	var b model.BorderBuddy
	var createdAt string
	err := row.Scan(&b.ID, &b.TripID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &b, nil
}

// GetContext returns the saved travel context for a buddy, or (nil, nil)
// when none has been saved.
func (s *Store) GetContext(ctx context.Context, buddyID string) (*model.TravelContext, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT interests, regions, budget, style, constraints FROM travel_contexts WHERE buddy_id = ?",
		buddyID)

	var interests, regions, constraints string
	var tc model.TravelContext
	err := row.Scan(&interests, &regions, &tc.Budget, &tc.Style, &constraints)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(interests), &tc.Interests); err != nil {
		return nil, fmt.Errorf("decode interests: %w", err)
	}
	if err := json.Unmarshal([]byte(regions), &tc.Regions); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	if err := json.Unmarshal([]byte(constraints), &tc.Constraints); err != nil {
		return nil, fmt.Errorf("decode constraints: %w", err)
	}
	return &tc, nil
}

// SaveContext upserts the travel context for a buddy.
func (s *Store) SaveContext(ctx context.Context, buddyID string, tc *model.TravelContext) (*model.TravelContext, error) {
	interests, err := json.Marshal(orEmpty(tc.Interests))
	if err != nil {
		return nil, err
	}
	regions, err := json.Marshal(orEmpty(tc.Regions))
	if err != nil {
		return nil, err
	}
	constraints, err := json.Marshal(orEmpty(tc.Constraints))
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO travel_contexts (buddy_id, interests, regions, budget, style, constraints, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(buddy_id) DO UPDATE SET
			interests = excluded.interests,
			regions = excluded.regions,
			budget = excluded.budget,
			style = excluded.style,
			constraints = excluded.constraints,
			updated_at = excluded.updated_at`,
		buddyID, string(interests), string(regions), tc.Budget, tc.Style,
		string(constraints), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return s.GetContext(ctx, buddyID)
}

// GetPlaces returns the latest generated place set for a buddy, or
// (nil, nil) when nothing has been generated.
func (s *Store) GetPlaces(ctx context.Context, buddyID string) (*model.PlaceSet, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT items, generated_at FROM place_sets WHERE buddy_id = ?", buddyID)

	var items, generatedAt string
	err := row.Scan(&items, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var set model.PlaceSet
	if err := json.Unmarshal([]byte(items), &set.Items); err != nil {
		return nil, fmt.Errorf("decode place items: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
		set.GeneratedAt = &ts
	}
	return &set, nil
}

// SavePlaces replaces the place set for a buddy (latest wins).
func (s *Store) SavePlaces(ctx context.Context, buddyID string, items []model.PlaceItem) (*model.PlaceSet, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO place_sets (buddy_id, items, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(buddy_id) DO UPDATE SET
			items = excluded.items,
			generated_at = excluded.generated_at`,
		buddyID, string(data), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return &model.PlaceSet{GeneratedAt: &now, Items: items}, nil
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
