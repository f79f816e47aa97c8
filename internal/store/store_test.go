package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borderbuddy/travel-platform/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func createTestUser(t *testing.T, st *Store, email string) *model.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), email, "Test Traveler", "hash")
	require.NoError(t, err)
	return user
}

func createTestTrip(t *testing.T, st *Store, userID string) *model.Trip {
	t.Helper()
	trip, err := st.CreateTrip(context.Background(), userID, &model.CreateTripRequest{
		Title:              "Lisbon in spring",
		DestinationCountry: "Portugal",
		StartDate:          "2026-04-01",
		EndDate:            "2026-04-10",
	})
	require.NoError(t, err)
	return trip
}

func TestUserCreateAndLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "a@example.com")
	assert.NotEmpty(t, user.ID)

	byEmail, err := st.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@example.com", byID.Email)

	missing, err := st.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserDuplicateEmail(t *testing.T) {
	st := newTestStore(t)

	createTestUser(t, st, "a@example.com")
	_, err := st.CreateUser(context.Background(), "a@example.com", "Other", "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestTripCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "a@example.com")

	trip := createTestTrip(t, st, user.ID)
	assert.Equal(t, model.TripStatusPlanning, trip.Status)

	got, err := st.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lisbon in spring", got.Title)

	updated, err := st.UpdateTrip(ctx, trip.ID, &model.UpdateTripRequest{
		Status:  model.TripStatusReady,
		Purpose: "vacation",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.TripStatusReady, updated.Status)
	assert.Equal(t, "vacation", updated.Purpose)
	// Untouched fields survive the partial update.
	assert.Equal(t, "Lisbon in spring", updated.Title)

	deleted, err := st.DeleteTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := st.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	deleted, err = st.DeleteTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListTripsOnlyOwned(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, st, "alice@example.com")
	bob := createTestUser(t, st, "bob@example.com")

	createTestTrip(t, st, alice.ID)
	createTestTrip(t, st, alice.ID)
	createTestTrip(t, st, bob.ID)

	trips, err := st.ListTrips(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, trips, 2)
	for _, trip := range trips {
		assert.Equal(t, alice.ID, trip.UserID)
	}
}

func TestEnableBuddyIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "a@example.com")
	trip := createTestTrip(t, st, user.ID)

	first, created, err := st.EnableBuddy(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := st.EnableBuddy(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	missing, err := st.GetBuddyByTrip(ctx, "no-such-trip")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTravelContextRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "a@example.com")
	trip := createTestTrip(t, st, user.ID)
	buddy, _, err := st.EnableBuddy(ctx, trip.ID)
	require.NoError(t, err)

	unset, err := st.GetContext(ctx, buddy.ID)
	require.NoError(t, err)
	assert.Nil(t, unset)

	budget := "shoestring"
	saved, err := st.SaveContext(ctx, buddy.ID, &model.TravelContext{
		Interests: []string{"food", "museums"},
		Budget:    &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "museums"}, saved.Interests)
	assert.Equal(t, []string{}, saved.Regions)
	require.NotNil(t, saved.Budget)
	assert.Equal(t, "shoestring", *saved.Budget)

	// Upsert replaces the previous context.
	saved, err = st.SaveContext(ctx, buddy.ID, &model.TravelContext{
		Regions: []string{"north"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{}, saved.Interests)
	assert.Equal(t, []string{"north"}, saved.Regions)
	assert.Nil(t, saved.Budget)
}

func TestPlaceSetLatestWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "a@example.com")
	trip := createTestTrip(t, st, user.ID)
	buddy, _, err := st.EnableBuddy(ctx, trip.ID)
	require.NoError(t, err)

	empty, err := st.GetPlaces(ctx, buddy.ID)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = st.SavePlaces(ctx, buddy.ID, []model.PlaceItem{{Name: "Alfama"}})
	require.NoError(t, err)

	second, err := st.SavePlaces(ctx, buddy.ID, []model.PlaceItem{{Name: "Belém"}, {Name: "Sintra"}})
	require.NoError(t, err)
	require.NotNil(t, second.GeneratedAt)

	got, err := st.GetPlaces(ctx, buddy.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Belém", got.Items[0].Name)
}

func TestDeleteTripCascades(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st, "a@example.com")
	trip := createTestTrip(t, st, user.ID)
	buddy, _, err := st.EnableBuddy(ctx, trip.ID)
	require.NoError(t, err)
	_, err = st.SaveContext(ctx, buddy.ID, &model.TravelContext{Interests: []string{"food"}})
	require.NoError(t, err)

	_, err = st.DeleteTrip(ctx, trip.ID)
	require.NoError(t, err)

	gone, err := st.GetBuddyByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	tc, err := st.GetContext(ctx, buddy.ID)
	require.NoError(t, err)
	assert.Nil(t, tc)
}
