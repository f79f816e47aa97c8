package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/pkg/logger"
)

type fakeBuddyStore struct {
	buddies  map[string]*model.BorderBuddy // by trip ID
	contexts map[string]*model.TravelContext
	places   map[string]*model.PlaceSet
}

func newFakeBuddyStore() *fakeBuddyStore {
	return &fakeBuddyStore{
		buddies:  map[string]*model.BorderBuddy{},
		contexts: map[string]*model.TravelContext{},
		places:   map[string]*model.PlaceSet{},
	}
}

func (f *fakeBuddyStore) EnableBuddy(_ context.Context, tripID string) (*model.BorderBuddy, bool, error) {
	if b, ok := f.buddies[tripID]; ok {
		return b, false, nil
	}
	b := &model.BorderBuddy{ID: "buddy-" + tripID, TripID: tripID, CreatedAt: time.Now()}
	f.buddies[tripID] = b
	return b, true, nil
}

func (f *fakeBuddyStore) GetBuddyByTrip(_ context.Context, tripID string) (*model.BorderBuddy, error) {
	return f.buddies[tripID], nil
}

func (f *fakeBuddyStore) GetContext(_ context.Context, buddyID string) (*model.TravelContext, error) {
	return f.contexts[buddyID], nil
}

func (f *fakeBuddyStore) SaveContext(_ context.Context, buddyID string, tc *model.TravelContext) (*model.TravelContext, error) {
	f.contexts[buddyID] = tc
	return tc, nil
}

func (f *fakeBuddyStore) GetPlaces(_ context.Context, buddyID string) (*model.PlaceSet, error) {
	return f.places[buddyID], nil
}

func (f *fakeBuddyStore) SavePlaces(_ context.Context, buddyID string, items []model.PlaceItem) (*model.PlaceSet, error) {
	now := time.Now()
	set := &model.PlaceSet{GeneratedAt: &now, Items: items}
	f.places[buddyID] = set
	return set, nil
}

func newBuddyFixture(assistant *fakeAssistant) (*BorderBuddyService, *fakeBuddyStore) {
	trips := &fakeTrips{trips: map[string]*model.Trip{
		"trip-1": {ID: "trip-1", UserID: "user-1", Title: "Lisbon", DestinationCountry: "Portugal"},
		"trip-2": {ID: "trip-2", UserID: "user-2", Title: "Oslo"},
	}}
	store := newFakeBuddyStore()
	return NewBorderBuddyService(trips, store, assistant, logger.NewNop()), store
}

func TestEnableIsIdempotent(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})

	first, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.NotNil(t, first.BorderBuddy)

	second, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.BorderBuddy.ID, second.BorderBuddy.ID)
}

func TestEnableOwnership(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})

	_, err := svc.Enable(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Enable(context.Background(), "trip-2", "user-1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetContextDefaultsWhenUnset(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	tc, err := svc.GetContext(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, tc.Interests)
	assert.NotNil(t, tc.Interests)
	assert.Nil(t, tc.Budget)
}

func TestGetContextRequiresEnable(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})

	_, err := svc.GetContext(context.Background(), "trip-1", "user-1")
	assert.ErrorIs(t, err, ErrNotEnabled)
}

func TestSaveContextRoundTrip(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	budget := "mid-range"
	saved, err := svc.SaveContext(context.Background(), "trip-1", "user-1", &model.TravelContext{
		Interests: []string{"food", "hiking"},
		Budget:    &budget,
	})
	require.NoError(t, err)

	got, err := svc.GetContext(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Interests, got.Interests)
	require.NotNil(t, got.Budget)
	assert.Equal(t, "mid-range", *got.Budget)
}

func TestGeneratePlacesFromAssistant(t *testing.T) {
	assistant := &fakeAssistant{
		answer: `Here you go:
[{"name":"Alfama","description":"Historic hillside district","tags":["walk","views"]},
 {"name":"Time Out Market","description":"Food hall by the river","tags":["food"]}]`,
		answerOK: true,
	}
	svc, _ := newBuddyFixture(assistant)
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	set, err := svc.GeneratePlaces(context.Background(), "trip-1", "user-1", "old town")
	require.NoError(t, err)
	require.NotNil(t, set.GeneratedAt)
	require.Len(t, set.Items, 2)
	assert.Equal(t, "Alfama", set.Items[0].Name)

	// The prompt carries the trip destination and the seed hint.
	require.NotEmpty(t, assistant.lastHistory)
	assert.Contains(t, assistant.lastHistory[0].Content, "Portugal")
	assert.Contains(t, assistant.lastHistory[len(assistant.lastHistory)-1].Content, "old town")
}

func TestGeneratePlacesFallsBackWhenProviderFails(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{answerOK: false})
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	set, err := svc.GeneratePlaces(context.Background(), "trip-1", "user-1", "")
	require.NoError(t, err)
	require.Len(t, set.Items, 2)
	assert.Equal(t, "Central Park", set.Items[0].Name)
}

func TestGeneratePlacesFallsBackOnGarbageOutput(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{answer: "sorry, I can't help with that", answerOK: true})
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	set, err := svc.GeneratePlaces(context.Background(), "trip-1", "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Central Park", set.Items[0].Name)
}

func TestGetPlacesEmptyBeforeGeneration(t *testing.T) {
	svc, _ := newBuddyFixture(&fakeAssistant{})
	_, err := svc.Enable(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)

	set, err := svc.GetPlaces(context.Background(), "trip-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, set.GeneratedAt)
	assert.Empty(t, set.Items)
}

func TestParsePlaceItems(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		items := parsePlaceItems("```json\n[{\"name\":\"A\",\"description\":\"d\"}]\n```")
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0].Name)
	})

	t.Run("drops unnamed entries", func(t *testing.T) {
		items := parsePlaceItems(`[{"name":"","description":"d"},{"name":"B"}]`)
		require.Len(t, items, 1)
		assert.Equal(t, "B", items[0].Name)
	})

	t.Run("no array", func(t *testing.T) {
		assert.Nil(t, parsePlaceItems("no suggestions today"))
	})
}
