package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numtrack/numtrack/internal/models"
)

func TestSweepFlipsDueNumbers(t *testing.T) {
	numbers := newFakeNumberStore()
	activities := newFakeActivityStore()
	publisher := &fakePublisher{}
	sweeper := NewSweeper(numbers, activities, publisher, nil, nopLogger{}, time.Second)
	ctx := context.Background()

	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	laterToday := time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)

	due := &models.Number{Mobile: "9000000001", Status: models.StatusNonRTS, RTSDate: &yesterday}
	dueToday := &models.Number{Mobile: "9000000002", Status: models.StatusNonRTS, RTSDate: &laterToday}
	future := &models.Number{Mobile: "9000000003", Status: models.StatusNonRTS, RTSDate: &tomorrow}
	unscheduled := &models.Number{Mobile: "9000000004", Status: models.StatusNonRTS}
	alreadyRTS := &models.Number{Mobile: "9000000005", Status: models.StatusRTS}

	for _, n := range []*models.Number{due, dueToday, future, unscheduled, alreadyRTS} {
		require.NoError(t, numbers.Create(ctx, n))
	}

	flipped, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, flipped, "past and same-day schedules both flip")

	check := func(n *models.Number, wantStatus models.NumberStatus, wantDate bool) {
		t.Helper()
		stored, err := numbers.FindByID(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, wantStatus, stored.Status, "mobile %s", n.Mobile)
		if wantDate {
			assert.NotNil(t, stored.RTSDate)
		} else {
			assert.Nil(t, stored.RTSDate)
		}
	}

	check(due, models.StatusRTS, false)
	check(dueToday, models.StatusRTS, false)
	check(future, models.StatusNonRTS, true)
	check(unscheduled, models.StatusNonRTS, false)
	check(alreadyRTS, models.StatusRTS, false)

	entries := activities.all()
	require.Len(t, entries, 2, "one activity per transition")
	for _, entry := range entries {
		assert.Equal(t, "system", entry.Actor)
		assert.Contains(t, entry.Description, "90000000")
	}

	assert.Len(t, publisher.published(), 2)
}

func TestSweepIsIdempotent(t *testing.T) {
	numbers := newFakeNumberStore()
	activities := newFakeActivityStore()
	sweeper := NewSweeper(numbers, activities, NoopPublisher{}, nil, nopLogger{}, time.Second)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	number := &models.Number{Mobile: "9111111111", Status: models.StatusNonRTS, RTSDate: &past}
	require.NoError(t, numbers.Create(ctx, number))

	flipped, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	flipped, err = sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, flipped, "second sweep finds nothing due")

	assert.Len(t, activities.all(), 1)
}

func TestSweepWithNothingDueLeavesNoTrace(t *testing.T) {
	numbers := newFakeNumberStore()
	activities := newFakeActivityStore()
	sweeper := NewSweeper(numbers, activities, NoopPublisher{}, nil, nopLogger{}, time.Second)
	ctx := context.Background()

	tomorrow := time.Now().Add(24 * time.Hour)
	number := &models.Number{Mobile: "9222222222", Status: models.StatusNonRTS, RTSDate: &tomorrow}
	require.NoError(t, numbers.Create(ctx, number))

	flipped, err := sweeper.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, flipped)
	assert.Empty(t, activities.all())
}

func TestStartStopsOnContextCancel(t *testing.T) {
	numbers := newFakeNumberStore()
	sweeper := NewSweeper(numbers, newFakeActivityStore(), NoopPublisher{}, nil, nopLogger{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
