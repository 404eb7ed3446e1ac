package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/database"
	"github.com/numtrack/numtrack/pkg/logger"
	"github.com/numtrack/numtrack/pkg/testutil"
)

// Exercises the real collection against a throwaway MongoDB container.
func TestNumberRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testutil.StartMongoContainer(ctx)
	require.NoError(t, err)
	defer container.Close(ctx)

	db, err := database.NewMongoDB(container.URI, container.DatabaseName, 10*time.Second)
	require.NoError(t, err)
	defer db.Close()

	repo := NewNumberRepository(db.Database(), logger.Default())
	require.NoError(t, repo.CreateIndexes(ctx))

	t.Run("create and find", func(t *testing.T) {
		number := &models.Number{
			Serial:   1,
			Mobile:   "9876543210",
			Sum:      9,
			Status:   models.StatusNonRTS,
			Category: models.CategoryPrepaid,
		}
		require.NoError(t, repo.Create(ctx, number))
		assert.False(t, number.ID.IsZero())

		found, err := repo.FindByMobile(ctx, "9876543210")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, number.ID, found.ID)
		assert.Equal(t, 9, found.Sum)

		missing, err := repo.FindByMobile(ctx, "0000000000")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("unique mobile index", func(t *testing.T) {
		dup := &models.Number{Serial: 99, Mobile: "9876543210", Status: models.StatusNonRTS}
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("next serial", func(t *testing.T) {
		serial, err := repo.NextSerial(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, serial)
	})

	t.Run("update fields bumps updated_at", func(t *testing.T) {
		found, err := repo.FindByMobile(ctx, "9876543210")
		require.NoError(t, err)
		before := found.UpdatedAt

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, repo.UpdateFields(ctx, found.ID, bson.M{"status": models.StatusRTS}))

		after, err := repo.FindByID(ctx, found.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRTS, after.Status)
		assert.True(t, after.UpdatedAt.After(before))
	})

	t.Run("find scheduled", func(t *testing.T) {
		due := time.Now().Add(-time.Hour)
		scheduled := &models.Number{
			Serial: 2, Mobile: "9000000001", Status: models.StatusNonRTS, RTSDate: &due,
		}
		unscheduled := &models.Number{
			Serial: 3, Mobile: "9000000002", Status: models.StatusNonRTS,
		}
		require.NoError(t, repo.Create(ctx, scheduled))
		require.NoError(t, repo.Create(ctx, unscheduled))

		got, err := repo.FindScheduled(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "9000000001", got[0].Mobile)
	})

	t.Run("counts", func(t *testing.T) {
		rts, err := repo.CountByStatus(ctx, models.StatusRTS)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rts)

		nonRTS, err := repo.CountByStatus(ctx, models.StatusNonRTS)
		require.NoError(t, err)
		assert.Equal(t, int64(2), nonRTS)

		byCategory, err := repo.CountByCategory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), byCategory[string(models.CategoryPrepaid)])
	})

	t.Run("update unknown id", func(t *testing.T) {
		err := repo.UpdateFields(ctx, primitive.NewObjectID(), bson.M{"status": models.StatusRTS})
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}
