package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/doSwayamCode/chitrakaar/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMongo(t *testing.T) *storage.MongoRepo {
	t.Helper()
	ctx := context.Background()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { mongoContainer.Terminate(ctx) })

	uri, err := mongoContainer.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	mongoRepo, err := storage.NewMongoRepo(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { mongoRepo.Close(ctx) })
	return mongoRepo
}

func TestMongoRepo(t *testing.T) {
	mongoRepo := startMongo(t)
	ctx := context.Background()

	t.Run("gallery", func(t *testing.T) {
		require.NoError(t, mongoRepo.SaveDrawing(ctx, domain.Drawing{Word: "Kite", DrawerName: "asha", Strokes: strokes(1500)}))
		require.NoError(t, mongoRepo.SaveDrawing(ctx, domain.Drawing{
			Word: "Lotus", DrawerName: "ravi", Strokes: strokes(10), CreatedAt: time.Now().Add(time.Minute),
		}))
		require.NoError(t, mongoRepo.SaveDrawing(ctx, domain.Drawing{
			Word: "Paan", DrawerName: "old", Strokes: strokes(10), CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
		}))

		drawings, err := mongoRepo.RecentDrawings(ctx, 10)
		require.NoError(t, err)
		require.Len(t, drawings, 2)
		assert.Equal(t, "Lotus", drawings[0].Word)
		assert.Equal(t, "Kite", drawings[1].Word)
		assert.Len(t, drawings[1].Strokes, storage.MAX_SAVED_STROKES)
	})

	t.Run("leaderboard", func(t *testing.T) {
		for _, e := range []domain.ScoreEntry{
			{DisplayName: "meera", Score: 700, Mode: "food"},
			{DisplayName: "kabir", Score: 50000},
		} {
			require.NoError(t, mongoRepo.SaveGuestScore(ctx, e))
		}

		top, err := mongoRepo.TopScores(ctx, 20)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, domain.ScoreEntry{DisplayName: "kabir", Score: storage.MAX_GUEST_SCORE, Mode: "classic", CreatedAt: top[0].CreatedAt}, top[0])
		assert.Equal(t, "meera", top[1].DisplayName)
		assert.Equal(t, "food", top[1].Mode)
	})
}
