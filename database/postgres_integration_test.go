//go:build integration
// +build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"pinboard/config"
	"pinboard/database"
	"pinboard/models"
	"pinboard/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container and returns its connection string.
func setupPostgres(t *testing.T) string {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("pinboard"),
		postgres.WithUsername("pinboard"),
		postgres.WithPassword("pinboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return connStr
}

func TestPostgresIntegration(t *testing.T) {
	db, err := database.InitDB(config.DatabaseConfig{
		Driver:       "postgres",
		URL:          setupPostgres(t),
		MaxOpenConns: 5,
	}, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)
	ctx := context.Background()

	users := repositories.NewUserRepository(db)
	pins := repositories.NewPinRepository(db)
	likes := repositories.NewLikeRepository(db)
	boards := repositories.NewBoardRepository(db)

	ann := &models.User{Email: "ann@x.com", Password: "hash", Name: "Ann"}
	require.NoError(t, users.Create(ctx, ann))
	err = users.Create(ctx, &models.User{Email: "ann@x.com", Password: "hash", Name: "Again"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	pin := &models.Pin{Title: "pg", Image: "/uploads/pg.png", ImageKey: "pg.png", ExternalLink: "https://example.com", AuthorID: ann.ID}
	require.NoError(t, pins.Create(ctx, pin))

	t.Run("Like uniqueness", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Like{UserID: ann.ID, PinID: pin.ID}).Error)
		err := db.Create(&models.Like{UserID: ann.ID, PinID: pin.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

		liked, err := likes.Toggle(ctx, ann.ID, pin.ID)
		require.NoError(t, err)
		assert.False(t, liked)
		count, err := likes.CountByPin(ctx, pin.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Delete cascades by hand", func(t *testing.T) {
		board := &models.Board{Name: "pg board", OwnerID: ann.ID}
		require.NoError(t, boards.Create(ctx, board))
		require.NoError(t, boards.AddPin(ctx, board, pin))
		_, err := likes.Toggle(ctx, ann.ID, pin.ID)
		require.NoError(t, err)

		require.NoError(t, pins.Delete(ctx, pin))

		reloaded, err := boards.FindByID(ctx, board.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.Pins)
		_, err = pins.FindByID(ctx, pin.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
