package repositories

import (
	"context"
	"errors"
	"testing"

	"pinboard/models"
	"pinboard/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Name: "Tester"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPin(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Pin {
	t.Helper()
	pin := &models.Pin{Title: title, Image: "/uploads/x.png", ExternalLink: "https://example.com", AuthorID: author.ID}
	require.NoError(t, db.Create(pin).Error)
	return pin
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com", Password: "h", Name: "Ann"}))
	err := repo.Create(ctx, &models.User{Email: "a@x.com", Password: "h", Name: "Other"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.Name)

	_, err = repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPinRepositoryFindAllNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPinRepository(db)
	ctx := context.Background()

	ann := seedUser(t, db, "ann@x.com")
	for _, title := range []string{"first", "second", "third"} {
		seedPin(t, db, ann, title)
	}

	pins, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, pins, 3)
	for i := 1; i < len(pins); i++ {
		assert.Greater(t, pins[i-1].ID, pins[i].ID)
	}
	assert.Equal(t, "third", pins[0].Title)
	assert.Equal(t, "Tester", pins[0].Author.Name)
	assert.Empty(t, pins[0].Author.Email, "author preload is limited to id and name")
}

func TestPinRepositoryDeleteRemovesDependents(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	pins := NewPinRepository(db)
	likes := NewLikeRepository(db)
	boards := NewBoardRepository(db)

	ann := seedUser(t, db, "ann@x.com")
	pin := seedPin(t, db, ann, "doomed")
	keep := seedPin(t, db, ann, "kept")

	require.NoError(t, db.Create(&models.Comment{Text: "nice", PinID: pin.ID, AuthorID: ann.ID}).Error)
	_, err := likes.Toggle(ctx, ann.ID, pin.ID)
	require.NoError(t, err)
	board := &models.Board{Name: "mine", OwnerID: ann.ID}
	require.NoError(t, boards.Create(ctx, board))
	require.NoError(t, boards.AddPin(ctx, board, pin))
	require.NoError(t, boards.AddPin(ctx, board, keep))

	require.NoError(t, pins.Delete(ctx, pin))

	_, err = pins.FindByID(ctx, pin.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var n int64
	db.Unscoped().Model(&models.Comment{}).Where("pin_id = ?", pin.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Like{}).Where("pin_id = ?", pin.ID).Count(&n)
	assert.Zero(t, n)

	reloaded, err := boards.FindByID(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Pins, 1)
	assert.Equal(t, keep.ID, reloaded.Pins[0].ID)
}

func TestLikeRepositoryToggle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewLikeRepository(db)

	ann := seedUser(t, db, "ann@x.com")
	bob := seedUser(t, db, "bob@x.com")
	pin := seedPin(t, db, ann, "pin")

	liked, err := repo.Toggle(ctx, bob.ID, pin.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.Toggle(ctx, ann.ID, pin.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := repo.CountByPin(ctx, pin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	liked, err = repo.Toggle(ctx, bob.ID, pin.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = repo.CountByPin(ctx, pin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLikeUniqueIndex(t *testing.T) {
	db := testutil.NewDB(t)
	ann := seedUser(t, db, "ann@x.com")
	pin := seedPin(t, db, ann, "pin")

	require.NoError(t, db.Create(&models.Like{UserID: ann.ID, PinID: pin.ID}).Error)
	err := db.Create(&models.Like{UserID: ann.ID, PinID: pin.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestBoardRepositoryAddPinIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBoardRepository(db)

	ann := seedUser(t, db, "ann@x.com")
	pin := seedPin(t, db, ann, "pin")
	board := &models.Board{Name: "travel", OwnerID: ann.ID}
	require.NoError(t, repo.Create(ctx, board))

	require.NoError(t, repo.AddPin(ctx, board, pin))
	require.NoError(t, repo.AddPin(ctx, board, pin))

	reloaded, err := repo.FindByID(ctx, board.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Pins, 1)

	owned, err := repo.FindByOwner(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "travel", owned[0].Name)
}

func TestBoardRepositoryCountsPinLikes(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBoardRepository(db)
	likes := NewLikeRepository(db)

	ann := seedUser(t, db, "ann@x.com")
	bob := seedUser(t, db, "bob@x.com")
	liked := seedPin(t, db, ann, "liked")
	quiet := seedPin(t, db, ann, "quiet")
	board := &models.Board{Name: "travel", OwnerID: ann.ID}
	require.NoError(t, repo.Create(ctx, board))
	require.NoError(t, repo.AddPin(ctx, board, liked))
	require.NoError(t, repo.AddPin(ctx, board, quiet))

	for _, user := range []*models.User{ann, bob} {
		_, err := likes.Toggle(ctx, user.ID, liked.ID)
		require.NoError(t, err)
	}

	reloaded, err := repo.FindByID(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Pins, 2)
	assert.Equal(t, quiet.ID, reloaded.Pins[0].ID)
	assert.Equal(t, int64(0), reloaded.Pins[0].LikeCount)
	assert.Equal(t, int64(2), reloaded.Pins[1].LikeCount)

	owned, err := repo.FindByOwner(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Len(t, owned[0].Pins, 2)
	assert.Equal(t, int64(2), owned[0].Pins[1].LikeCount)
}
