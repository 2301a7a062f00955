package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pinboard/auth"
	"pinboard/config"
	"pinboard/controllers"
	"pinboard/repositories"
	"pinboard/services"
	"pinboard/storage"
	"pinboard/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	auth.Configure([]byte("client-test"), time.Hour, "")

	db := testutil.NewDB(t)
	uploads := config.UploadsConfig{
		Backend:      "disk",
		Dir:          t.TempDir(),
		URLPrefix:    "/uploads/",
		MaxBytes:     1 << 20,
		AllowedTypes: []string{"image/png"},
	}
	store, err := storage.NewDiskStore(uploads.Dir, uploads.URLPrefix)
	require.NoError(t, err)
	pinRepo := repositories.NewPinRepository(db)

	container := controllers.NewContainer(controllers.Deps{
		Users:    services.NewUserService(repositories.NewUserRepository(db), bcrypt.MinCost),
		Pins:     services.NewPinService(pinRepo, store, services.UploadPolicy{MaxBytes: uploads.MaxBytes, AllowedTypes: uploads.AllowedTypes}, zap.NewNop()),
		Comments: services.NewCommentService(repositories.NewCommentRepository(db), pinRepo),
		Likes:    services.NewLikeService(repositories.NewLikeRepository(db), pinRepo),
		Boards:   services.NewBoardService(repositories.NewBoardRepository(db), pinRepo),
		Uploads:  uploads,
		Logger:   zap.NewNop(),
	})
	srv := httptest.NewServer(container)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()
	c := New(srv.URL, "")

	user, err := c.Signup(ctx, "ann@x.com", "password1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	token, err := c.Signin(ctx, "ann@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, token, c.Token)

	pin, err := c.CreatePin(ctx, "sunset", "https://example.com/sunset", "sunset.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, user.ID, pin.AuthorID)

	feed, err := c.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	title := "dusk"
	updated, err := c.UpdatePin(ctx, pin.ID, PinUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "dusk", updated.Title)

	_, err = c.Comment(ctx, pin.ID, "pretty")
	require.NoError(t, err)
	comments, err := c.Comments(ctx, pin.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	like, err := c.Like(ctx, pin.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)

	detail, err := c.Pin(ctx, pin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Likes)
	assert.Len(t, detail.Comments, 1)

	board, err := c.CreateBoard(ctx, "Skies")
	require.NoError(t, err)
	board, err = c.AddPinToBoard(ctx, board.ID, pin.ID)
	require.NoError(t, err)
	assert.Len(t, board.Pins, 1)

	boards, err := c.Boards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 1)

	got, err := c.Board(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skies", got.Name)

	require.NoError(t, c.DeletePin(ctx, pin.ID))
	_, err = c.Pin(ctx, pin.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClientErrors(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()
	c := New(srv.URL, "")

	_, err := c.Signup(ctx, "bad", "short", "A")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Errors, "email")
	assert.Contains(t, apiErr.Error(), "400")

	_, err = c.Boards(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNewDefaults(t *testing.T) {
	c := New("", "tok")
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, "tok", c.Token)

	assert.Equal(t, "http://api.example.com", New("http://api.example.com/", "").BaseURL)
}
