package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pinboard/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testUser() *models.User {
	return &models.User{Model: gorm.Model{ID: 7}, Email: "ann@x.com", Name: "Ann"}
}

func TestGenerateToken(t *testing.T) {
	Configure([]byte("test-secret"), time.Hour, "pinboard-test")

	token, err := GenerateToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseAndValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, "pinboard-test", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateTokenWithoutExpiry(t *testing.T) {
	Configure([]byte("test-secret"), 0, "")
	defer Configure(nil, time.Hour, "")

	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := ParseAndValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestParseAndValidateTokenFailures(t *testing.T) {
	Configure([]byte("test-secret"), time.Hour, "")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{UserID: 1})
	foreignString, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = ParseAndValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = ParseAndValidateToken(expiredString)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = ParseAndValidateToken(foreignString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = BearerToken("bearer  abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestAuthFilter(t *testing.T) {
	Configure([]byte("test-secret"), time.Hour, "")

	container := restful.NewContainer()
	ws := new(restful.WebService)
	ws.Route(ws.GET("/protected").Filter(AuthFilter()).To(func(req *restful.Request, resp *restful.Response) {
		userID, ok := UserID(req)
		assert.True(t, ok)
		assert.Equal(t, uint(7), userID)
		assert.Equal(t, "Ann", req.Attribute(AttrName))
		_, _ = resp.Write([]byte("protected"))
	}))
	container.Add(ws)

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		container.ServeHTTP(w, req)
		return w
	}

	t.Run("No token", func(t *testing.T) {
		w := serve("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "No token provided")
	})

	t.Run("Invalid token", func(t *testing.T) {
		w := serve("Bearer garbage")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := GenerateToken(testUser())
		require.NoError(t, err)

		w := serve("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "protected", w.Body.String())
	})
}
