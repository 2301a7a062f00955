package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pinboard/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
)

// Request attribute keys set by AuthFilter.
const (
	AttrUserID = "user_id"
	AttrEmail  = "email"
	AttrName   = "name"
)

var (
	ErrMissingToken   = errors.New("no token provided")
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token is either expired or not active yet")
	ErrInvalidToken   = errors.New("token is not valid")
)

var (
	mu sync.RWMutex
	// mySigningKey is replaced from configuration at startup.
	mySigningKey = []byte("mySigningKey")
	tokenTTL     = time.Hour
	issuer       = "pinboard"
)

// Configure sets the signing key, lifetime and issuer of newly issued tokens.
// A zero ttl issues tokens without an expiry claim.
func Configure(key []byte, ttl time.Duration, iss string) {
	mu.Lock()
	defer mu.Unlock()
	if len(key) > 0 {
		mySigningKey = key
	}
	if ttl >= 0 {
		tokenTTL = ttl
	}
	if iss != "" {
		issuer = iss
	}
}

func signingKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return mySigningKey
}

// CustomClaims is the identity carried by a bearer token.
type CustomClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token for the given user.
func GenerateToken(user *models.User) (string, error) {
	mu.RLock()
	key, ttl, iss := mySigningKey, tokenTTL, issuer
	mu.RUnlock()

	now := time.Now()
	claims := &CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    iss,
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenString, nil
}

// ParseAndValidateToken : used for gRPC and the HTTP filter
func ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	key := signingKey()
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrMalformedToken
			case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
				return nil, ErrExpiredToken
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return parts[1], nil
}

// AuthFilter creates a go-restful FilterFunction for bearer authentication.
// A missing token is 401; a token that fails verification is 403.
func AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		tokenString, err := BearerToken(req.HeaderParameter("Authorization"))
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: No token provided"}, restful.MIME_JSON)
			return
		}

		claims, err := ParseAndValidateToken(tokenString)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden: " + err.Error()}, restful.MIME_JSON)
			return
		}

		// Store user information in request attributes for the route function
		req.SetAttribute(AttrUserID, claims.UserID)
		req.SetAttribute(AttrEmail, claims.Email)
		req.SetAttribute(AttrName, claims.Name)

		chain.ProcessFilter(req, resp)
	}
}

// UserID returns the caller identity stored by AuthFilter.
func UserID(req *restful.Request) (uint, bool) {
	userID, ok := req.Attribute(AttrUserID).(uint)
	return userID, ok && userID != 0
}
