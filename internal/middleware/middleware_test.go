package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"firstlook/internal/models"
)

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	var tok *auth.Token
	if v := args.Get(0); v != nil {
		tok = v.(*auth.Token)
	}
	return tok, args.Error(1)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) EnsureProfile(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, email, displayName)
	var p *models.UserProfile
	if v := args.Get(0); v != nil {
		p = v.(*models.UserProfile)
	}
	return p, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(verifier TokenVerifier, profiles ProfileEnsurer) *gin.Engine {
	logger := zap.NewNop()
	r := gin.New()
	authed := r.Group("/", FirebaseAuth(verifier, profiles, logger))
	authed.GET("/me", func(c *gin.Context) {
		uid, _ := models.GetUserIDFromContext(c.Request.Context())
		c.String(http.StatusOK, uid)
	})
	authed.GET("/admin", RequireAdmin(logger), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuth(t *testing.T) {
	t.Run("missing and malformed headers", func(t *testing.T) {
		r := newRouter(new(mockVerifier), nil)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
		w := do(r, "/me", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"malformed authorization header"}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		v := new(mockVerifier)
		v.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("expired")).Once()
		assert.Equal(t, http.StatusUnauthorized, do(newRouter(v, nil), "/me", "Bearer bad").Code)
		v.AssertExpectations(t)
	})

	t.Run("valid token ensures the profile", func(t *testing.T) {
		v := new(mockVerifier)
		p := new(mockProfiles)
		v.On("VerifyIDToken", mock.Anything, "good").Return(&auth.Token{
			UID:    "uid-1",
			Claims: map[string]interface{}{"email": "reader@example.com", "name": "Reader"},
		}, nil).Once()
		p.On("EnsureProfile", mock.Anything, "uid-1", "reader@example.com", "Reader").Return(&models.UserProfile{UserID: "uid-1"}, nil).Once()

		w := do(newRouter(v, p), "/me", "Bearer good")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "uid-1", w.Body.String())
		p.AssertExpectations(t)
	})

	t.Run("profile failure", func(t *testing.T) {
		v := new(mockVerifier)
		p := new(mockProfiles)
		v.On("VerifyIDToken", mock.Anything, "good").Return(&auth.Token{UID: "uid-1"}, nil).Once()
		p.On("EnsureProfile", mock.Anything, "uid-1", "", "").Return(nil, errors.New("unavailable")).Once()

		assert.Equal(t, http.StatusInternalServerError, do(newRouter(v, p), "/me", "Bearer good").Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	v := new(mockVerifier)
	v.On("VerifyIDToken", mock.Anything, "reader").Return(&auth.Token{UID: "u1"}, nil)
	v.On("VerifyIDToken", mock.Anything, "admin").Return(&auth.Token{UID: "a1", Claims: map[string]interface{}{"admin": true}}, nil)
	r := newRouter(v, nil)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer reader").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer admin").Code)
}

func TestGinZapLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := do(r, "/health", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, 0, logs.Len())

	req := httptest.NewRequest(http.MethodGet, "/missing?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Client error", entry.Message)
	assert.Equal(t, "/missing?x=1", entry.ContextMap()["path"])
	assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
}

func TestUserRateLimiter(t *testing.T) {
	v := new(mockVerifier)
	v.On("VerifyIDToken", mock.Anything, "u1").Return(&auth.Token{UID: "u1"}, nil)
	v.On("VerifyIDToken", mock.Anything, "u2").Return(&auth.Token{UID: "u2"}, nil)

	r := gin.New()
	limiter := UserRateLimiter("unlock", NewRateLimitStore(nil, time.Minute, 2), zap.NewNop())
	r.POST("/unlock", FirebaseAuth(v, nil, zap.NewNop()), limiter, func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/unlock", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post("u1"))
	assert.Equal(t, http.StatusOK, post("u1"))
	assert.Equal(t, http.StatusTooManyRequests, post("u1"))
	assert.Equal(t, http.StatusOK, post("u2"), "limits are per user")
}
