package middleware

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"firstlook/internal/models"
)

const (
	userIDKey  = models.UserContextKey
	isAdminKey = models.AdminContextKey
	adminClaim = "admin"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// ProfileEnsurer creates the user profile on first sign-in.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID, email, displayName string) (*models.UserProfile, error)
}

// NewFirebaseAuthClient builds the Firebase Auth client for projectID.
func NewFirebaseAuthClient(ctx context.Context, projectID, credentialsFile string) (*auth.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

// FirebaseAuth requires a valid "Authorization: Bearer <idToken>" header and
// puts the UID and admin flag into both the gin and the request context.
// profiles may be nil.
func FirebaseAuth(verifier TokenVerifier, profiles ProfileEnsurer, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("FirebaseAuth")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			log.Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.Warn("Token verification failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			abort(c, http.StatusUnauthorized, "invalid uid in token")
			return
		}

		isAdmin, _ := token.Claims[adminClaim].(bool)
		if profiles != nil {
			email, _ := token.Claims["email"].(string)
			name, _ := token.Claims["name"].(string)
			if _, err := profiles.EnsureProfile(c.Request.Context(), uid, email, name); err != nil {
				log.Error("Failed to ensure user profile", zap.String("userID", uid), zap.Error(err))
				abort(c, http.StatusInternalServerError, "failed to load user profile")
				return
			}
		}

		c.Set(string(userIDKey), uid)
		c.Set(string(isAdminKey), isAdmin)
		ctx := context.WithValue(c.Request.Context(), userIDKey, uid)
		ctx = context.WithValue(ctx, isAdminKey, isAdmin)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin must run after FirebaseAuth.
func RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RequireAdmin")
	return func(c *gin.Context) {
		if !models.IsAdminFromContext(c.Request.Context()) {
			userID, _ := models.GetUserIDFromContext(c.Request.Context())
			log.Warn("Admin route denied", zap.String("userID", userID), zap.String("path", c.Request.URL.Path))
			abort(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
