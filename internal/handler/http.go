package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"firstlook/internal/analytics"
	"firstlook/internal/models"
	"firstlook/internal/service"
)

// LibraryAPI is the reader-facing part of the service layer.
type LibraryAPI interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdatePreferences(ctx context.Context, userID string, subgenres []models.Subgenre) (*models.Preferences, error)
	ListStories(ctx context.Context, filter models.StoryFilter) (*service.StoryPage, error)
	GetStory(ctx context.Context, userID, storyID string) (*service.StoryView, error)
	GetSeries(ctx context.Context, userID, seriesID string) (*service.SeriesView, error)
	UnlockStory(ctx context.Context, userID, storyID string) (*service.UnlockResult, error)
	ToggleFavorite(ctx context.Context, userID, storyID string) (bool, error)
	MarkRead(ctx context.Context, userID, storyID string) error
}

type CheckoutAPI interface {
	ListPackages() []models.CoinPackage
	CreateCheckout(ctx context.Context, userID, packageID string) (*models.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.ResyncResult, error)
}

type BalanceAPI interface {
	Resync(ctx context.Context, userID string) (*models.ResyncResult, error)
}

type AnalyticsAPI interface {
	Metrics(ctx context.Context) (*analytics.Metrics, error)
	Duplicates(ctx context.Context) ([]analytics.DuplicateTitle, error)
}

type MaintenanceAPI interface {
	StandardizeGenres(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error)
	StandardizePrices(ctx context.Context, prices map[string]int, dryRun bool) (*models.MaintenanceReport, error)
	RemoveOrphanedTags(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error)
	CleanupDuplicates(ctx context.Context, dryRun bool) (*models.MaintenanceReport, error)
}

type GenerationAPI interface {
	GenerateNext(ctx context.Context) (*models.GenerationResult, error)
	GenerateByTitle(ctx context.Context, title string) (*models.GenerationResult, error)
	EnqueueGeneration(ctx context.Context, requestedBy string, count int) ([]string, error)
}

// Deps bundles the services behind the HTTP API.
type Deps struct {
	Library     LibraryAPI
	Checkout    CheckoutAPI
	Balance     BalanceAPI
	Analytics   AnalyticsAPI
	Maintenance MaintenanceAPI
	Generation  GenerationAPI
}

// Middlewares are the route guards built in main.
type Middlewares struct {
	Auth            gin.HandlerFunc
	Admin           gin.HandlerFunc
	UnlockLimiter   gin.HandlerFunc
	CheckoutLimiter gin.HandlerFunc
}

// APIHandler serves /api/v1.
type APIHandler struct {
	deps   Deps
	logger *zap.Logger
}

func NewAPIHandler(deps Deps, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		deps:   deps,
		logger: logger.Named("APIHandler"),
	}
}

// RegisterRoutes mounts every route on r. Nil limiters are skipped.
func (h *APIHandler) RegisterRoutes(r gin.IRouter, mw Middlewares) {
	api := r.Group("/api/v1")

	api.GET("/stories", h.listStories)
	api.GET("/packages", h.listPackages)
	api.POST("/webhooks/stripe", h.stripeWebhook)

	authed := api.Group("", mw.Auth)
	{
		authed.GET("/me", h.getProfile)
		authed.PUT("/me/preferences", h.updatePreferences)
		authed.POST("/me/resync", h.resyncMe)

		authed.GET("/stories/:id", h.getStory)
		authed.POST("/stories/:id/unlock", chain(mw.UnlockLimiter, h.unlockStory)...)
		authed.POST("/stories/:id/favorite", h.toggleFavorite)
		authed.POST("/stories/:id/read", h.markRead)
		authed.GET("/series/:id", h.getSeries)

		authed.POST("/checkout", chain(mw.CheckoutLimiter, h.createCheckout)...)
	}

	admin := authed.Group("/admin", mw.Admin)
	{
		admin.GET("/analytics", h.analytics)
		admin.GET("/duplicates", h.duplicates)

		admin.POST("/maintenance/genres", h.standardizeGenres)
		admin.POST("/maintenance/prices", h.standardizePrices)
		admin.POST("/maintenance/tags", h.removeOrphanedTags)
		admin.POST("/maintenance/duplicates", h.cleanupDuplicates)

		admin.POST("/generate", h.generate)
		admin.POST("/generate/queue", h.enqueueGeneration)

		admin.POST("/users/:id/resync", h.resyncUser)
	}
}

// HealthCheck answers GET/HEAD /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func chain(limiter gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if limiter == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limiter, h}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// userID returns the authenticated UID; the auth middleware guarantees it.
func userID(c *gin.Context) (string, bool) {
	uid, ok := models.GetUserIDFromContext(c.Request.Context())
	if !ok {
		writeError(c, models.ErrUnauthorized)
	}
	return uid, ok
}
