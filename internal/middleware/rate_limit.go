package middleware

import (
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"firstlook/internal/models"
)

// NewRateLimitStore keeps counters in Redis when a client is given, in
// process memory otherwise.
func NewRateLimitStore(client *redis.Client, window time.Duration, limit uint) ratelimit.Store {
	if client != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        window,
			Limit:       limit,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  window,
		Limit: limit,
	})
}

// UserRateLimiter limits per authenticated user, falling back to client IP.
// name separates the counters of different routes.
func UserRateLimiter(name string, store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RateLimiter")
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("limiter", name),
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			wait := time.Until(info.ResetTime).Round(time.Second)
			c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())))
			abort(c, http.StatusTooManyRequests, "too many requests, try again in "+wait.String())
		},
		KeyFunc: func(c *gin.Context) string {
			if uid, ok := models.GetUserIDFromContext(c.Request.Context()); ok {
				return name + ":" + uid
			}
			return name + ":ip:" + c.ClientIP()
		},
	})
}
