package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	// Visitors idle for longer than this are forgotten
	TTL time.Duration
}

// RateLimiter is a per-IP token bucket
type RateLimiter struct {
	visitors *ttlcache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst < config.RequestsPerSecond {
		config.Burst = config.RequestsPerSecond
	}

	visitors := ttlcache.NewCache()
	visitors.SetTTL(config.TTL)
	visitors.SetLoaderFunction(func(string) (any, time.Duration, error) {
		return rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst), config.TTL, nil
	})

	return &RateLimiter{visitors: visitors}
}

// Allow takes a token from the bucket of key
func (r *RateLimiter) Allow(key string) bool {
	v, err := r.visitors.Get(key)
	if err != nil {
		zap.L().Error("Failed to load rate limiter visitor", zap.Error(err))
		return true
	}

	return v.(*rate.Limiter).Allow()
}

func (r *RateLimiter) Close() error {
	return r.visitors.Close()
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
