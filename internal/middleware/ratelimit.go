package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const maxLoginBody = 64 << 10

// LoginRateLimiter counts login attempts per email and client IP in Redis.
// A nil limiter lets every request through.
type LoginRateLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

// NewLoginRateLimiter returns nil when client is nil or limit is not positive
func NewLoginRateLimiter(client redis.Cmdable, limit int, window time.Duration) *LoginRateLimiter {
	if client == nil || limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginRateLimiter{client: client, limit: limit, window: window}
}

// NewRedisClient connects to addr and pings it
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Middleware answers 429 once the attempts of the current window exceed the
// limit. Redis failures are logged and the request proceeds.
func (l *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		key := "rrhh:login:" + loginEmail(c) + ":" + c.ClientIP()

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("login rate limit unavailable")
			c.Next()
			return
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}

		remaining := l.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > l.limit {
			ttl, err := l.client.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				ttl = l.window
			}
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			abort(c, apperror.New(apperror.CodeRateLimited, "too many login attempts"))
			return
		}
		c.Next()
	}
}

// loginEmail peeks at the JSON body and restores it for the handler
func loginEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoginBody))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
