package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cissero/platform/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewIPLimiter builds a limiter from a formatted rate such as "60-M". Counters
// live in Redis when client is non-nil so replicas share them.
func NewIPLimiter(rate string, client *redis.Client) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}

	store := memory.NewStore()
	if client != nil {
		store, err = redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "cissero:ratelimit"})
		if err != nil {
			return nil, fmt.Errorf("redis limiter store: %w", err)
		}
	}
	return limiter.New(store, r), nil
}

// IPRateLimit rejects clients that exceed l, keyed by ClientIP.
func IPRateLimit(l *limiter.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := l.Get(r.Context(), ClientIP(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				RespondError(w, domain.ErrRateLimited("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
