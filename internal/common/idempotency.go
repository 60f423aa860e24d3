package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// IdempotencyField is the form field carrying the key for HTML form posts.
const IdempotencyField = "idempotency_key"

// Idem provides an Idempotency-Key middleware backed by Redis. Keys are scoped
// to the visitor session so two visitors never collide.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
	// Breaker skips the check while redis keeps failing.
	Breaker *resilience.Breaker
}

func hashKey(scope, key string) string {
	sum := sha256.Sum256([]byte(scope + "|" + key))
	return "idem:" + hex.EncodeToString(sum[:])
}

// Middleware rejects replays of a write request that carries the same key.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		header := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if header == "" {
			header = strings.TrimSpace(r.PostFormValue(IdempotencyField))
		}
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !i.Breaker.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		scope, _ := SessionID(ctx)
		key := hashKey(scope, header)
		ok, err := i.R.SetNX(ctx, key, "locked", i.ttl()).Result()
		i.Breaker.Report(err)
		if err != nil {
			WriteError(w, Internal("idempotency store error", err))
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, CodeIdempotentReplay, "duplicate request", nil)
			return
		}
		defer func() {
			// ensure the key expires even if handler panics
			_ = i.R.Expire(context.Background(), key, i.ttl()).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return 10 * time.Minute
	}
	return i.TTL
}
