package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

const (
	adminKeyHeader = "X-Admin-Key"
	adminKeyQuery  = "admin_key"
)

// AdminSessionStore caches accepted admin keys and throttles guesses.
// Satisfied by the redis client.
type AdminSessionStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	StoreAdminSession(ctx context.Context, sessionID string, ttl time.Duration) error
	HasAdminSession(ctx context.Context, sessionID string) (bool, error)
}

// AdminGate guards the admin surface with the shared capability key. The key
// arrives in the X-Admin-Key header or the admin_key query parameter. A match
// caches a session flag in Redis so later requests skip the compare, and
// mismatches are throttled per client IP.
func AdminGate(cfg config.AdminConfig, store AdminSessionStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			presented := strings.TrimSpace(r.Header.Get(adminKeyHeader))
			if presented == "" {
				presented = strings.TrimSpace(r.URL.Query().Get(adminKeyQuery))
			}
			if presented == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing admin key"))
				return
			}

			sessionID := hashKey(presented)
			if store != nil {
				if ok, err := store.HasAdminSession(ctx, sessionID); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check admin session"))
					return
				} else if ok {
					next.ServeHTTP(w, r.WithContext(WithAdminActor(ctx, cfg.ReviewerName)))
					return
				}

				scope := "admin:" + clientIP(r)
				allowed, attempts, err := store.FixedWindowAllow(ctx, scope, int64(cfg.AttemptLimit), cfg.AttemptWindow)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logCtx := logg.WithFields(ctx, map[string]any{
							"ip":       clientIP(r),
							"attempts": attempts,
							"limit":    cfg.AttemptLimit,
						})
						logg.Warn(logCtx, "admin.rate_limit.blocked")
					}
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(cfg.Key)) != 1 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin key"))
				return
			}

			if store != nil {
				if err := store.StoreAdminSession(ctx, sessionID, cfg.SessionTTL); err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "ip", clientIP(r)), "admin.session.cache_failed")
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAdminActor(ctx, cfg.ReviewerName)))
		})
	}
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
