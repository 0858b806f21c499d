package pkgrouter

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gomony/internal/pkg/pkgerror"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter builds an in-memory limiter from a formatted rate such as
// "60-M" (60 requests per minute).
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	return limiter.New(memory.NewStore(), rate), nil
}

// MiddlewareRateLimit rejects callers that went over the limiter's rate with
// 429. A nil limiter disables the check.
func MiddlewareRateLimit(l *limiter.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			lctx, err := l.Get(r.Context(), key)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to get rate limit context", "ip", key, "error", err)
				writeError(w, pkgerror.NewServer(err))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))

			if lctx.Reached {
				slog.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "limit", lctx.Limit)
				writeError(w, pkgerror.NewTooManyRequests())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
