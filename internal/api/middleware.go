package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/wgomg/aura/internal/utils"
	"github.com/wgomg/aura/internal/utils/httputils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestID reuses a client supplied X-Request-ID or mints a new one, and
// stores it in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(headerRequestID))
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), reqID)))
	})
}

// Heartbeat answers GET and HEAD on endpoint before the rest of the chain.
func Heartbeat(endpoint string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == endpoint {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger writes one structured line per request.
func Logger(logger *utils.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}
			if reqID := utils.RequestID(r.Context()); reqID != nil {
				fields = append(fields, zap.String("request_id", *reqID))
			}
			logger.Zap().Info("request served", fields...)
		})
	}
}

func Recover(logger *utils.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error(utils.RequestID(r.Context()), "Panic serving %s %s: %v", r.Method, r.URL.Path, err)
					w.Header().Set("Connection", "close")
					httputils.JSONError(w, http.StatusInternalServerError, httputils.InternalErrorMessage)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit shares one token bucket across all clients. A zero rps disables it.
func RateLimit(rps float64, burst int) alice.Constructor {
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				httputils.JSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds the context handlers see; matching stops when it expires.
func Timeout(d time.Duration) alice.Constructor {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
