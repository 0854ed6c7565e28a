package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"msgboard/internal/storage"
)

type ctxKey int

const (
	connKey ctxKey = iota
	loggerKey
)

// statusRecorder captures the status code and body size for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// logRequests tags the request with an id and writes one access log line.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		logger := h.Logger.With(zap.String("request_id", requestID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey, logger)))

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// withConn checks a storage connection out for the lifetime of the request.
// If none can be acquired the request ends with an empty 500.
func (h *Handler) withConn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if h.Config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.Config.RequestTimeout)
			defer cancel()
		}

		conn, err := h.Store.Acquire(ctx)
		if err != nil {
			h.log(r).Error("acquire storage connection", zap.Error(err))
			writeEmpty(w, http.StatusInternalServerError)
			return
		}
		defer conn.Release()

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, connKey, conn)))
	})
}

func connFrom(ctx context.Context) storage.Conn {
	conn, _ := ctx.Value(connKey).(storage.Conn)
	return conn
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return h.Logger
}
