package visualizer

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	slogcontext "github.com/veqryn/slog-context"
)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = status >= http.StatusOK
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.status = http.StatusOK
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging stores a request scoped logger in the request context and logs
// every request at debug level once it is served.
func withLogging(base *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := base.With(
			slog.String("realm", "visualizer"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		ctx := slogcontext.NewCtx(r.Context(), logger)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.DebugContext(ctx, "served request",
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// withRecovery converts a panic in a handler into a 500 envelope. Once the
// handler has written its header the response can no longer be replaced, so
// the panic is only logged.
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := fmt.Errorf("panic: %v", rec)
			if rw.wroteHeader {
				slogcontext.FromCtx(r.Context()).ErrorContext(r.Context(), "handler panicked after writing the response",
					slog.Int("status", rw.status),
					slog.String("error", err.Error()),
				)
				return
			}
			writeError(r.Context(), w, NewError(err, http.StatusInternalServerError))
		}()
		next.ServeHTTP(rw, r)
	})
}
