package api

import (
	"log/slog"
	"net/http"
	"time"
)

// loggingWriter records status and body size as a handler writes. Unwrap
// keeps http.ResponseController working through the wrapper.
type loggingWriter struct {
	w            http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lw *loggingWriter) Header() http.Header { return lw.w.Header() }

func (lw *loggingWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.w.WriteHeader(code)
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	// A Write without an explicit WriteHeader is an implicit 200.
	if lw.statusCode == 0 {
		lw.statusCode = http.StatusOK
	}
	n, err := lw.w.Write(b)
	lw.bytesWritten += int64(n)
	return n, err
}

func (lw *loggingWriter) Unwrap() http.ResponseWriter { return lw.w }

// recoveryMiddleware turns a handler panic into a 500 instead of killing
// the connection. If the handler already started the response, the error
// envelope cannot be sent and the panic is only logged.
func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lw := &loggingWriter{w: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic recovered",
					"error", rec,
					"path", r.URL.Path,
					"headers_sent", lw.statusCode != 0,
				)
				if lw.statusCode != 0 {
					logger.Warn("cannot send error response, headers already sent",
						"path", r.URL.Path,
						"status", lw.statusCode,
					)
					return
				}
				WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error", logger)
			}()

			next.ServeHTTP(lw, r)
		})
	}
}

// loggingMiddleware logs one line per request at Debug. It reuses a
// loggingWriter installed by an outer middleware rather than stacking a
// second wrapper.
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw, ok := w.(*loggingWriter)
			if !ok {
				lw = &loggingWriter{w: w}
			}

			next.ServeHTTP(lw, r)

			status := lw.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", lw.bytesWritten,
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
			)
		})
	}
}
