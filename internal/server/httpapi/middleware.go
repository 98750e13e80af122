package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

// withLogging logs uri, method, status, duration and size of every request
// and puts the chi request id into the context for downstream log records.
func (s *Server) withLogging(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		responseData := &responseData{
			status: http.StatusOK,
			size:   0,
		}
		lw := loggingResponseWriter{
			ResponseWriter: w,
			responseData:   responseData,
		}
		r = r.WithContext(logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context())))
		h.ServeHTTP(&lw, r)

		s.logger.Info(r.Context(), "request",
			"uri", r.RequestURI,
			"method", r.Method,
			"status", responseData.status,
			"duration", time.Since(start),
			"size", responseData.size,
		)
	}

	return http.HandlerFunc(logFn)
}

// preflight answers OPTIONS requests without authentication. It lists the
// allowed methods and sets no cross-origin headers.
func preflight(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			h.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
}
