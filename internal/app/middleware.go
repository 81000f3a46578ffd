package app

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/citycal/citycal/internal/config"
	"github.com/citycal/citycal/internal/rest"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	requestIdHeader     = "X-Request-Id"
	adminPasswordHeader = "X-Admin-Password"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, cfg config.Application) {
	r.Use(requestLogging)

	if cfg.Admin.Password == "" {
		log.Warn("admin.password is not set, mutating endpoints are open to everyone")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// requestLogging tags each request with an id, reusing one sent by a proxy.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestId := req.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, requestId)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, req)

		log.WithFields(log.Fields{
			"requestId": requestId,
			"method":    req.Method,
			"path":      req.URL.Path,
			"status":    recorder.status,
			"duration":  time.Since(start),
		}).Debug("Handled request")
	})
}

// requireAdmin rejects requests without the configured admin password.
// An empty password lets every request through.
func requireAdmin(password string, next http.HandlerFunc) http.HandlerFunc {
	if password == "" {
		return next
	}
	return func(w http.ResponseWriter, req *http.Request) {
		given := req.Header.Get(adminPasswordHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(password)) != 1 {
			log.Debugf("Rejected %s %s: invalid admin password", req.Method, req.URL.Path)
			rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		next(w, req)
	}
}
