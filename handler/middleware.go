package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AccessLog logs one line per request with a generated request id. It
// is chained in front of the API handlers in main.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		t := time.Now()
		id := uuid.NewString()
		next.ServeHTTP(rw, req)
		log.WithFields(log.Fields{
			"request_id": id,
			"method":     req.Method,
			"path":       req.URL.Path,
			"duration":   time.Since(t).String(),
		}).Info("request handled")
	})
}
