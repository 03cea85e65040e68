package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"review-proxy-api/pkg/server"
	"review-proxy-api/pkg/serverless"
)

// Handler is the entry point for the Vercel function at /api/submit-review
func Handler(w http.ResponseWriter, r *http.Request) {
	container, err := server.Default().Container()
	if err != nil {
		// Configuration problems stay in the log; callers are not
		// authenticated yet and get a fixed body.
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		}).Error("Failed to initialize container")
		serverless.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal proxy error: service unavailable",
		}).WriteHTTP(w)
		return
	}

	container.ReviewHandler.ServeHTTP(w, r)
}
