package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"review-proxy-api/internal/auth"
	"review-proxy-api/internal/datastore"
	"review-proxy-api/internal/models"
	"review-proxy-api/internal/observability"
	"review-proxy-api/internal/services"
	"review-proxy-api/pkg/serverless"
)

const (
	// ProxySecretHeader carries the static secret shared with the site backend
	ProxySecretHeader = "x-proxy-secret"

	// RequestIDHeader is echoed on every response
	RequestIDHeader = "X-Request-ID"

	defaultMaxBodyBytes = 1 << 20
)

// ReviewHandlerConfig holds the inbound gate settings
type ReviewHandlerConfig struct {
	SharedSecret      string
	LegacyPlainErrors bool
	MaxBodyBytes      int64
	Platform          string
}

// ReviewHandler handles review submission requests for every hosting target
type ReviewHandler struct {
	reviewService services.ReviewService
	config        ReviewHandlerConfig
	metrics       *observability.Metrics
}

// NewReviewHandler creates a new review handler. metrics may be nil.
func NewReviewHandler(reviewService services.ReviewService, cfg ReviewHandlerConfig, metrics *observability.Metrics) *ReviewHandler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &ReviewHandler{
		reviewService: reviewService,
		config:        cfg,
		metrics:       metrics,
	}
}

// HandleSubmit runs the gate chain on a platform-neutral request:
// method, shared secret, body parse, token presence, then verification
// and insert. The first failing gate decides the response.
func (h *ReviewHandler) HandleSubmit(ctx context.Context, req *serverless.Request) *serverless.Response {
	start := time.Now()

	requestID := req.Header(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	sub, result, err := h.submit(ctx, req)

	var resp *serverless.Response
	outcome := "success"
	if err != nil {
		resp = errorResponse(err, h.config.LegacyPlainErrors)
		outcome = services.KindOf(err).String()
	} else {
		resp = serverless.JSON(http.StatusOK, SuccessResponse{Success: true, Data: result.Rows})
	}
	resp.SetHeader(RequestIDHeader, requestID)

	latency := time.Since(start)
	h.metrics.ObserveSubmission(outcome, resp.StatusCode, latency)
	h.logOutcome(req, requestID, outcome, resp.StatusCode, latency, sub, result, err)

	return resp
}

func (h *ReviewHandler) submit(ctx context.Context, req *serverless.Request) (*models.ReviewSubmission, *services.SubmitReviewResult, error) {
	if req.Method != http.MethodPost {
		return nil, nil, services.NewProxyError(services.KindTransportMethod, nil)
	}

	if !secretMatches(req.Header(ProxySecretHeader), h.config.SharedSecret) {
		return nil, nil, services.NewProxyError(services.KindAuthorization, nil)
	}

	sub, err := h.reviewService.ParseSubmission(req.Body)
	if err != nil {
		return nil, nil, err
	}

	result, err := h.reviewService.SubmitReview(ctx, sub)
	return sub, result, err
}

// secretMatches compares in constant time for equal-length inputs.
// An empty configured secret never matches.
func secretMatches(provided, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

func (h *ReviewHandler) logOutcome(req *serverless.Request, requestID, outcome string, status int, latency time.Duration,
	sub *models.ReviewSubmission, result *services.SubmitReviewResult, err error) {
	fields := logrus.Fields{
		"request_id":  requestID,
		"platform":    h.config.Platform,
		"method":      req.Method,
		"path":        req.Path,
		"outcome":     outcome,
		"status_code": status,
		"latency_ms":  float64(latency.Nanoseconds()) / 1000000,
	}

	if cause := errors.Unwrap(err); cause != nil {
		fields["cause"] = cause.Error()
	}

	if result != nil && result.Identity != nil {
		fields["user_id"] = result.Identity.ID
	}

	switch services.KindOf(err) {
	case services.KindIdentity:
		if status := datastore.StatusOf(err); status != 0 {
			fields["upstream_status"] = status
		}
		if sub != nil {
			if claims, peekErr := auth.PeekClaims(sub.UserToken); peekErr == nil {
				fields["token_sub"] = claims.Subject
				fields["token_expired"] = claims.Expired(time.Now())
			} else {
				fields["token_decodable"] = false
			}
		}
	case services.KindStorage:
		var apiErr *datastore.APIError
		if errors.As(err, &apiErr) {
			fields["upstream_status"] = apiErr.Status
			fields["policy_violation"] = apiErr.IsPolicyViolation()
		}
	}

	entry := logrus.WithFields(fields)
	switch {
	case err == nil:
		entry.Info("Review stored")
	case status >= 500:
		entry.WithField("error", err.Error()).Error("Review submission failed")
	default:
		entry.WithField("error", err.Error()).Warn("Review submission refused")
	}
}

// ServeHTTP adapts the handler to net/http (Vercel functions, dev server)
func (h *ReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := serverless.FromHTTP(r, h.config.MaxBodyBytes)
	if err != nil {
		// The body is dropped; the parse gate answers 400 once the
		// method and secret gates have passed.
		logrus.WithFields(logrus.Fields{
			"path":  r.URL.Path,
			"error": err.Error(),
		}).Warn("Failed to read request body")
		req.Body = nil
	}

	h.HandleSubmit(r.Context(), req).WriteHTTP(w)
}

// SubmitReview is the gin entry point used by the development server
// @Summary Submit a review
// @Description Checks the shared proxy secret, verifies the user token with the identity backend, then inserts the review under that user's row-level policies.
// @Tags reviews
// @Accept json
// @Produce json
// @Param x-proxy-secret header string true "Shared proxy secret"
// @Param X-Request-ID header string false "Request ID echoed on the response"
// @Param submission body models.ReviewSubmission true "Review submission"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submit-review [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	h.ServeHTTP(c.Writer, c.Request)
}
