package handlers

import (
	"errors"

	"review-proxy-api/internal/services"
	"review-proxy-api/pkg/serverless"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is returned once the review row is stored
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorResponse renders err with the status of its kind. With legacyPlain
// the method and secret refusals are plain text, as older callers expect.
func errorResponse(err error, legacyPlain bool) *serverless.Response {
	var proxyErr *services.ProxyError
	if !errors.As(err, &proxyErr) {
		proxyErr = services.NewProxyError(services.KindUnexpected, err)
	}
	kind := proxyErr.Kind
	message := proxyErr.Error()

	if legacyPlain && (kind == services.KindTransportMethod || kind == services.KindAuthorization) {
		return serverless.Text(kind.Status(), message)
	}
	return serverless.JSON(kind.Status(), ErrorResponse{Error: message})
}
