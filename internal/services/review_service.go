package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"review-proxy-api/internal/datastore"
	"review-proxy-api/internal/models"
)

// ErrMissingReviewData is raised when a submission has no avisData object
var ErrMissingReviewData = errors.New("review data is missing")

// reviewService implements the ReviewService interface
type reviewService struct {
	verifier  IdentityVerifier
	newScoped ScopedInserterFactory
	table     string
	validator *validator.Validate
}

// NewReviewService creates a new review service instance
func NewReviewService(verifier IdentityVerifier, newScoped ScopedInserterFactory, table string) (ReviewService, error) {
	if verifier == nil {
		return nil, errors.New("identity verifier is required")
	}
	if newScoped == nil {
		return nil, errors.New("scoped inserter factory is required")
	}
	if table == "" {
		return nil, errors.New("review table is required")
	}

	return &reviewService{
		verifier:  verifier,
		newScoped: newScoped,
		table:     table,
		validator: validator.New(),
	}, nil
}

// ParseSubmission decodes the body and applies the presence check on userToken
func (s *reviewService) ParseSubmission(body []byte) (*models.ReviewSubmission, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewProxyError(KindMalformedRequest, errors.New("empty request body"))
	}

	var sub models.ReviewSubmission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return nil, NewProxyError(KindMalformedRequest, err)
	}

	if err := s.validator.Struct(&sub); err != nil {
		return nil, NewProxyError(KindMissingField, fmt.Errorf("validation failed: %w", err))
	}

	return &sub, nil
}

// SubmitReview verifies the token with privileged credentials, then inserts
// the review through a client scoped to that same token. Exactly one insert
// is attempted; nothing is retried.
func (s *reviewService) SubmitReview(ctx context.Context, sub *models.ReviewSubmission) (result *SubmitReviewResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewProxyError(KindUnexpected, fmt.Errorf("%v", r))
		}
	}()

	if sub == nil {
		return nil, NewProxyError(KindMalformedRequest, errors.New("submission is nil"))
	}
	if sub.UserToken == "" {
		return nil, NewProxyError(KindMissingField, datastore.ErrMissingToken)
	}

	identity, err := s.verifier.GetUser(ctx, sub.UserToken)
	if err != nil {
		return nil, NewProxyError(KindIdentity, err)
	}
	if identity == nil || identity.ID == "" {
		return nil, NewProxyError(KindIdentity, datastore.ErrNoUser)
	}

	if sub.AvisData == nil {
		return nil, NewProxyError(KindUnexpected, ErrMissingReviewData)
	}

	inserter, err := s.newScoped(sub.UserToken)
	if err != nil {
		return nil, NewProxyError(KindUnexpected, fmt.Errorf("failed to create user client: %w", err))
	}

	rows, err := inserter.Insert(ctx, s.table, sub.AvisData.Row())
	if err != nil {
		return nil, NewProxyError(KindStorage, err)
	}

	return &SubmitReviewResult{
		Identity: identity,
		Rows:     rows,
	}, nil
}
