package server

import (
	"fmt"

	"review-proxy-api/internal/config"
	"review-proxy-api/internal/datastore"
	"review-proxy-api/internal/handlers"
	"review-proxy-api/internal/observability"
	"review-proxy-api/internal/services"
)

// Container holds all application dependencies.
// It is built once per process and shared read-only by every invocation.
type Container struct {
	Config        *config.Config
	Metrics       *observability.Metrics
	ReviewService services.ReviewService
	ReviewHandler *handlers.ReviewHandler

	// Internal dependencies
	privileged *datastore.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()

	privileged, err := datastore.New(cfg.DataStore.URL, cfg.DataStore.PrivilegedKey,
		datastore.WithObserver(metrics.ObserveExternal))
	if err != nil {
		return nil, fmt.Errorf("failed to create privileged data store client: %w", err)
	}

	// A fresh client per request: the user's token must never outlive the
	// invocation that carried it.
	scoped := func(token string) (services.RowInserter, error) {
		return datastore.New(cfg.DataStore.URL, cfg.DataStore.PublicKey,
			datastore.WithBearer(token),
			datastore.WithObserver(metrics.ObserveExternal))
	}

	reviewService, err := services.NewReviewService(privileged, scoped, cfg.DataStore.ReviewTable)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	reviewHandler := handlers.NewReviewHandler(reviewService, handlers.ReviewHandlerConfig{
		SharedSecret:      cfg.Proxy.SharedSecret,
		LegacyPlainErrors: cfg.Proxy.LegacyPlainErrors,
		MaxBodyBytes:      cfg.Proxy.MaxBodyBytes,
		Platform:          string(config.GetServerlessConfig().Platform),
	}, metrics)

	return &Container{
		Config:        cfg,
		Metrics:       metrics,
		ReviewService: reviewService,
		ReviewHandler: reviewHandler,
		privileged:    privileged,
	}, nil
}

// Close releases the container's resources. The data store clients hold no
// connections of their own, so there is nothing to release today.
func (c *Container) Close() error {
	c.privileged = nil
	return nil
}
