package server

import (
	"sync"

	"github.com/sirupsen/logrus"

	"review-proxy-api/internal/config"
)

// Manager lazily builds the process-wide container for entry points that
// have no main function to do it (Vercel). Warm invocations reuse it.
type Manager struct {
	load      func() (*config.Config, error)
	once      sync.Once
	container *Container
	err       error
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// NewManager creates a manager that builds its container from load
func NewManager(load func() (*config.Config, error)) *Manager {
	return &Manager{load: load}
}

// Default returns the global manager, which loads configuration from the
// environment and configures logging on first use
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager(func() (*config.Config, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			config.ConfigureLogging(cfg)
			return cfg, nil
		})
	})
	return defaultManager
}

// Container returns the shared container, building it on the first call.
// A failed build is remembered; every later call returns the same error.
func (m *Manager) Container() (*Container, error) {
	m.once.Do(func() {
		cfg, err := m.load()
		if err != nil {
			m.err = err
			return
		}

		m.container, m.err = NewContainer(cfg)
		if m.err == nil {
			logrus.WithFields(logrus.Fields{
				"platform":    config.GetServerlessConfig().Platform,
				"mode":        config.GetDeploymentMode(),
				"environment": cfg.Environment,
			}).Info("Container initialized")
		}
	})

	return m.container, m.err
}
