package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the global logrus logger for the environment.
// Production emits JSON so the platform log drains can index fields.
func ConfigureLogging(cfg *Config) {
	logrus.SetOutput(os.Stdout)

	if cfg.IsProduction() || IsServerlessMode() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
