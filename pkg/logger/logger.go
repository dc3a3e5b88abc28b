package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls log level and output format.
type Config struct {
	Level       string
	Format      string // json or text
	ServiceName string
}

// New builds the application logger. Structured JSON in production, text for
// local development.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	}

	log.SetOutput(os.Stdout)
	return log
}

// WithService returns a logger entry tagged with the service name.
func WithService(log *logrus.Logger, cfg Config) logrus.FieldLogger {
	if cfg.ServiceName == "" {
		return log
	}
	return log.WithField("service", cfg.ServiceName)
}
