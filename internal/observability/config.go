package observability

import (
	"os"
	"strings"

	"github.com/stayhive/stayhive/internal/config"
)

// Config configures the telemetry providers.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// FromAppConfig derives telemetry settings from application configuration.
func FromAppConfig(cfg config.Config) Config {
	enabled := strings.EqualFold(strings.TrimSpace(os.Getenv("OTEL_ENABLED")), "true")
	return Config{
		Enabled:          enabled,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		ServiceName:      cfg.AppName,
		Environment:      cfg.Environment,
	}
}
