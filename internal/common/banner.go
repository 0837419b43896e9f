package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved endpoints
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("OrderSync", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("marketplace", config.Marketplace.BaseURL).
		Bool("trello_configured", config.Trello.IsConfigured()).
		Bool("scheduler_enabled", config.Scheduler.Enabled).
		Str("schedule", config.Scheduler.Schedule).
		Msg("OrderSync starting")
}
