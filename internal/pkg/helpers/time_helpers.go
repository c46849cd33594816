package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, falling back to defaultDuration
// when the value is malformed. Used for config fields like token lifetimes
// where a typo should not prevent startup.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("value", durationStr).Dur("default", defaultDuration).
			Msg("Invalid duration string, using default")
		return defaultDuration
	}
	return duration
}
