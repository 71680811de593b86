package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := parseEnvBool("RATELIMIT_ENABLED", false)

	configs := map[string]RateLimitConfig{
		"global": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_GLOBAL", 1000), // 1000 requests per minute globally
			Window:  time.Minute,
		},
		"chat_submit": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_SUBMIT", 30), // 30 questions per minute per client
			Window:  time.Minute,
		},
		"conversation_create": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CONVERSATION_CREATE", 60), // 60 page loads per minute per client
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found")
	return RateLimitConfig{Enabled: false}
}
