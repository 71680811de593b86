package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// AgentEndpointPlaceholder is the value the agent endpoint carries until an
// operator points it at a deployed agent
const AgentEndpointPlaceholder = "YOUR_AGENT_API_ENDPOINT"

const (
	defaultAgentTimeout = 60 * time.Second
	// DefaultMaxQuestionLength applies when MAX_QUESTION_LENGTH is unset or invalid
	DefaultMaxQuestionLength = 2000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// GetAgentEndpoint returns the remote agent URL, or the placeholder when unset
func GetAgentEndpoint() string {
	value := GetEnvOrDefault("AGENT_API_ENDPOINT", AgentEndpointPlaceholder)
	if value == AgentEndpointPlaceholder {
		log.Warn().Msg("AGENT_API_ENDPOINT not set - chat will ask the operator to configure it")
		return value
	}

	if err := validate.Var(value, "url"); err != nil {
		log.Warn().Str("endpoint", value).Msg("AGENT_API_ENDPOINT does not look like a valid URL")
	}
	return value
}

// IsAgentEndpointConfigured reports whether endpoint points somewhere real
func IsAgentEndpointConfigured(endpoint string) bool {
	return endpoint != "" && endpoint != AgentEndpointPlaceholder
}

// GetAgentTimeout bounds a single outbound agent request; zero disables the bound
func GetAgentTimeout() time.Duration {
	return parseEnvDuration("AGENT_TIMEOUT", defaultAgentTimeout)
}

// GetMaxQuestionLength caps the size of a submitted question in characters
func GetMaxQuestionLength() int {
	n := parseEnvInt("MAX_QUESTION_LENGTH", DefaultMaxQuestionLength)
	if n <= 0 {
		return DefaultMaxQuestionLength
	}
	return n
}
