package config

import (
	"strings"
	"time"
)

const (
	defaultPageTitle           = "AI-Powered Sales Insights"
	defaultFooterText          = "© 2024 AI Sales Analytics Project"
	defaultConversationIdleTTL = 30 * time.Minute
)

// GetListenAddr returns the HTTP listen address derived from PORT
func GetListenAddr() string {
	return NormalizeListenAddr(GetEnvOrDefault("PORT", "8080"))
}

// NormalizeListenAddr turns a bare port into ":port" and leaves host:port alone
func NormalizeListenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "info")
}

func GetLogFormat() string {
	return GetEnvOrDefault("LOG_FORMAT", "json")
}

func GetPageTitle() string {
	return GetEnvOrDefault("PAGE_TITLE", defaultPageTitle)
}

func GetFooterText() string {
	return GetEnvOrDefault("FOOTER_TEXT", defaultFooterText)
}

// GetConversationIdleTTL is how long an untouched conversation survives before eviction
func GetConversationIdleTTL() time.Duration {
	ttl := parseEnvDuration("CONVERSATION_IDLE_TTL", defaultConversationIdleTTL)
	if ttl == 0 {
		return defaultConversationIdleTTL
	}
	return ttl
}
