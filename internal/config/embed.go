package config

import (
	"github.com/rs/zerolog/log"
)

const (
	// ReportEmbedPlaceholder marks an unset report embed URL
	ReportEmbedPlaceholder = "YOUR_LOOKER_STUDIO_EMBED_URL"
	// CalendarEmbedPlaceholder marks an unset calendar embed URL or markup
	CalendarEmbedPlaceholder = "YOUR_CALENDAR_EMBED_URL"
)

func GetReportEmbedURL() string {
	value := GetEnvOrDefault("REPORT_EMBED_URL", ReportEmbedPlaceholder)
	if value == ReportEmbedPlaceholder {
		log.Warn().Msg("REPORT_EMBED_URL not set - report panel will show setup instructions")
	}
	return value
}

// GetCalendarEmbed returns either a calendar URL or the provider's iframe markup
func GetCalendarEmbed() string {
	value := GetEnvOrDefault("CALENDAR_EMBED_URL", CalendarEmbedPlaceholder)
	if value == CalendarEmbedPlaceholder && IsCalendarEnabled() {
		log.Warn().Msg("CALENDAR_EMBED_URL not set - calendar panel will show setup instructions")
	}
	return value
}

func IsCalendarEnabled() bool {
	return parseEnvBool("CALENDAR_ENABLED", false)
}
