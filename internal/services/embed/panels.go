package embed

import (
	"github.com/deepgram/insights/internal/config"
)

// NewReportPanel builds the analytics report panel
func NewReportPanel(url string) *Panel {
	return NewPanel(Config{
		Title:       "Sales Dashboard",
		FrameTitle:  "Sales Analytics Dashboard",
		URL:         url,
		Placeholder: config.ReportEmbedPlaceholder,
		EnvVar:      "REPORT_EMBED_URL",
		ClassName:   "report-panel",
	})
}

// NewCalendarPanel builds the calendar panel from a URL or provider markup
func NewCalendarPanel(urlOrMarkup string) *Panel {
	url := urlOrMarkup
	if url != config.CalendarEmbedPlaceholder {
		url = ResolveURL(urlOrMarkup)
	}
	return NewPanel(Config{
		Title:       "Upcoming Promotion Campaigns",
		FrameTitle:  "Promotion Calendar",
		URL:         url,
		Placeholder: config.CalendarEmbedPlaceholder,
		EnvVar:      "CALENDAR_EMBED_URL",
		ClassName:   "calendar-panel",
	})
}
