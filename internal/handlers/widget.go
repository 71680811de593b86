package handlers

import (
	_ "embed"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed static/widget.js
var widgetJS []byte

// HandleWidgetJS serves the script that drives the conversation widget
func HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	log.Debug().
		Str("client_ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Widget.js requested")

	// Set appropriate headers
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if _, err := w.Write(widgetJS); err != nil {
		log.Debug().Err(err).Msg("Failed to write widget.js")
	}
}
