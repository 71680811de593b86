package handlers

import (
	"bytes"
	"net/http"

	"github.com/deepgram/insights/internal/api/v1/middleware"
	"github.com/deepgram/insights/internal/services"
	"github.com/rs/zerolog/log"
)

// HandlePage renders the dashboard with a fresh conversation, so every page
// load starts from an empty transcript
func HandlePage(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	widget := svcs.GetRegistry().Create()

	var buf bytes.Buffer
	if err := svcs.GetComposer().RenderPage(&buf, widget.Snapshot()); err != nil {
		log.Error().Err(err).Str("conversation_id", widget.ID()).Msg("Failed to render page")
		svcs.GetRegistry().Remove(widget.ID())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("conversation_id", widget.ID()).
		Str("client_ip", middleware.ClientIP(r)).
		Int("open_conversations", svcs.GetRegistry().Len()).
		Msg("Page served")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("Failed to write page")
	}
}
