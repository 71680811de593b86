package conversations

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deepgram/insights/internal/api/v1/middleware"
	"github.com/deepgram/insights/internal/services"
	"github.com/deepgram/insights/internal/services/conversation"
	"github.com/deepgram/insights/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBodyBytes bounds the submit body independently of the question length
const maxBodyBytes = 64 << 10

type SubmitRequest struct {
	Text string `json:"text"`
}

type SubmitResponse struct {
	Accepted bool                      `json:"accepted"`
	State    conversation.RequestState `json:"state"`
}

// HandleCreate starts a new conversation
func HandleCreate(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	widget := svcs.GetRegistry().Create()

	log.Info().
		Str("conversation_id", widget.ID()).
		Str("client_ip", middleware.ClientIP(r)).
		Msg("Conversation created")

	httpext.JsonResponse(w, http.StatusCreated, widget.Snapshot())
}

// HandleGet returns the current snapshot of a conversation
func HandleGet(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	widget, ok := lookup(svcs, w, r)
	if !ok {
		return
	}
	httpext.JsonResponse(w, http.StatusOK, widget.Snapshot())
}

// HandleSubmit hands a question to a conversation. A blank question or one
// sent while a request is pending is reported as not accepted.
func HandleSubmit(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	widget, ok := lookup(svcs, w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Warn().Err(err).Str("conversation_id", widget.ID()).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	maxLen := svcs.MaxQuestionLength()
	if err := validate.Var(req.Text, fmt.Sprintf("max=%d", maxLen)); err != nil {
		log.Warn().
			Str("conversation_id", widget.ID()).
			Int("length", len(req.Text)).
			Msg("Question exceeds maximum length")
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            "Invalid request",
			ErrorDescription: fmt.Sprintf("text must be at most %d characters", maxLen),
		})
		return
	}

	accepted := widget.Submit(req.Text)
	state := widget.Snapshot().State

	log.Info().
		Str("conversation_id", widget.ID()).
		Str("client_ip", middleware.ClientIP(r)).
		Bool("accepted", accepted).
		Str("state", state.String()).
		Msg("Question submitted")

	httpext.JsonResponse(w, http.StatusOK, SubmitResponse{Accepted: accepted, State: state})
}

// HandleTranscript renders the message list as an HTML fragment
func HandleTranscript(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	widget, ok := lookup(svcs, w, r)
	if !ok {
		return
	}

	html, err := svcs.GetComposer().TranscriptHTML(widget.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("conversation_id", widget.ID()).Msg("Failed to render transcript")
		httpext.JsonError(w, "Failed to render transcript", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(html)); err != nil {
		log.Debug().Err(err).Msg("Failed to write transcript")
	}
}

func lookup(svcs *services.Services, w http.ResponseWriter, r *http.Request) (*conversation.Widget, bool) {
	id := mux.Vars(r)["id"]
	widget, ok := svcs.GetRegistry().Get(id)
	if !ok {
		log.Debug().Str("conversation_id", id).Msg("Unknown conversation")
		httpext.JsonError(w, "Conversation not found", http.StatusNotFound)
		return nil, false
	}
	return widget, true
}
