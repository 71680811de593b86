package websocket

import (
	"net/http"
	"time"

	"github.com/deepgram/insights/internal/services"
	"github.com/deepgram/insights/internal/services/conversation"
	"github.com/deepgram/insights/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: restrict to the page origin once deployments set a public base URL
			return true
		},
	}
)

// Frame is pushed to the browser on connect and after every change
type Frame struct {
	Version uint64                    `json:"version"`
	State   conversation.RequestState `json:"state"`
	Pending bool                      `json:"pending"`
	HTML    string                    `json:"html"`
}

// HandleConversationWebSocket streams transcript updates of one conversation
func HandleConversationWebSocket(svcs *services.Services, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	widget, ok := svcs.GetRegistry().Get(id)
	if !ok {
		httpext.JsonError(w, "Conversation not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("WebSocket upgrade failed")
		return
	}

	manager := svcs.GetConnectionManager()
	timeouts := manager.GetTimeouts()
	manager.AddConnection(conn, id)

	updates, unsubscribe := widget.Subscribe()
	defer func() {
		unsubscribe()
		manager.RemoveConnection(conn)
		conn.Close()
	}()

	log.Info().Str("conversation_id", id).Msg("Push connection opened")

	// The read loop only services control frames; it ends when the client goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("conversation_id", id).Msg("Unexpected WebSocket closure")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	composer := svcs.GetComposer()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "conversation closed"),
					time.Now().Add(timeouts.WriteWait))
				return
			}

			html, err := composer.TranscriptHTML(snap)
			if err != nil {
				log.Error().Err(err).Str("conversation_id", id).Msg("Failed to render transcript")
				return
			}

			conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
			if err := conn.WriteJSON(Frame{
				Version: snap.Version,
				State:   snap.State,
				Pending: snap.Pending,
				HTML:    html,
			}); err != nil {
				log.Debug().Err(err).Str("conversation_id", id).Msg("Failed to push transcript")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WriteWait)); err != nil {
				return
			}
		case <-done:
			log.Info().Str("conversation_id", id).Msg("Push connection closed")
			return
		}
	}
}
