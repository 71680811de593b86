package handlers

import (
	"net/http"

	"github.com/deepgram/insights/internal/api/v1/handlers/conversations"
	v1ws "github.com/deepgram/insights/internal/api/v1/handlers/websocket"
	v1mware "github.com/deepgram/insights/internal/api/v1/middleware"
	"github.com/deepgram/insights/internal/services"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(v1mware.RateLimit("global"))

	v1conversationRouter := v1.PathPrefix("/conversations").Subrouter()
	v1conversationRouter.Handle("", v1mware.RateLimit("conversation_create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleCreate(services, w, r)
	}))).Methods("POST")
	v1conversationRouter.HandleFunc("/{id}", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleGet(services, w, r)
	}).Methods("GET")
	v1conversationRouter.Handle("/{id}/messages", v1mware.RateLimit("chat_submit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleSubmit(services, w, r)
	}))).Methods("POST")
	v1conversationRouter.HandleFunc("/{id}/transcript", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleTranscript(services, w, r)
	}).Methods("GET")
	v1conversationRouter.HandleFunc("/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleConversationWebSocket(services, w, r)
	}).Methods("GET")
}
