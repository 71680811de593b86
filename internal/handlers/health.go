package handlers

import (
	"net/http"

	"github.com/deepgram/insights/pkg/httpext"
)

type HealthResponse struct {
	Status string `json:"status"`
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, HealthResponse{Status: "ok"})
}
