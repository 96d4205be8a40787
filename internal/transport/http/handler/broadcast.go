package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tableau-notifier/internal/application/broadcast"
	"github.com/tableau-notifier/internal/pkg/validate"
)

// BroadcastHandler handles the /broadcast webhook route.
type BroadcastHandler struct {
	svc broadcast.Service
}

func NewBroadcastHandler(svc broadcast.Service) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

// Update triggers a broadcast update for the workbook named in the webhook
// event and answers with the plain-text success marker.
func (h *BroadcastHandler) Update(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(event); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Update(r.Context(), event.ResourceLUID); err != nil {
		httpError(w, err)
		return
	}
	writeText(w, http.StatusOK, "200 SUCCESS")
}
