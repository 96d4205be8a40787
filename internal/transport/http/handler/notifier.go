package handler

import (
	"net/http"

	"github.com/tableau-notifier/internal/application/notifier"
)

// NotifierHandler handles the /notifier webhook route.
type NotifierHandler struct {
	svc notifier.Service
}

func NewNotifierHandler(svc notifier.Service) *NotifierHandler {
	return &NotifierHandler{svc: svc}
}

// Notify runs the notification batch. The webhook body is not consulted:
// the batch always reports on every data source currently on the site.
// Full success answers with the plain-text marker; partial failure surfaces
// the aggregated report.
func (h *NotifierHandler) Notify(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Dispatch(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if report.Failed > 0 {
		writeJSON(w, http.StatusBadGateway, DispatchEnvelope{
			Message: "partial delivery failure",
			Report:  report,
		})
		return
	}
	writeText(w, http.StatusOK, "200 SUCCESS")
}
