package handler

import "net/http"

const indexBody = `<h1>Notifier API Index</h1>
<ul>
<li>/notifier <strong>POST</strong> - receives incoming Tableau Server webhooks to create datasource failure notifications</li>
<li>/broadcast <strong>POST</strong> - receives workbook refresh webhooks to update the matching Tableau Broadcast</li>
</ul>`

// IndexHandler serves the capability listing.
type IndexHandler struct{}

func NewIndexHandler() *IndexHandler { return &IndexHandler{} }

func (h *IndexHandler) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexBody))
}

// RedirectIndex sends GET requests on the webhook routes back to the index.
func RedirectIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// MethodNotSupported answers methods the webhook routes do not accept with a
// real 405 status.
func MethodNotSupported(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusMethodNotAllowed, "405 Method Not Allowed: method not supported")
}
