package handler

// webhookEvent is the body Tableau POSTs to registered webhook destinations.
// Only the resource LUID is load-bearing here; the rest is kept for logging.
type webhookEvent struct {
	Resource     string `json:"resource"`
	EventType    string `json:"event_type"`
	ResourceLUID string `json:"resource_luid" validate:"required"`
	ResourceName string `json:"resource_name"`
	SiteLUID     string `json:"site_luid"`
	CreatedAt    string `json:"created_at"`
}
