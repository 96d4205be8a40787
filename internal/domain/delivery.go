package domain

// Channel identifies an outbound notification channel.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelVoice    Channel = "voice"
)

// Delivery is the outcome of one channel send for one data source.
// SID is the vendor's delivery identifier; Error is set when the send failed.
type Delivery struct {
	DataSource string  `json:"datasource"`
	Channel    Channel `json:"channel"`
	SID        string  `json:"sid,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// DispatchReport aggregates the outcome of one notification batch. A failed
// channel send does not abort the batch; it is recorded here instead.
type DispatchReport struct {
	ID          string     `json:"id"`
	DataSources int        `json:"datasources"`
	Sent        int        `json:"sent"`
	Failed      int        `json:"failed"`
	Deliveries  []Delivery `json:"deliveries"`
}
