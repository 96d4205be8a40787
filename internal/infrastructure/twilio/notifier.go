package twilio

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/tableau-notifier/internal/config"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier sends one message body over the three configured channels.
// Every method returns the vendor's delivery SID.
type Notifier interface {
	SendSMS(ctx context.Context, body string) (string, error)
	SendWhatsApp(ctx context.Context, body string) (string, error)
	PlaceCall(ctx context.Context, body string) (string, error)
}

type notifier struct {
	client       *twilio.RestClient
	fromNumber   string
	toNumber     string
	fromWhatsApp string
	toWhatsApp   string
}

func NewNotifier(cfg *config.Config) Notifier {
	return &notifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		fromNumber:   cfg.TwilioFromNumber,
		toNumber:     cfg.TwilioToNumber,
		fromWhatsApp: cfg.WhatsAppFrom,
		toWhatsApp:   cfg.WhatsAppTo,
	}
}

func (n *notifier) SendSMS(_ context.Context, body string) (string, error) {
	return n.sendMessage(n.fromNumber, n.toNumber, body)
}

func (n *notifier) SendWhatsApp(_ context.Context, body string) (string, error) {
	return n.sendMessage(n.fromWhatsApp, n.toWhatsApp, body)
}

func (n *notifier) sendMessage(from, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)
	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return sid(resp.Sid), nil
}

// PlaceCall initiates a voice call that reads the body aloud.
func (n *notifier) PlaceCall(_ context.Context, body string) (string, error) {
	params := &openapi.CreateCallParams{}
	params.SetFrom(n.fromNumber)
	params.SetTo(n.toNumber)
	params.SetTwiml(sayTwiML(body))
	resp, err := n.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("create call: %w", err)
	}
	return sid(resp.Sid), nil
}

// sayTwiML wraps the body in a <Say> verb. The text is XML-escaped; raw
// interpolation breaks on data source names containing & or <.
func sayTwiML(body string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(body))
	return fmt.Sprintf("<Response><Say>%s</Say></Response>", buf.String())
}

func sid(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
