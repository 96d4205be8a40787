package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tableau-notifier/internal/config"
	"github.com/tableau-notifier/internal/domain"
	"github.com/tableau-notifier/internal/infrastructure/tableau"
	twilioinfra "github.com/tableau-notifier/internal/infrastructure/twilio"
	"github.com/tableau-notifier/internal/pkg/id"
)

// TableauClient is the slice of the REST client this service needs.
type TableauClient interface {
	SignInPAT(ctx context.Context, patName, patSecret string) (*tableau.Session, error)
	SignOut(ctx context.Context, s *tableau.Session) error
	ListDatasources(ctx context.Context, s *tableau.Session) ([]domain.DataSource, error)
}

// AuditLog is the append-only trail dispatch outcomes are written to.
type AuditLog interface {
	Append(block string) error
}

type Service interface {
	// Dispatch signs in with the personal access token, lists every data
	// source on the site, and sends the failure summary for each one over
	// SMS, WhatsApp, and voice. Channel failures do not abort the batch;
	// they are recorded in the returned report. An error is returned only
	// when the platform itself cannot be reached or the log cannot be
	// written.
	Dispatch(ctx context.Context) (*domain.DispatchReport, error)
}

type service struct {
	tableau TableauClient
	sender  twilioinfra.Notifier
	log     AuditLog
	cfg     *config.Config
}

func NewService(tc TableauClient, sender twilioinfra.Notifier, log AuditLog, cfg *config.Config) Service {
	return &service{tableau: tc, sender: sender, log: log, cfg: cfg}
}

func (s *service) Dispatch(ctx context.Context) (*domain.DispatchReport, error) {
	session, err := s.tableau.SignInPAT(ctx, s.cfg.TableauPATName, s.cfg.TableauPATSecret)
	if err != nil {
		return nil, fmt.Errorf("tableau sign-in: %w", err)
	}
	defer func() {
		// Best effort; the session key expires server-side regardless.
		if err := s.tableau.SignOut(ctx, session); err != nil {
			slog.Warn("tableau sign-out failed", "err", err)
		}
	}()

	sources, err := s.tableau.ListDatasources(ctx, session)
	if err != nil {
		return nil, err
	}

	report := &domain.DispatchReport{ID: id.New(), DataSources: len(sources)}

	header := fmt.Sprintf("\n%s [%s]: There are %d datasources on site",
		time.Now().Format("2006-01-02 15:04:05"), report.ID, len(sources))
	if err := s.log.Append(header); err != nil {
		return nil, err
	}

	for _, ds := range sources {
		msg := failureMessage(ds)

		var block strings.Builder
		block.WriteString(msg)

		for _, ch := range s.channels() {
			sid, err := ch.send(ctx, msg)
			d := domain.Delivery{DataSource: ds.Name, Channel: ch.name}
			if err != nil {
				d.Error = err.Error()
				report.Failed++
				slog.Warn("notification delivery failed",
					"channel", ch.name, "datasource", ds.Name, "err", err)
				block.WriteString(fmt.Sprintf("%s delivery failed: %v\n", ch.label, err))
			} else {
				d.SID = sid
				report.Sent++
				block.WriteString(ch.logLine(sid))
			}
			report.Deliveries = append(report.Deliveries, d)
		}

		if err := s.log.Append(block.String()); err != nil {
			return nil, err
		}
	}

	return report, nil
}

type channel struct {
	name    domain.Channel
	label   string
	send    func(ctx context.Context, body string) (string, error)
	logLine func(sid string) string
}

func (s *service) channels() []channel {
	return []channel{
		{
			name:  domain.ChannelSMS,
			label: "Text message",
			send:  s.sender.SendSMS,
			logLine: func(sid string) string {
				return fmt.Sprintf("Text message SID: %s\nSending SMS message from %s to %s\n",
					sid, s.cfg.TwilioFromNumber, s.cfg.TwilioToNumber)
			},
		},
		{
			name:  domain.ChannelWhatsApp,
			label: "Whatsapp message",
			send:  s.sender.SendWhatsApp,
			logLine: func(sid string) string {
				return fmt.Sprintf("Whatsapp message SID: %s\nSending Whatsapp message from %s to %s\n",
					sid, s.cfg.WhatsAppFrom, s.cfg.WhatsAppTo)
			},
		},
		{
			name:  domain.ChannelVoice,
			label: "Call",
			send:  s.sender.PlaceCall,
			logLine: func(sid string) string {
				return fmt.Sprintf("Call SID: %s\nAutomated call from %s to %s\n",
					sid, s.cfg.TwilioFromNumber, s.cfg.TwilioToNumber)
			},
		},
	}
}

// failureMessage builds the notification body for one data source.
func failureMessage(ds domain.DataSource) string {
	return fmt.Sprintf("Datasource Refresh failed\n\tName:%s\n\tDescription:%s\n\tLast updated: %s\n",
		ds.Name, ds.Description, ds.UpdatedAt.Format(time.RFC3339))
}
