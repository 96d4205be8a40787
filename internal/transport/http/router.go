package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tableau-notifier/internal/application/broadcast"
	"github.com/tableau-notifier/internal/application/notifier"
	"github.com/tableau-notifier/internal/config"
	"github.com/tableau-notifier/internal/infrastructure/auditlog"
	"github.com/tableau-notifier/internal/infrastructure/connectedapp"
	"github.com/tableau-notifier/internal/infrastructure/tableau"
	twilioinfra "github.com/tableau-notifier/internal/infrastructure/twilio"
	"github.com/tableau-notifier/internal/transport/http/handler"
	appmiddleware "github.com/tableau-notifier/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Tableau  *tableau.Client
	Notifier twilioinfra.Notifier
	Issuer   *connectedapp.Issuer
	AuditLog *auditlog.Writer
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appmiddleware.SignatureHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.MethodNotAllowed(handler.MethodNotSupported)

	// Webhook POSTs must carry a valid body signature.
	sig := appmiddleware.Signature(cfg.WebhookSecret)
	// 5 requests/second, burst of 10 — webhook endpoints fan out to paid
	// vendor calls, so inbound bursts are capped.
	webhookRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifierSvc := notifier.NewService(deps.Tableau, deps.Notifier, deps.AuditLog, cfg)
	broadcastSvc := broadcast.NewService(deps.Issuer, deps.Tableau)

	indexH := handler.NewIndexHandler()
	notifierH := handler.NewNotifierHandler(notifierSvc)
	broadcastH := handler.NewBroadcastHandler(broadcastSvc)

	r.Get("/", indexH.Index)

	r.Route("/broadcast", func(r chi.Router) {
		r.Get("/", handler.RedirectIndex)
		r.With(webhookRL.Limit, sig).Post("/", broadcastH.Update)
	})

	r.Route("/notifier", func(r chi.Router) {
		r.Get("/", handler.RedirectIndex)
		r.With(webhookRL.Limit, sig).Post("/", notifierH.Notify)
	})

	return r
}
