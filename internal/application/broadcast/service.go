package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tableau-notifier/internal/domain"
	"github.com/tableau-notifier/internal/infrastructure/connectedapp"
	"github.com/tableau-notifier/internal/infrastructure/tableau"
)

// TokenIssuer signs and verifies connected-app tokens.
type TokenIssuer interface {
	Sign() (string, error)
	Verify(token string) (*connectedapp.Claims, error)
}

// TableauClient is the slice of the REST client this service needs.
type TableauClient interface {
	SignInJWT(ctx context.Context, token string) (*tableau.Session, error)
	ListBroadcasts(ctx context.Context, s *tableau.Session) ([]domain.Broadcast, error)
	UpdateBroadcast(ctx context.Context, s *tableau.Session, broadcastID string, suspended, sendEmail bool) error
}

type Service interface {
	// Update issues a connected-app token, authenticates to the REST API,
	// locates the broadcast whose workbook ID equals workbookID, and
	// triggers its update with the suspend and email flags both false.
	Update(ctx context.Context, workbookID string) error
}

type service struct {
	issuer  TokenIssuer
	tableau TableauClient
}

func NewService(issuer TokenIssuer, tc TableauClient) Service {
	return &service{issuer: issuer, tableau: tc}
}

func (s *service) Update(ctx context.Context, workbookID string) error {
	token, err := s.issuer.Sign()
	if err != nil {
		return err
	}

	// Round-trip self-check: the token must decode with the same secret and
	// audience before it is handed to the platform.
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return fmt.Errorf("token self-check failed: %w", err)
	}
	slog.Debug("issued connected-app token", "sub", claims.Subject, "jti", claims.ID)

	session, err := s.tableau.SignInJWT(ctx, token)
	if err != nil {
		return fmt.Errorf("tableau sign-in: %w", err)
	}

	broadcasts, err := s.tableau.ListBroadcasts(ctx, session)
	if err != nil {
		return err
	}

	// Exact workbook LUID equality. Zero matches fails rather than updating
	// an arbitrary broadcast; several matches is ambiguous and also fails.
	var match *domain.Broadcast
	for i := range broadcasts {
		if broadcasts[i].WorkbookID != workbookID {
			continue
		}
		if match != nil {
			return fmt.Errorf("multiple broadcasts for workbook %s: %w", workbookID, domain.ErrConflict)
		}
		match = &broadcasts[i]
	}
	if match == nil {
		return fmt.Errorf("no broadcast for workbook %s: %w", workbookID, domain.ErrNotFound)
	}

	return s.tableau.UpdateBroadcast(ctx, session, match.ID, false, false)
}
