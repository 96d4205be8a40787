package connectedapp

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tableau-notifier/internal/config"
)

// TokenTTL is the validity window Tableau grants connected-app tokens.
const TokenTTL = 5 * time.Minute

// audience is the fixed `aud` claim Tableau expects on connected-app tokens.
const audience = "tableau"

// scopes is the fixed scope set granted to every issued token.
var scopes = []string{"tableau:content:read", "tableau:workbooks:create"}

// Claims holds the connected-app JWT payload fields.
type Claims struct {
	Scopes []string `json:"scp"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 connected-app JWTs for a single
// client/secret pair. Each Sign call produces a fresh token with a unique
// `jti`, so tokens are single-use and replay-resistant.
type Issuer struct {
	clientID string
	secretID string
	secret   []byte
	username string
}

func NewIssuer(cfg *config.Config) (*Issuer, error) {
	if cfg.TableauCAClient == "" || cfg.TableauCASecretID == "" || cfg.TableauCASecretValue == "" {
		return nil, errors.New("connected-app credentials are not configured")
	}
	if cfg.TableauUsername == "" {
		return nil, errors.New("connected-app subject username is not configured")
	}
	return &Issuer{
		clientID: cfg.TableauCAClient,
		secretID: cfg.TableauCASecretID,
		secret:   []byte(cfg.TableauCASecretValue),
		username: cfg.TableauUsername,
	}, nil
}

// Sign issues a token valid for TokenTTL. The header carries the client ID
// as `iss` and the secret ID as `kid`, which Tableau requires alongside the
// matching payload claims.
func (i *Issuer) Sign() (string, error) {
	now := time.Now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.clientID,
			Subject:   i.username,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = i.secretID
	token.Header["iss"] = i.clientID
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign connected-app token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token with the issuer's secret and the tableau audience.
// It is used as a round-trip self-check after signing, not as an inbound
// authorization gate.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
