package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tableau-notifier/internal/config"
	"github.com/tableau-notifier/internal/domain"
)

// apiVersion is the REST API version for stable endpoints; broadcasts live
// under the exp namespace.
const apiVersion = "3.22"

const pageSize = 100

// authHeader carries the session key on authenticated calls.
const authHeader = "X-Tableau-Auth"

// Session is an authenticated REST API session: the session key plus the
// site it is scoped to.
type Session struct {
	Token  string
	SiteID string
}

// Client is a minimal JSON client for the Tableau REST API. It covers only
// the calls this system needs: the two sign-in flows, data source listing,
// and broadcast listing/update.
type Client struct {
	baseURL  string
	siteName string
	hc       *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.TableauServer,
		siteName: cfg.TableauSiteName,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

type siteRef struct {
	ID         string `json:"id,omitempty"`
	ContentURL string `json:"contentUrl,omitempty"`
}

type credentialsBody struct {
	PersonalAccessTokenName   string  `json:"personalAccessTokenName,omitempty"`
	PersonalAccessTokenSecret string  `json:"personalAccessTokenSecret,omitempty"`
	JWT                       string  `json:"jwt,omitempty"`
	Token                     string  `json:"token,omitempty"`
	Site                      siteRef `json:"site"`
}

type signInEnvelope struct {
	Credentials credentialsBody `json:"credentials"`
}

// SignInPAT authenticates with a personal access token and returns a session.
func (c *Client) SignInPAT(ctx context.Context, patName, patSecret string) (*Session, error) {
	return c.signIn(ctx, signInEnvelope{Credentials: credentialsBody{
		PersonalAccessTokenName:   patName,
		PersonalAccessTokenSecret: patSecret,
		Site:                      siteRef{ContentURL: c.siteName},
	}})
}

// SignInJWT authenticates with a connected-app token and returns a session.
func (c *Client) SignInJWT(ctx context.Context, token string) (*Session, error) {
	return c.signIn(ctx, signInEnvelope{Credentials: credentialsBody{
		JWT:  token,
		Site: siteRef{ContentURL: c.siteName},
	}})
}

func (c *Client) signIn(ctx context.Context, body signInEnvelope) (*Session, error) {
	var resp signInEnvelope
	url := fmt.Sprintf("%s/api/%s/auth/signin", c.baseURL, apiVersion)
	if err := c.do(ctx, http.MethodPost, url, "", body, &resp); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.Credentials.Token == "" {
		return nil, fmt.Errorf("sign in: empty session token in response")
	}
	return &Session{Token: resp.Credentials.Token, SiteID: resp.Credentials.Site.ID}, nil
}

// SignOut invalidates the session key. Errors are returned but callers may
// reasonably ignore them; the key expires server-side regardless.
func (c *Client) SignOut(ctx context.Context, s *Session) error {
	url := fmt.Sprintf("%s/api/%s/auth/signout", c.baseURL, apiVersion)
	return c.do(ctx, http.MethodPost, url, s.Token, nil, nil)
}

// Tableau serialises pagination counters as JSON strings.
type pagination struct {
	PageNumber     string `json:"pageNumber"`
	PageSize       string `json:"pageSize"`
	TotalAvailable string `json:"totalAvailable"`
}

func (p pagination) total() int {
	n, _ := strconv.Atoi(p.TotalAvailable)
	return n
}

type datasourceItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type datasourceListResponse struct {
	Pagination  pagination `json:"pagination"`
	Datasources struct {
		Datasource []datasourceItem `json:"datasource"`
	} `json:"datasources"`
}

// ListDatasources fetches every data source on the session's site, following
// pagination until the reported total is reached.
func (c *Client) ListDatasources(ctx context.Context, s *Session) ([]domain.DataSource, error) {
	var all []domain.DataSource
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/api/%s/sites/%s/datasources?pageSize=%d&pageNumber=%d",
			c.baseURL, apiVersion, s.SiteID, pageSize, page)
		var resp datasourceListResponse
		if err := c.do(ctx, http.MethodGet, url, s.Token, nil, &resp); err != nil {
			return nil, fmt.Errorf("list datasources (page %d): %w", page, err)
		}
		for _, d := range resp.Datasources.Datasource {
			all = append(all, domain.DataSource{
				ID:          d.ID,
				Name:        d.Name,
				Description: d.Description,
				UpdatedAt:   d.UpdatedAt,
			})
		}
		if len(all) >= resp.Pagination.total() || len(resp.Datasources.Datasource) == 0 {
			return all, nil
		}
	}
}

type broadcastItem struct {
	ID       string `json:"id"`
	Workbook struct {
		ID string `json:"id"`
	} `json:"workbook"`
}

type broadcastListResponse struct {
	Broadcasts struct {
		Broadcast []broadcastItem `json:"broadcast"`
	} `json:"broadcasts"`
}

// ListBroadcasts fetches all broadcast resources on the session's site.
func (c *Client) ListBroadcasts(ctx context.Context, s *Session) ([]domain.Broadcast, error) {
	url := fmt.Sprintf("%s/api/exp/sites/%s/broadcasts", c.baseURL, s.SiteID)
	var resp broadcastListResponse
	if err := c.do(ctx, http.MethodGet, url, s.Token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	out := make([]domain.Broadcast, 0, len(resp.Broadcasts.Broadcast))
	for _, b := range resp.Broadcasts.Broadcast {
		out = append(out, domain.Broadcast{ID: b.ID, WorkbookID: b.Workbook.ID})
	}
	return out, nil
}

type broadcastUpdateBody struct {
	Broadcast struct {
		Suspended bool `json:"suspended"`
		SendEmail bool `json:"sendEmail"`
	} `json:"broadcast"`
}

// UpdateBroadcast triggers an update of one broadcast. The two flags map to
// the platform's suspend and email-notification toggles.
func (c *Client) UpdateBroadcast(ctx context.Context, s *Session, broadcastID string, suspended, sendEmail bool) error {
	var body broadcastUpdateBody
	body.Broadcast.Suspended = suspended
	body.Broadcast.SendEmail = sendEmail
	url := fmt.Sprintf("%s/api/exp/sites/%s/broadcasts/%s", c.baseURL, s.SiteID, broadcastID)
	if err := c.do(ctx, http.MethodPut, url, s.Token, body, nil); err != nil {
		return fmt.Errorf("update broadcast %s: %w", broadcastID, err)
	}
	return nil
}

// do performs one JSON request/response round trip. A non-2xx status becomes
// an error carrying the status and a snippet of the response body; 401
// additionally wraps domain.ErrUnauthorized for handler-level mapping.
func (c *Client) do(ctx context.Context, method, url, sessionToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set(authHeader, sessionToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("tableau returned %d: %s: %w", resp.StatusCode, snippet, domain.ErrUnauthorized)
		}
		return fmt.Errorf("tableau returned %d: %s", resp.StatusCode, snippet)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
