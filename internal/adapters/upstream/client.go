// Package upstream is the HTTP adapter for the fantasy provider's REST API.
// It owns transport concerns only (auth, request ids, retry, decoding into
// payload trees); what the payloads mean is the domain layer's business.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	scope "github.com/fantail/fantail/internal/domain/scope"
	tree "github.com/fantail/fantail/internal/domain/tree"
	"github.com/fantail/fantail/pkg/logger"
	"github.com/fantail/fantail/pkg/metrics"
)

const (
	defaultBaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"
	defaultTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

// Client talks to the provider API and decodes responses into trees.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithToken sets the OAuth bearer token attached to every request. Token
// acquisition and refresh happen outside this client.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a provider API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// League fetches the league header (metadata only).
func (c *Client) League(ctx context.Context, leagueKey string) (tree.Node, error) {
	return c.get(ctx, "/league/"+leagueKey)
}

// Settings fetches the league settings, including stat category definitions.
func (c *Client) Settings(ctx context.Context, leagueKey string) (tree.Node, error) {
	return c.get(ctx, "/league/"+leagueKey+"/settings")
}

// Teams fetches the league's team list.
func (c *Client) Teams(ctx context.Context, leagueKey string) (tree.Node, error) {
	return c.get(ctx, "/league/"+leagueKey+"/teams")
}

// Standings fetches the league standings with embedded team records.
func (c *Client) Standings(ctx context.Context, leagueKey string) (tree.Node, error) {
	return c.get(ctx, "/league/"+leagueKey+"/standings")
}

// Scoreboard fetches one week's matchups; week 0 means the current week.
func (c *Client) Scoreboard(ctx context.Context, leagueKey string, week int) (tree.Node, error) {
	path := "/league/" + leagueKey + "/scoreboard"
	if week > 0 {
		path += fmt.Sprintf(";week=%d", week)
	}
	return c.get(ctx, path)
}

// Roster fetches a team's current roster.
func (c *Client) Roster(ctx context.Context, teamKey string) (tree.Node, error) {
	return c.get(ctx, "/team/"+teamKey+"/roster/players")
}

// PlayerStats fetches stats for up to one chunk of players in a league,
// scoped by the fetch spec.
func (c *Client) PlayerStats(ctx context.Context, leagueKey string, playerKeys []string, spec scope.FetchSpec) (tree.Node, error) {
	path := "/league/" + leagueKey +
		"/players;player_keys=" + strings.Join(playerKeys, ",") +
		"/stats" + specParams(spec)
	return c.get(ctx, path)
}

// TeamStats fetches stats for one chunk of teams, scoped by the fetch spec.
func (c *Client) TeamStats(ctx context.Context, teamKeys []string, spec scope.FetchSpec) (tree.Node, error) {
	path := "/teams;team_keys=" + strings.Join(teamKeys, ",") +
		"/stats" + specParams(spec)
	return c.get(ctx, path)
}

// specParams renders a fetch spec as the provider's matrix-parameter suffix.
func specParams(spec scope.FetchSpec) string {
	switch spec.Type {
	case scope.FetchWeek:
		return fmt.Sprintf(";type=week;week=%d", spec.Week)
	case scope.FetchDate:
		return ";type=date;date=" + spec.Date
	case scope.FetchDateRange:
		return ";type=date_range;start_date=" + spec.From + ";end_date=" + spec.To
	default:
		if spec.Season != "" {
			return ";type=season;season=" + spec.Season
		}
		return ";type=season"
	}
}

// get performs one GET with auth and request id, retrying once on 429 and
// 5xx responses before giving up.
func (c *Client) get(ctx context.Context, path string) (tree.Node, error) {
	url := c.baseURL + path + "?format=json"
	requestID := uuid.NewString()

	var lastStatus int
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return tree.Node{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
			c.log.Warn(ctx, "retrying upstream request",
				logger.String("path", path),
				logger.String("request_id", requestID),
				logger.Int("last_status", lastStatus))
		}

		node, status, err := c.do(ctx, url, requestID)
		if err != nil {
			return tree.Node{}, err
		}
		if status == http.StatusOK {
			return node, nil
		}
		lastStatus = status
		if !retryable(status) {
			break
		}
	}

	if lastStatus == http.StatusUnauthorized || lastStatus == http.StatusForbidden {
		return tree.Node{}, fmt.Errorf("%w: status %d", ErrUnauthorized, lastStatus)
	}
	return tree.Node{}, fmt.Errorf("%w: status %d on %s", ErrBadStatus, lastStatus, path)
}

func (c *Client) do(ctx context.Context, url, requestID string) (tree.Node, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tree.Node{}, 0, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tree.Node{}, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	metrics.RecordFetchDuration(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across the retry.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return tree.Node{}, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return tree.Node{}, 0, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	node, err := tree.Parse(body)
	if err != nil {
		return tree.Node{}, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return node, http.StatusOK, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
