// Package nba is a small client for the stats.nba.com JSON endpoints.
//
// Every endpoint answers with a list of result sets, each a header row plus a
// row set of loosely typed values. Columns are looked up by header name so the
// callers never depend on column positions.
package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"courtside/metrics"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://stats.nba.com/stats"

const (
	DefaultSeasonType = "Regular Season"
	DefaultPerMode    = "PerGame"
	DefaultTimeout    = 30 * time.Second
	DefaultPace       = time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	pacer      Pacer
	seasonType string
	perMode    string
	logger     *zap.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout bounds each upstream request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithPacer(p Pacer) Option {
	return func(c *Client) { c.pacer = p }
}

func WithSeasonType(t string) Option {
	return func(c *Client) { c.seasonType = t }
}

func WithPerMode(m string) Option {
	return func(c *Client) { c.perMode = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		pacer:      NewMinIntervalPacer(DefaultPace),
		seasonType: DefaultSeasonType,
		perMode:    DefaultPerMode,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

type Response struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
}

// ResultSet returns the table called name. When no table carries that name
// the table at position index is used instead.
func (r *Response) ResultSet(name string, index int) (*ResultSet, error) {
	for i := range r.ResultSets {
		if r.ResultSets[i].Name == name {
			return &r.ResultSets[i], nil
		}
	}
	if index >= 0 && index < len(r.ResultSets) {
		return &r.ResultSets[index], nil
	}
	return nil, fmt.Errorf("result set %q not found in %d result sets", name, len(r.ResultSets))
}

type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (rs *ResultSet) Len() int {
	return len(rs.RowSet)
}

// Column returns the index of the named header, or -1.
func (rs *ResultSet) Column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func (rs *ResultSet) value(row int, column string) (any, error) {
	if row < 0 || row >= len(rs.RowSet) {
		return nil, fmt.Errorf("%s: row %d out of range (%d rows)", rs.Name, row, len(rs.RowSet))
	}
	col := rs.Column(column)
	if col < 0 {
		return nil, fmt.Errorf("%s: missing column %s", rs.Name, column)
	}
	if col >= len(rs.RowSet[row]) {
		return nil, fmt.Errorf("%s: row %d has no value for %s", rs.Name, row, column)
	}
	return rs.RowSet[row][col], nil
}

func (rs *ResultSet) Float(row int, column string) (float64, error) {
	v, err := rs.value(row, column)
	if err != nil {
		return 0, err
	}
	f := maybe[float64](v)
	if f == nil {
		return 0, fmt.Errorf("%s: %s is %T, not a number", rs.Name, column, v)
	}
	return *f, nil
}

// String also accepts numeric cells, which stats.nba.com uses for some ids.
func (rs *ResultSet) String(row int, column string) (string, error) {
	v, err := rs.value(row, column)
	if err != nil {
		return "", err
	}
	if s := maybe[string](v); s != nil {
		return *s, nil
	}
	if f := maybe[float64](v); f != nil {
		return strconv.FormatFloat(*f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%s: %s is %T, not a string", rs.Name, column, v)
}

// TeamDashboard fetches the advanced general splits of a team for a season.
// The "Overall" table carries OFF_RATING.
func (c *Client) TeamDashboard(ctx context.Context, teamID int, season string) (*Response, error) {
	params := url.Values{
		"DateFrom":       {""},
		"DateTo":         {""},
		"GameSegment":    {""},
		"LastNGames":     {"0"},
		"LeagueID":       {"00"},
		"Location":       {""},
		"MeasureType":    {"Advanced"},
		"Month":          {"0"},
		"OpponentTeamID": {"0"},
		"Outcome":        {""},
		"PORound":        {"0"},
		"PaceAdjust":     {"N"},
		"PerMode":        {"PerGame"},
		"Period":         {"0"},
		"PlusMinus":      {"N"},
		"Rank":           {"N"},
		"Season":         {season},
		"SeasonSegment":  {""},
		"SeasonType":     {c.seasonType},
		"ShotClockRange": {""},
		"TeamID":         {strconv.Itoa(teamID)},
		"VsConference":   {""},
		"VsDivision":     {""},
	}
	return c.get(ctx, "teamdashboardbygeneralsplits", params)
}

// PlayerCareer fetches the season-by-season and career tables of a player.
func (c *Client) PlayerCareer(ctx context.Context, playerID int) (*Response, error) {
	params := url.Values{
		"LeagueID": {"00"},
		"PerMode":  {c.perMode},
		"PlayerID": {strconv.Itoa(playerID)},
	}
	return c.get(ctx, "playercareerstats", params)
}

func (c *Client) initNBAReq(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Referer", "https://www.nba.com/")
	req.Header.Add("Origin", "https://www.nba.com")
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Add("x-nba-stats-origin", "stats")
	req.Header.Add("x-nba-stats-token", "true")
	return req, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacing %s: %w", endpoint, err)
	}

	start := time.Now()
	resp, err := c.do(ctx, endpoint, params)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("upstream request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()
	return resp, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	req, err := c.initNBAReq(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, truncate(body, 200))
	}

	unmarshalledBody := Response{}
	if err := json.Unmarshal(body, &unmarshalledBody); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return &unmarshalledBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func maybe[T any](x any) *T {
	if x, ok := x.(T); ok {
		return &x
	}
	return nil
}
