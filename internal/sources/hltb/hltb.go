// Package hltb adapts the HowLongToBeat completion-time catalog to the
// reconciliation engine. HowLongToBeat exposes an unauthenticated JSON
// search API; responses report play times in seconds, which are
// converted to hours here so nothing above this package handles raw
// second counts.
package hltb

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/library"
)

const (
	serviceName = "hltb"

	defaultBaseURL = "https://howlongtobeat.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// Config holds HowLongToBeat endpoints. A zero BaseURL falls back to
// the production endpoint.
type Config struct {
	BaseURL     string
	SearchLimit int
}

// Client is the HowLongToBeat catalog adapter.
type Client struct {
	http    *transport.Client
	baseURL string
	limit   int
}

// browserHeaders satisfies transport.Authenticator. The search API
// rejects requests without a browser-like User-Agent and Referer.
type browserHeaders struct {
	referer string
}

func (h browserHeaders) Apply(req *http.Request) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", h.referer)
	return nil
}

// New creates a HowLongToBeat client. A nil limiter means unthrottled.
func New(cfg Config, limiter transport.Limiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = constants.SearchLimit
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		http:    transport.New(serviceName, browserHeaders{referer: base + "/"}, limiter),
		baseURL: base,
		limit:   cfg.SearchLimit,
	}
}

// Name implements the catalog source interface.
func (c *Client) Name() library.Source {
	return library.SourceHLTB
}

type searchRequest struct {
	SearchType  string        `json:"searchType"`
	SearchTerms []string      `json:"searchTerms"`
	SearchPage  int           `json:"searchPage"`
	Size        int           `json:"size"`
	Options     searchOptions `json:"searchOptions"`
}

type searchOptions struct {
	Games gameOptions `json:"games"`
}

type gameOptions struct {
	UserID   int    `json:"userId"`
	Platform string `json:"platform"`
}

// entry mirrors the subset of an HLTB search hit we consume. Play times
// are in seconds.
type entry struct {
	GameID       int64   `json:"game_id"`
	GameName     string  `json:"game_name"`
	CompMain     int64   `json:"comp_main"`
	CompPlus     int64   `json:"comp_plus"`
	Comp100      int64   `json:"comp_100"`
	ReviewScore  float64 `json:"review_score"`
	ReleaseWorld int     `json:"release_world"`
}

type searchResponse struct {
	Data []entry `json:"data"`
}

// Search queries HowLongToBeat by title and returns normalized
// candidates.
func (c *Client) Search(ctx context.Context, title string) ([]library.Candidate, error) {
	req := searchRequest{
		SearchType:  "games",
		SearchTerms: strings.Fields(title),
		SearchPage:  1,
		Size:        c.limit,
	}

	var resp searchResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/api/search", req, &resp); err != nil {
		return nil, err
	}

	candidates := make([]library.Candidate, 0, len(resp.Data))
	for _, e := range resp.Data {
		candidates = append(candidates, c.normalize(e))
	}
	return candidates, nil
}

// normalize converts one search hit into a catalog candidate.
func (c *Client) normalize(e entry) library.Candidate {
	id := strconv.FormatInt(e.GameID, 10)
	cand := library.Candidate{
		ID:                 id,
		Title:              e.GameName,
		URL:                c.baseURL + "/game/" + id,
		MainStoryHours:     Hours(e.CompMain),
		MainExtraHours:     Hours(e.CompPlus),
		CompletionistHours: Hours(e.Comp100),
		ReviewScore:        e.ReviewScore,
	}
	if e.ReleaseWorld != 0 {
		cand.ReleaseDate = library.YearOnly(e.ReleaseWorld)
	}
	return cand
}

// Hours converts an HLTB second count to hours with two-decimal
// precision.
func Hours(seconds int64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Round(float64(seconds)/36) / 100
}
