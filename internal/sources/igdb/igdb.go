// Package igdb adapts the IGDB game-information catalog to the
// reconciliation engine. It authenticates via Twitch OAuth2 client
// credentials, searches with IGDB's Apicalypse query language, and
// normalizes responses into catalog candidates at the boundary so
// nothing above this package sees raw IGDB JSON.
package igdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/library"
)

const (
	serviceName = "igdb"

	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
)

// searchFields is the Apicalypse field list requested for every search.
const searchFields = "name,slug,url,first_release_date,aggregated_rating," +
	"platforms.name,genres.name,cover.url"

// Config holds IGDB credentials and endpoints. Zero URLs fall back to
// the production endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	SearchLimit  int
}

// Client is the IGDB catalog adapter.
type Client struct {
	http    *transport.Client
	baseURL string
	limit   int
}

// New creates an IGDB client. A nil limiter means unthrottled.
func New(cfg Config, limiter transport.Limiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = constants.SearchLimit
	}

	auth := newTwitchAuth(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL)
	return &Client{
		http:    transport.New(serviceName, auth, limiter),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		limit:   cfg.SearchLimit,
	}
}

// Name implements the catalog source interface.
func (c *Client) Name() library.Source {
	return library.SourceIGDB
}

// game mirrors the subset of the IGDB /games response we consume.
type game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	URL              string  `json:"url"`
	FirstReleaseDate int64   `json:"first_release_date"`
	AggregatedRating float64 `json:"aggregated_rating"`
	Platforms        []named `json:"platforms"`
	Genres           []named `json:"genres"`
	Cover            *struct {
		URL string `json:"url"`
	} `json:"cover"`
}

type named struct {
	Name string `json:"name"`
}

// Search queries IGDB by title and returns normalized candidates.
func (c *Client) Search(ctx context.Context, title string) ([]library.Candidate, error) {
	query := fmt.Sprintf("search %q; fields %s; limit %d;", title, searchFields, c.limit)

	var games []game
	if err := c.http.PostJSON(ctx, c.baseURL+"/games", []byte(query), &games); err != nil {
		return nil, err
	}

	candidates := make([]library.Candidate, 0, len(games))
	for _, g := range games {
		candidates = append(candidates, normalize(g))
	}
	return candidates, nil
}

// normalize converts one IGDB game into a catalog candidate.
func normalize(g game) library.Candidate {
	c := library.Candidate{
		ID:           g.Slug,
		Title:        g.Name,
		URL:          g.URL,
		CriticRating: g.AggregatedRating,
	}
	if c.ID == "" {
		c.ID = strconv.FormatInt(g.ID, 10)
	}
	if g.FirstReleaseDate != 0 {
		c.ReleaseDate = library.DateFromUnix(g.FirstReleaseDate)
	}
	for _, p := range g.Platforms {
		c.Platforms = append(c.Platforms, p.Name)
	}
	for _, genre := range g.Genres {
		c.Genres = append(c.Genres, genre.Name)
	}
	if g.Cover != nil {
		c.CoverURL = coverURL(g.Cover.URL)
	}
	return c
}

// coverURL upgrades IGDB's thumbnail variant to the full-size cover and
// resolves protocol-relative URLs.
func coverURL(raw string) string {
	if raw == "" {
		return ""
	}
	full := strings.Replace(raw, "t_thumb", "t_cover_big_2x", 1)
	if strings.HasPrefix(full, "//") {
		full = "https:" + full
	}
	return full
}
