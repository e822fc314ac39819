// Package notion is the document-store client for the game tracking
// database. It pages through the database query endpoint to load
// records and issues partial page updates for the applier. The property
// codec lives here; nothing above this package sees Notion JSON.
package notion

import (
	"context"
	"net/http"
	"strings"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
	"github.com/questlog/questlog/pkg/logging"
)

const (
	serviceName = "notion"

	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// Config holds the Notion integration token and target database.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string
}

// Client talks to one Notion database.
type Client struct {
	http       *transport.Client
	baseURL    string
	databaseID string
}

// notionAuth applies the integration token and the pinned API version.
type notionAuth struct {
	token string
}

func (a notionAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Notion-Version", apiVersion)
	return nil
}

// New creates a Notion client. A nil limiter means unthrottled.
func New(cfg Config, limiter transport.Limiter) (*Client, error) {
	if cfg.Token == "" {
		return nil, &errors.ConfigError{Component: serviceName, Message: "integration token is required"}
	}
	if cfg.DatabaseID == "" {
		return nil, &errors.ConfigError{Component: serviceName, Message: "database id is required"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return &Client{
		http:       transport.New(serviceName, notionAuth{token: cfg.Token}, limiter),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		databaseID: cfg.DatabaseID,
	}, nil
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryRecords loads every record in the database, following pagination
// cursors. Pages that fail to decode are skipped with a warning rather
// than failing the whole load.
func (c *Client) QueryRecords(ctx context.Context) ([]*library.Record, error) {
	url := c.baseURL + "/v1/databases/" + c.databaseID + "/query"

	var records []*library.Record
	cursor := ""
	for {
		req := queryRequest{StartCursor: cursor, PageSize: constants.NotionPageSize}

		var resp queryResponse
		if err := c.http.PostJSON(ctx, url, req, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Results {
			record, err := decodeRecord(p)
			if err != nil {
				logging.Ctx(ctx).Warn().
					Str("page_id", p.ID).
					Err(err).
					Msg("Skipping undecodable page")
				continue
			}
			records = append(records, record)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	logging.Ctx(ctx).Debug().
		Int("records", len(records)).
		Msg("Loaded tracking database")

	return records, nil
}

type updateRequest struct {
	Properties map[string]property `json:"properties"`
}

// UpdateRecord issues one partial page update carrying exactly the
// given field changes. It implements the applier's Store interface.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, changes library.MergedUpdate) error {
	props := encodeChanges(changes)
	if len(props) == 0 {
		return nil
	}

	url := c.baseURL + "/v1/pages/" + recordID
	return c.http.PatchJSON(ctx, url, updateRequest{Properties: props}, nil)
}
