// Package transport provides shared HTTP plumbing for the catalog and
// document-store clients: authenticated requests, response decoding,
// bounded retries, and per-service rate limiting.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
)

// Authenticator applies credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request) error
}

// NoAuth performs no authentication.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request) error { return nil }

// BearerAuth sets an Authorization: Bearer header.
type BearerAuth struct {
	Token string
}

// Apply implements Authenticator.
func (a BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// Client wraps http.Client with authentication, rate limiting, and
// JSON conventions shared by every external service we talk to.
type Client struct {
	service string
	http    *http.Client
	auth    Authenticator
	limiter Limiter
}

// New creates a transport client for the named service. A nil limiter
// means unthrottled.
func New(service string, auth Authenticator, limiter Limiter) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &Client{
		service: service,
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:    auth,
		limiter: limiter,
	}
}

// SetAuth replaces the client's authenticator. Used when a token is
// refreshed mid-pass.
func (c *Client) SetAuth(auth Authenticator) {
	c.auth = auth
}

// Do performs a request after waiting for the service's rate-limit
// budget and applying authentication. Non-2xx responses are drained and
// returned as *errors.APIError.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if err := c.auth.Apply(req); err != nil {
		return nil, &errors.AuthenticationError{
			Service: c.service,
			Method:  "bearer_token",
			Message: "failed to apply credentials",
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPatch || req.Method == http.MethodPut {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.ErrCanceled
		}
		return nil, &errors.APIError{Service: c.service, Endpoint: req.URL.Path, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &errors.APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Message:    string(bytes.TrimSpace(body)),
		}
	}

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(c.service, resp, out)
}

// PostJSON performs a POST with a JSON (or raw) body and decodes the
// JSON response into out. body may be a []byte for pre-encoded payloads
// (the IGDB query language is not JSON) or any JSON-marshalable value.
func (c *Client) PostJSON(ctx context.Context, url string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, url, body, out)
}

// PatchJSON performs a PATCH with a JSON body and decodes the response.
func (c *Client) PatchJSON(ctx context.Context, url string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, url, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, url string, body any, out any) error {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		if err != nil {
			return errors.WrapParse("json", c.service+" request", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(c.service, resp, out)
}

// DecodeResponse decodes a JSON response body into out and closes the
// body. A nil out drains and closes without decoding.
func DecodeResponse(service string, resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", service+" response", err)
	}
	return nil
}
