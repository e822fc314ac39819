package igdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/logging"
)

// expirySlack refreshes tokens slightly before Twitch says they expire
// so an in-flight request never carries a token about to lapse.
const expirySlack = time.Minute

// twitchAuth obtains and caches Twitch OAuth2 client-credentials tokens
// and applies them, with the Client-ID header IGDB requires, to each
// outgoing request.
type twitchAuth struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTwitchAuth(clientID, clientSecret, tokenURL string) *twitchAuth {
	return &twitchAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		http:         &http.Client{Timeout: constants.TokenTimeout},
	}
}

// Apply implements transport.Authenticator.
func (a *twitchAuth) Apply(req *http.Request) error {
	token, err := a.accessToken(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Client-ID", a.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// accessToken returns the cached token, fetching a fresh one when the
// cache is empty or near expiry.
func (a *twitchAuth) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiry.Add(-expirySlack)) {
		return a.token, nil
	}

	form := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", &errors.AuthenticationError{
			Service: serviceName,
			Method:  "client_credentials",
			Message: "token request failed",
			Err:     err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", &errors.AuthenticationError{
			Service: serviceName,
			Method:  "client_credentials",
			Message: fmt.Sprintf("token request rejected with status %d", resp.StatusCode),
		}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := transport.DecodeResponse(serviceName, resp, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", &errors.AuthenticationError{
			Service: serviceName,
			Method:  "client_credentials",
			Message: "token response carried no access token",
		}
	}

	a.token = body.AccessToken
	a.expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)

	logging.Ctx(ctx).Debug().
		Str("service", serviceName).
		Time("expiry", a.expiry).
		Msg("Refreshed catalog access token")

	return a.token, nil
}
