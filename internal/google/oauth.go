package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
)

// DefaultRedirectURL is the loopback redirect registered for desktop OAuth
// clients. After consent the browser lands on it with ?code=... which the
// user pastes into "meetbook auth".
const DefaultRedirectURL = "http://localhost"

// Credentials identify the OAuth client.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig returns the OAuth2 configuration for c.
func OAuthConfig(c Credentials) *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       Scopes,
	}
}

// AuthURL returns the consent URL. Offline access with forced consent makes
// Google issue a refresh token every time.
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token.
func Exchange(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return tok, nil
}

// HTTPClient returns an authenticated client that refreshes tok as needed.
// The client is pinned to HTTP/1.1 to avoid HTTP/2 stream errors seen with
// the Google API frontends.
func HTTPClient(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, tok))
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}

// IsAuthError reports whether err means the stored credentials are no
// longer usable: a refresh the token endpoint rejected with 400 or 401, a
// 401 from the API, or an error mentioning an invalid, expired or revoked
// grant. Token endpoint outages are not auth errors.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant", "invalid_client", "unauthorized_client":
			return true
		}
		if r := retrieveErr.Response; r != nil {
			return r.StatusCode == http.StatusBadRequest || r.StatusCode == http.StatusUnauthorized
		}
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "expired") ||
		strings.Contains(msg, "revoked")
}

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return errors.New("account name cannot be empty")
	}
	if !accountNameRe.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// DefaultTokenDir returns the per-user cache directory for token files.
func DefaultTokenDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "meetbook")
}

func tokenFileName(account string) string {
	return "google-" + account + ".token"
}

// LoadToken reads a JSON encoded token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file %s: no access or refresh token", path)
	}
	return &tok, nil
}

// SaveToken writes tok to path as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
