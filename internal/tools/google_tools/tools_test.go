package google_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/meetbook/internal/calendar"
	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	engine := scheduling.NewEngine(calendar.NewMemory(), scheduling.DefaultPolicy())
	sc, err := server.NewServerContext(context.Background(), desk.New(engine, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

// tokenServer answers the OAuth token exchange with a fixed token.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testAuth(t *testing.T, tokenURL string) (*server.AuthSettings, *google.FileTokenProvider, *int) {
	t.Helper()
	conf := google.OAuthConfig(google.Credentials{ClientID: "id", ClientSecret: "secret"})
	conf.Endpoint = oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL}

	tokens := google.NewFileTokenProvider(t.TempDir())
	saved := 0
	return &server.AuthSettings{
		OAuth:        conf,
		Tokens:       tokens,
		Account:      "default",
		OnTokenSaved: func() { saved++ },
	}, tokens, &saved
}

func TestRegisterGoogleTools(t *testing.T) {
	sc := newTestServerContext(t)

	s := mcpserver.NewMCPServer("meetbook", "test", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterGoogleTools(s, sc))
	assert.Empty(t, s.ListTools(), "no tools without OAuth settings")

	auth, _, _ := testAuth(t, "http://127.0.0.1/token")
	sc.SetAuth(auth)
	require.NoError(t, RegisterGoogleTools(s, sc))
	assert.Contains(t, s.ListTools(), "google_get_auth_url")
	assert.Contains(t, s.ListTools(), "google_save_auth_code")
}

func TestHandleGetAuthURL(t *testing.T) {
	sc := newTestServerContext(t)

	res, err := handleGetAuthURL(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	auth, _, _ := testAuth(t, "http://127.0.0.1/token")
	sc.SetAuth(auth)
	res, err = handleGetAuthURL(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "https://accounts.example.com/auth?")
	assert.Contains(t, text(t, res), "google_save_auth_code")
}

func TestHandleSaveAuthCode(t *testing.T) {
	srv := tokenServer(t)
	sc := newTestServerContext(t)
	auth, tokens, saved := testAuth(t, srv.URL)
	sc.SetAuth(auth)

	res, err := handleSaveAuthCode(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"authCode": "good-code"}},
	}, sc)
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "Authorization successful for account 'default'")
	assert.Equal(t, 1, *saved)

	tok, err := tokens.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
}

func TestHandleSaveAuthCode_Errors(t *testing.T) {
	srv := tokenServer(t)
	sc := newTestServerContext(t)
	auth, tokens, saved := testAuth(t, srv.URL)
	sc.SetAuth(auth)

	res, err := handleSaveAuthCode(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "authCode is required", text(t, res))

	res, err = handleSaveAuthCode(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"authCode": "bad-code"}},
	}, sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Failed to exchange authorization code")
	assert.Equal(t, 0, *saved)
	assert.False(t, tokens.HasTokenForAccount("default"))
}
