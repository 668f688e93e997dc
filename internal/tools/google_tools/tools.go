package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/logging"
	"github.com/teemow/meetbook/internal/server"
	"github.com/teemow/meetbook/internal/tools/common"
)

// RegisterGoogleTools registers the Google OAuth tools with the MCP server.
// It registers nothing when the server has no OAuth settings.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.Auth() == nil {
		return nil
	}

	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize access to the team's Google Calendar"),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Calendar authentication"),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	return nil
}

func handleGetAuthURL(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	auth := sc.Auth()
	if auth == nil || auth.OAuth == nil {
		return mcp.NewToolResultError("Google OAuth is not configured"), nil
	}

	authURL := google.AuthURL(auth.OAuth, "meetbook")

	result := fmt.Sprintf(`To authorize Google Calendar access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account that owns the team calendar
3. Grant access to Google Calendar
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code to complete authentication`, auth.Account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	auth := sc.Auth()
	if auth == nil || auth.OAuth == nil {
		return mcp.NewToolResultError("Google OAuth is not configured"), nil
	}

	authCode := request.GetString("authCode", "")
	if authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	saver, ok := auth.Tokens.(google.TokenSaver)
	if !ok {
		return mcp.NewToolResultError("The configured token store is read-only"), nil
	}

	tok, err := google.Exchange(ctx, auth.OAuth, authCode)
	if err != nil {
		sc.Logger().Warn("auth code exchange failed", logging.Tool("google_save_auth_code"), logging.Err(err))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to exchange authorization code for account %s: %v", auth.Account, err)), nil
	}

	if err := saver.SaveTokenForAccount(ctx, auth.Account, tok); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save token for account %s: %v", auth.Account, err)), nil
	}

	if auth.OnTokenSaved != nil {
		auth.OnTokenSaved()
	}
	sc.Logger().Info("google token saved", logging.Tool("google_save_auth_code"))

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'! Google Calendar token saved. You can now check availability and schedule meetings.", auth.Account)), nil
}
