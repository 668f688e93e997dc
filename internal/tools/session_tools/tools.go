package session_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/server"
	"github.com/teemow/meetbook/internal/tools/common"
)

// RegisterSessionTools registers the greeting tools with the MCP server
func RegisterSessionTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	greetUserTool := mcp.NewTool("greet_user",
		mcp.WithDescription("Greet the user, explain what you can help with and ask for their name if it is not known yet. Call this at the start of a conversation."),
	)
	s.AddTool(greetUserTool, common.InstrumentedToolHandler("greet_user", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGreetUser(ctx, request, sc)
		}))

	setUserNameTool := mcp.NewTool("set_user_name",
		mcp.WithDescription("Remember the user's name for the rest of the conversation"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name the user gave"),
		),
	)
	s.AddTool(setUserNameTool, common.InstrumentedToolHandler("set_user_name", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSetUserName(ctx, request, sc)
		}))

	return nil
}

func handleGreetUser(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(sc.Desk().Greeting(sc.Session(ctx))), nil
}

func handleSetUserName(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	return mcp.NewToolResultText(sc.Desk().SetUserName(sc.Session(ctx), name)), nil
}
