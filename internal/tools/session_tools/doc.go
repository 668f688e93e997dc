// Package session_tools provides the conversational MCP tools that keep
// track of who the agent is talking to.
//
// greet_user opens the conversation and asks for the user's name when it
// is not known yet; set_user_name stores it on the MCP session.
package session_tools
