// Package cmd implements the command-line interface for meetbook.
//
// This package provides the following commands:
//   - serve: Start the MCP server with the scheduling tools
//   - availability: Print the open slots on a day
//   - book: Book a meeting from the terminal
//   - auth: Authorize Google Calendar access and store the token
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
