// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The calendar tools need a Google token for the configured account. When
// it is missing or revoked:
//  1. Call google_get_auth_url to get the authorization URL
//  2. The user visits the URL and authorizes calendar access
//  3. The user provides the authorization code
//  4. Call google_save_auth_code with the code to store the token
//
// The saved token is refreshed automatically afterwards.
package google_tools
