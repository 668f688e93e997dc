// Package google provides OAuth2 configuration and token management for the
// Google Calendar and Meet APIs.
//
// Tokens are kept per account. FileTokenProvider stores them as JSON files
// in the token directory; StoreTokenProvider keeps a process-local cache in
// an mcp-oauth TokenStore in front of another provider.
package google
