package meet

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	meet "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"

	"github.com/teemow/meetbook/internal/google"
)

// Client wraps the Google Meet service.
type Client struct {
	svc        *meet.Service
	account    string
	accessType string
}

// NewClient creates a Meet client for account using the token held by
// tokens.
func NewClient(ctx context.Context, account string, conf *oauth2.Config, tokens google.TokenProvider) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token provider cannot be nil")
	}

	tok, err := tokens.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	svc, err := meet.NewService(ctx, option.WithHTTPClient(google.HTTPClient(ctx, conf, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Meet service: %w", err)
	}
	return NewClientWithService(svc, account), nil
}

// NewClientWithService wraps an existing service.
func NewClientWithService(svc *meet.Service, account string) *Client {
	return &Client{svc: svc, account: account, accessType: AccessTrusted}
}

// Account returns the account this client acts for.
func (c *Client) Account() string {
	return c.account
}

// SetAccessType sets the access type of spaces created afterwards.
func (c *Client) SetAccessType(accessType string) {
	c.accessType = accessType
}

// CreateSpace creates a new meeting space.
func (c *Client) CreateSpace(ctx context.Context) (*Space, error) {
	space := &meet.Space{}
	if c.accessType != "" {
		space.Config = &meet.SpaceConfig{AccessType: c.accessType}
	}

	created, err := c.svc.Spaces.Create(space).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}
	return toSpace(created), nil
}

// MeetingLink creates a space and returns its join link.
func (c *Client) MeetingLink(ctx context.Context) (string, error) {
	space, err := c.CreateSpace(ctx)
	if err != nil {
		return "", err
	}
	if space.MeetingURI == "" {
		return "", fmt.Errorf("space %s has no meeting URI", space.Name)
	}
	return space.MeetingURI, nil
}

func toSpace(s *meet.Space) *Space {
	space := &Space{
		Name:        s.Name,
		MeetingURI:  s.MeetingUri,
		MeetingCode: s.MeetingCode,
	}
	if s.Config != nil {
		space.AccessType = s.Config.AccessType
	}
	return space
}
