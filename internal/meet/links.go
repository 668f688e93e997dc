package meet

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/meetbook/internal/google"
)

// Links creates Meet links, building the client on first use so that a
// token saved after startup is picked up.
type Links struct {
	account string
	conf    *oauth2.Config
	tokens  google.TokenProvider

	mu     sync.Mutex
	client *Client
}

// NewLinks returns a lazy link provider for account.
func NewLinks(account string, conf *oauth2.Config, tokens google.TokenProvider) *Links {
	return &Links{account: account, conf: conf, tokens: tokens}
}

// MeetingLink creates a space and returns its join link.
func (l *Links) MeetingLink(ctx context.Context) (string, error) {
	c, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return c.MeetingLink(ctx)
}

// Reset drops the cached client so the next call reloads the token.
func (l *Links) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.client = nil
}

func (l *Links) get(ctx context.Context) (*Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}
	c, err := NewClient(ctx, l.account, l.conf, l.tokens)
	if err != nil {
		return nil, err
	}
	l.client = c
	return c, nil
}
