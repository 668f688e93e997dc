package google

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth tokens per account.
type TokenProvider interface {
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)
	HasTokenForAccount(account string) bool
}

// TokenSaver persists OAuth tokens per account.
type TokenSaver interface {
	SaveTokenForAccount(ctx context.Context, account string, tok *oauth2.Token) error
}

// FileTokenProvider stores tokens as JSON files in a directory.
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider returns a provider rooted at dir, or at
// DefaultTokenDir when dir is empty.
func NewFileTokenProvider(dir string) *FileTokenProvider {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenProvider{dir: dir}
}

// Path returns the token file path for account.
func (p *FileTokenProvider) Path(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(p.dir, tokenFileName(account)), nil
}

func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	path, err := p.Path(account)
	if err != nil {
		return nil, err
	}
	return LoadToken(path)
}

func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	path, err := p.Path(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (p *FileTokenProvider) SaveTokenForAccount(_ context.Context, account string, tok *oauth2.Token) error {
	path, err := p.Path(account)
	if err != nil {
		return err
	}
	return SaveToken(path, tok)
}

// StoreTokenProvider serves tokens from an mcp-oauth TokenStore and falls
// back to another provider on a miss, caching what the fallback returns.
type StoreTokenProvider struct {
	store    storage.TokenStore
	fallback TokenProvider
}

// NewStoreTokenProvider returns a provider backed by store. fallback may
// be nil.
func NewStoreTokenProvider(store storage.TokenStore, fallback TokenProvider) *StoreTokenProvider {
	return &StoreTokenProvider{store: store, fallback: fallback}
}

func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, err := p.store.GetToken(ctx, account)
	if err == nil {
		return tok, nil
	}
	if p.fallback == nil {
		return nil, fmt.Errorf("no token for account %s: %w", account, err)
	}

	tok, err = p.fallback.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveToken(ctx, account, tok); err != nil {
		return nil, fmt.Errorf("failed to cache token for account %s: %w", account, err)
	}
	return tok, nil
}

func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	if _, err := p.store.GetToken(context.Background(), account); err == nil {
		return true
	}
	return p.fallback != nil && p.fallback.HasTokenForAccount(account)
}

// SaveTokenForAccount stores tok in the cache and, when the fallback can
// persist tokens, there as well.
func (p *StoreTokenProvider) SaveTokenForAccount(ctx context.Context, account string, tok *oauth2.Token) error {
	if err := p.store.SaveToken(ctx, account, tok); err != nil {
		return fmt.Errorf("failed to store token for account %s: %w", account, err)
	}
	if saver, ok := p.fallback.(TokenSaver); ok {
		return saver.SaveTokenForAccount(ctx, account, tok)
	}
	return nil
}
