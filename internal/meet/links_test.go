package meet

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetbook/internal/google"
)

func TestLinks_MissingToken(t *testing.T) {
	conf := google.OAuthConfig(google.Credentials{ClientID: "id"})
	links := NewLinks("default", conf, google.NewFileTokenProvider(t.TempDir()))

	_, err := links.MeetingLink(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "account default")
}

func TestLinks_UsesCachedClient(t *testing.T) {
	links := NewLinks("default", nil, nil)
	links.client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "spaces/x", "meetingUri": "https://meet.google.com/aaa-bbbb-ccc"}`))
	})

	link, err := links.MeetingLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/aaa-bbbb-ccc", link)

	links.Reset()
	_, err = links.MeetingLink(context.Background())
	assert.Error(t, err, "nil token provider after reset")
}
