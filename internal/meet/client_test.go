package meet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	meet "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := meet.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(svc, "default")
}

func TestCreateSpace(t *testing.T) {
	var got meet.Space
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v2/spaces"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "spaces/abc123",
			"meetingUri": "https://meet.google.com/abc-mnop-xyz",
			"meetingCode": "abc-mnop-xyz",
			"config": {"accessType": "TRUSTED"}
		}`))
	})

	space, err := client.CreateSpace(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "spaces/abc123", space.Name)
	assert.Equal(t, "https://meet.google.com/abc-mnop-xyz", space.MeetingURI)
	assert.Equal(t, "abc-mnop-xyz", space.MeetingCode)
	assert.Equal(t, AccessTrusted, space.AccessType)
	require.NotNil(t, got.Config)
	assert.Equal(t, AccessTrusted, got.Config.AccessType)
	assert.Equal(t, "default", client.Account())
}

func TestMeetingLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "spaces/x", "meetingUri": "https://meet.google.com/aaa-bbbb-ccc"}`))
	})
	client.SetAccessType(AccessOpen)

	link, err := client.MeetingLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/aaa-bbbb-ccc", link)
}

func TestMeetingLink_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"code": 403, "message": "denied"}}`, http.StatusForbidden)
		})
		_, err := client.MeetingLink(context.Background())
		assert.ErrorContains(t, err, "failed to create space")
	})

	t.Run("missing uri", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name": "spaces/empty"}`))
		})
		_, err := client.MeetingLink(context.Background())
		assert.ErrorContains(t, err, "no meeting URI")
	})
}

func TestNewClient_NilProvider(t *testing.T) {
	_, err := NewClient(context.Background(), "default", nil, nil)
	assert.Error(t, err)
}
