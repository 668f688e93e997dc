package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetbook/internal/config"
	"github.com/teemow/meetbook/internal/google"
)

// useMemoryConfig points the commands at a missing config file and the
// in-memory calendar.
func useMemoryConfig(t *testing.T) {
	t.Helper()
	prev := configPath
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configPath = prev })
	t.Setenv("MEETBOOK_CALENDAR_PROVIDER", config.ProviderMemory)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewApplication_Memory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Calendar.Provider = config.ProviderMemory

	app, err := newApplication(cfg, newLogger(false, io.Discard), nil)
	require.NoError(t, err)
	assert.NotNil(t, app.desk)
	assert.Nil(t, app.auth)
}

func TestNewApplication_Google(t *testing.T) {
	cfg := config.Defaults()
	cfg.Google.ClientID = "client-id"
	cfg.Google.TokenDir = t.TempDir()

	app, err := newApplication(cfg, newLogger(true, io.Discard), nil)
	require.NoError(t, err)
	require.NotNil(t, app.auth)
	assert.Equal(t, "client-id", app.auth.OAuth.ClientID)
	assert.Equal(t, cfg.Calendar.Account, app.auth.Account)
	_, ok := app.auth.Tokens.(google.TokenSaver)
	assert.True(t, ok)
	assert.NotNil(t, app.auth.OnTokenSaved)
	assert.NotPanics(t, app.auth.OnTokenSaved)
}

func TestNewApplication_UnknownProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Calendar.Provider = "outlook"

	_, err := newApplication(cfg, newLogger(false, io.Discard), nil)
	assert.Error(t, err)
}

func TestBookCmd(t *testing.T) {
	useMemoryConfig(t)

	out, err := execute(t, newBookCmd(), "--date", "2030-01-07", "--time", "2:00 PM", "--subject", "Intro", "--duration", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Meeting 'Intro' scheduled!")
	assert.Contains(t, out, "2030-01-07 14:00 UTC (30 min)")
}

func TestBookCmd_Rejected(t *testing.T) {
	useMemoryConfig(t)

	out, err := execute(t, newBookCmd(), "--date", "2030-01-07", "--time", "03:00", "--subject", "Night call")
	require.NoError(t, err)
	assert.Contains(t, out, "Meetings cannot be scheduled between 00:00 and 06:00 UTC.")
}

func TestBookCmd_RequiresFlags(t *testing.T) {
	useMemoryConfig(t)

	_, err := execute(t, newBookCmd(), "--date", "2030-01-07")
	assert.Error(t, err)
}

func TestAvailabilityCmd(t *testing.T) {
	useMemoryConfig(t)

	out, err := execute(t, newAvailabilityCmd(), "--date", "2030-01-07", "--duration", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Available 60 minute slots on 2030-01-07 (UTC):")
	assert.Contains(t, out, "\n- 08:00 - 09:00")
}

func TestAvailabilityCmd_Suggest(t *testing.T) {
	useMemoryConfig(t)

	out, err := execute(t, newAvailabilityCmd(), "--suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "Here are some available slots you can pick:")
}

func TestAvailabilityCmd_RequiresDateOrSuggest(t *testing.T) {
	useMemoryConfig(t)

	_, err := execute(t, newAvailabilityCmd())
	assert.EqualError(t, err, "either --date or --suggest is required")
}

func TestAuthCmd_MemoryProvider(t *testing.T) {
	useMemoryConfig(t)

	_, err := execute(t, newAuthCmd())
	assert.ErrorContains(t, err, "only needed for the google calendar provider")
}

func TestAuthCmd_MissingClientID(t *testing.T) {
	useMemoryConfig(t)
	t.Setenv("MEETBOOK_CALENDAR_PROVIDER", config.ProviderGoogle)
	t.Setenv("MEETBOOK_GOOGLE_TOKENDIR", t.TempDir())

	_, err := execute(t, newAuthCmd())
	assert.ErrorContains(t, err, "google client id is not configured")
}

func TestAuthCmd_NoCode(t *testing.T) {
	useMemoryConfig(t)
	t.Setenv("MEETBOOK_CALENDAR_PROVIDER", config.ProviderGoogle)
	t.Setenv("MEETBOOK_GOOGLE_TOKENDIR", t.TempDir())
	t.Setenv("MEETBOOK_GOOGLE_CLIENTID", "client-id")

	out, err := execute(t, newAuthCmd())
	assert.EqualError(t, err, "no authorization code given")
	assert.Contains(t, out, "https://accounts.google.com/")
	assert.Contains(t, out, "client_id=client-id")
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{"transport", config.TransportStdio},
		{"http-addr", ":8080"},
		{"calendar", config.ProviderGoogle},
		{"metrics-enabled", "false"},
		{"metrics-addr", ":9090"},
		{"google-client-id", ""},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.expected, f.DefValue)
		})
	}
}

func TestServeCmd_InvalidTransport(t *testing.T) {
	useMemoryConfig(t)

	_, err := execute(t, newServeCmd(), "--transport", "websocket")
	assert.ErrorContains(t, err, `unknown transport "websocket"`)
}

func TestRunGenerateDocs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runGenerateDocs(&out, ""))

	md := out.String()
	assert.Contains(t, md, "# MCP Tools Reference")
	for _, name := range []string{
		"schedule_meeting",
		"get_availability",
		"get_formatted_availability",
		"is_time_slot_available",
		"suggest_slots",
		"greet_user",
		"set_user_name",
		"google_get_auth_url",
		"google_save_auth_code",
	} {
		assert.Contains(t, md, "### "+name+"\n")
	}
	assert.NotContains(t, md, "## Other")
}

func TestRunGenerateDocs_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.md")
	require.NoError(t, runGenerateDocs(io.Discard, path))
	assert.FileExists(t, path)
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"schedule_meeting":           "Booking Tools",
		"get_availability":           "Availability Tools",
		"get_formatted_availability": "Availability Tools",
		"is_time_slot_available":     "Availability Tools",
		"suggest_slots":              "Availability Tools",
		"greet_user":                 "Session Tools",
		"set_user_name":              "Session Tools",
		"google_get_auth_url":        "Google Authorization Tools",
		"unknown":                    "Other",
	}
	for name, want := range tests {
		assert.Equal(t, want, getCategoryFromToolName(name), name)
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("schedule_meeting",
		mcp.WithDescription("Book a meeting"),
		mcp.WithString("date", mcp.Required(), mcp.Description("Meeting day")),
		mcp.WithNumber("duration_minutes"),
	)

	md := generateToolMarkdown(tool)
	assert.Contains(t, md, "### schedule_meeting\n\nBook a meeting\n\n")
	assert.Contains(t, md, "- `date` (string, required): Meeting day\n")
	assert.Contains(t, md, "- `duration_minutes` (number, optional): number parameter\n")
}
