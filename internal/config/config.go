// Package config loads meetbook's settings from struct defaults, an
// optional YAML file and MEETBOOK_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/time/rate"

	"github.com/teemow/meetbook/internal/calendar"
	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/scheduling"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "meetbook.yaml"

const envPrefix = "MEETBOOK_"

// Calendar providers.
const (
	ProviderGoogle = "google"
	ProviderMemory = "memory"
)

// Server transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

type Application struct {
	Calendar   Calendar   `koanf:"calendar"`
	Google     Google     `koanf:"google"`
	Scheduling Scheduling `koanf:"scheduling"`
	Server     Server     `koanf:"server"`
	Telemetry  Telemetry  `koanf:"telemetry"`
}

type Calendar struct {
	Provider   string        `koanf:"provider"`
	ID         string        `koanf:"id"`
	Account    string        `koanf:"account"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"ratelimit"`
	Burst      int           `koanf:"burst"`
	Conference string        `koanf:"conference"`
}

type Google struct {
	ClientID     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	TokenDir     string `koanf:"tokendir"`
}

// Scheduling mirrors scheduling.Policy with times of day as "HH:MM".
type Scheduling struct {
	BusinessStart    string        `koanf:"businessstart"`
	BusinessEnd      string        `koanf:"businessend"`
	SlotStep         time.Duration `koanf:"slotstep"`
	RestrictedStart  string        `koanf:"restrictedstart"`
	RestrictedEnd    string        `koanf:"restrictedend"`
	SearchMargin     time.Duration `koanf:"searchmargin"`
	SuggestionMargin time.Duration `koanf:"suggestionmargin"`
	PreferredHours   []int         `koanf:"preferredhours"`
	SuggestionDays   int           `koanf:"suggestiondays"`
	SlotsPerDay      int           `koanf:"slotsperday"`
	DefaultDuration  time.Duration `koanf:"defaultduration"`
}

type Server struct {
	Transport      string        `koanf:"transport"`
	HTTPAddr       string        `koanf:"httpaddr"`
	MetricsEnabled bool          `koanf:"metricsenabled"`
	MetricsAddr    string        `koanf:"metricsaddr"`
	SessionTimeout time.Duration `koanf:"sessiontimeout"`
}

// Telemetry configures OpenTelemetry metrics, tracing and audit logging.
type Telemetry struct {
	Enabled         bool    `koanf:"enabled"`
	MetricsExporter string  `koanf:"metricsexporter"`
	TracingExporter string  `koanf:"tracingexporter"`
	OTLPEndpoint    string  `koanf:"otlpendpoint"`
	OTLPInsecure    bool    `koanf:"otlpinsecure"`
	SamplingRate    float64 `koanf:"samplingrate"`
	DetailedLabels  bool    `koanf:"detailedlabels"`
	AuditLogging    bool    `koanf:"auditlogging"`
	AuditIncludePII bool    `koanf:"auditincludepii"`
}

// Defaults returns the built-in configuration.
func Defaults() Application {
	p := scheduling.DefaultPolicy()
	tel := instrumentation.DefaultConfig()
	return Application{
		Calendar: Calendar{
			Provider:   ProviderGoogle,
			ID:         calendar.DefaultCalendarID,
			Account:    calendar.DefaultAccount,
			Timeout:    p.CalendarTimeout,
			RateLimit:  float64(calendar.DefaultRateLimit),
			Burst:      calendar.DefaultBurst,
			Conference: calendar.ConferenceCalendar,
		},
		Google: Google{
			TokenDir: google.DefaultTokenDir(),
		},
		Scheduling: Scheduling{
			BusinessStart:    clock(p.BusinessStart),
			BusinessEnd:      clock(p.BusinessEnd),
			SlotStep:         p.SlotStep,
			RestrictedStart:  clock(p.RestrictedStart),
			RestrictedEnd:    clock(p.RestrictedEnd),
			SearchMargin:     p.SearchMargin,
			SuggestionMargin: p.SuggestionMargin,
			PreferredHours:   p.PreferredHours,
			SuggestionDays:   p.SuggestionDays,
			SlotsPerDay:      p.SlotsPerDay,
			DefaultDuration:  p.DefaultDuration,
		},
		Server: Server{
			Transport:      TransportStdio,
			HTTPAddr:       ":8080",
			MetricsAddr:    ":9090",
			SessionTimeout: 30 * time.Minute,
		},
		Telemetry: Telemetry{
			Enabled:         tel.Enabled,
			MetricsExporter: tel.MetricsExporter,
			TracingExporter: tel.TracingExporter,
			SamplingRate:    tel.TraceSamplingRate,
			AuditLogging:    tel.AuditLogging.Enabled,
		},
	}
}

// Load reads the configuration. A missing file at path is not an error.
func Load(path string) (Application, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Application{}, fmt.Errorf("error loading config defaults: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Application{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		slog.Debug("config file not found, using defaults and environment variables", "path", path)
	} else {
		slog.Info("loaded configuration", "path", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			if k == "scheduling.preferredhours" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		return Application{}, fmt.Errorf("error loading config from environment: %w", err)
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Validate checks enumerations and the derived scheduling policy.
func (a Application) Validate() error {
	var errs []error

	switch a.Calendar.Provider {
	case ProviderGoogle, ProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown calendar provider %q", a.Calendar.Provider))
	}
	switch a.Calendar.Conference {
	case calendar.ConferenceCalendar, calendar.ConferenceMeet:
	default:
		errs = append(errs, fmt.Errorf("unknown conference mode %q", a.Calendar.Conference))
	}
	switch a.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", a.Server.Transport))
	}
	if a.Calendar.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("calendar rate limit must be positive, got %v", a.Calendar.RateLimit))
	}

	if a.Telemetry.Enabled {
		tc := a.Instrumentation("")
		if err := tc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	if p, err := a.Policy(); err != nil {
		errs = append(errs, err)
	} else if err := p.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Policy builds the scheduling rules.
func (a Application) Policy() (scheduling.Policy, error) {
	s := a.Scheduling
	var errs []error
	parse := func(name, v string) time.Duration {
		d, err := parseClock(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("scheduling.%s: %w", name, err))
		}
		return d
	}

	p := scheduling.Policy{
		BusinessStart:    parse("businessstart", s.BusinessStart),
		BusinessEnd:      parse("businessend", s.BusinessEnd),
		SlotStep:         s.SlotStep,
		RestrictedStart:  parse("restrictedstart", s.RestrictedStart),
		RestrictedEnd:    parse("restrictedend", s.RestrictedEnd),
		SearchMargin:     s.SearchMargin,
		SuggestionMargin: s.SuggestionMargin,
		PreferredHours:   s.PreferredHours,
		SuggestionDays:   s.SuggestionDays,
		SlotsPerDay:      s.SlotsPerDay,
		DefaultDuration:  s.DefaultDuration,
		CalendarTimeout:  a.Calendar.Timeout,
	}
	if len(errs) > 0 {
		return scheduling.Policy{}, errors.Join(errs...)
	}
	return p, nil
}

// Instrumentation builds the OpenTelemetry provider configuration.
func (a Application) Instrumentation(version string) instrumentation.Config {
	c := instrumentation.DefaultConfig()
	t := a.Telemetry
	c.ServiceVersion = version
	c.Enabled = t.Enabled
	c.MetricsExporter = t.MetricsExporter
	c.TracingExporter = t.TracingExporter
	c.OTLPEndpoint = t.OTLPEndpoint
	c.OTLPInsecure = t.OTLPInsecure
	c.TraceSamplingRate = t.SamplingRate
	c.DetailedLabels = t.DetailedLabels
	c.AuditLogging = instrumentation.AuditLoggingConfig{
		Enabled:    t.AuditLogging,
		IncludePII: t.AuditIncludePII,
	}
	return c
}

// Credentials returns the Google OAuth client credentials.
func (a Application) Credentials() google.Credentials {
	return google.Credentials{ClientID: a.Google.ClientID, ClientSecret: a.Google.ClientSecret}
}

// RateLimit returns the calendar request limit.
func (a Application) RateLimit() rate.Limit {
	return rate.Limit(a.Calendar.RateLimit)
}

// parseClock parses "HH:MM" into an offset from midnight. "24:00" is
// accepted as the end of the day.
func parseClock(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, want HH:MM", v)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
