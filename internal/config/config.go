package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/programme-lv/ojuzman/internal/xdg"
)

const AppName = "ojuzman"

// Duration reads "10s" style strings from the config file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Account struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type SiteConfig struct {
	BaseURL            string `toml:"base_url"`
	LoginPath          string `toml:"login_path"`
	ViewPagePrefix     string `toml:"view_page_prefix"`
	SubmitPagePrefix   string `toml:"submit_page_prefix"`
	TokenField         string `toml:"token_field"`
	LoginSuccessMarker string `toml:"login_success_marker"`
	Language           string `toml:"language"`
	SummaryPath        string `toml:"summary_path"`
	TokenPage          string `toml:"token_page"`
	DetailsElementID   string `toml:"details_element_id"`
}

type SessionConfig struct {
	LoginAttempts        int      `toml:"login_attempts"`
	SoftBlockCooldown    Duration `toml:"soft_block_cooldown"`
	SoftBlockMaxCooldown Duration `toml:"soft_block_max_cooldown"`
	SoftBlockMaxAttempts int      `toml:"soft_block_max_attempts"`
	RequestTimeout       Duration `toml:"request_timeout"`
	UserAgent            string   `toml:"user_agent"`
}

// WatchConfig controls verdict polling after a submission.
type WatchConfig struct {
	Interval       Duration `toml:"interval"`
	MaxPolls       int      `toml:"max_polls"`
	PendingMarkers []string `toml:"pending_markers"`
}

type HTTPConfig struct {
	ListenAddr   string   `toml:"listen_addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
	Queue   string `toml:"queue"`
}

type SQSConfig struct {
	Region           string `toml:"region"`
	RequestQueueURL  string `toml:"request_queue_url"`
	ResponseQueueURL string `toml:"response_queue_url"`
	WaitSeconds      int32  `toml:"wait_seconds"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

type Config struct {
	Site     SiteConfig    `toml:"site"`
	Session  SessionConfig `toml:"session"`
	Accounts []Account     `toml:"accounts"`
	Watch    WatchConfig   `toml:"watch"`
	HTTP     HTTPConfig    `toml:"http"`
	NATS     NATSConfig    `toml:"nats"`
	SQS      SQSConfig     `toml:"sqs"`
	Log      LogConfig     `toml:"log"`
}

// DefaultPath is the first ojuzman/config.toml found across the XDG config
// dirs, falling back to $XDG_CONFIG_HOME/ojuzman/config.toml.
func DefaultPath() string {
	return xdg.NewXDGDirs().FindConfigFile(AppName, "config.toml")
}

// Load reads the TOML file at path, fills in defaults and applies
// environment overrides. When path is empty the default location is used
// and a missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	site := ojuz.DefaultSite()
	setStr(&c.Site.BaseURL, site.BaseURL)
	setStr(&c.Site.LoginPath, site.LoginPath)
	setStr(&c.Site.ViewPagePrefix, site.ViewPagePrefix)
	setStr(&c.Site.SubmitPagePrefix, site.SubmitPagePrefix)
	setStr(&c.Site.TokenField, site.TokenField)
	setStr(&c.Site.LoginSuccessMarker, site.LoginSuccessMarker)
	setStr(&c.Site.Language, site.Language)
	setStr(&c.Site.SummaryPath, site.SummaryPath)
	setStr(&c.Site.TokenPage, site.TokenPage)
	setStr(&c.Site.DetailsElementID, site.DetailsElementID)

	opts := ojuz.DefaultOptions()
	if c.Session.LoginAttempts == 0 {
		c.Session.LoginAttempts = opts.LoginAttempts
	}
	setDur(&c.Session.SoftBlockCooldown, opts.SoftBlockCooldown)
	setDur(&c.Session.SoftBlockMaxCooldown, opts.SoftBlockMaxCooldown)
	if c.Session.SoftBlockMaxAttempts == 0 {
		c.Session.SoftBlockMaxAttempts = opts.SoftBlockMaxAttempts
	}
	setDur(&c.Session.RequestTimeout, opts.RequestTimeout)
	setStr(&c.Session.UserAgent, opts.UserAgent)

	setDur(&c.Watch.Interval, 2500*time.Millisecond)
	if c.Watch.MaxPolls == 0 {
		c.Watch.MaxPolls = 10
	}
	if c.Watch.PendingMarkers == nil {
		c.Watch.PendingMarkers = []string{"pending", "compiling", "running", "evaluating", "judging", "waiting"}
	}

	setStr(&c.HTTP.ListenAddr, ":8080")
	setDur(&c.HTTP.ReadTimeout, 10*time.Second)
	// submit may sit through soft-block cooldowns
	setDur(&c.HTTP.WriteTimeout, 5*time.Minute)

	setStr(&c.NATS.URL, "nats://127.0.0.1:4222")
	setStr(&c.NATS.Subject, "ojuz.submit")
	setStr(&c.NATS.Queue, "ojuzman")

	setStr(&c.SQS.Region, "eu-central-1")
	if c.SQS.WaitSeconds == 0 {
		c.SQS.WaitSeconds = 20
	}

	setStr(&c.Log.Level, "info")
	setStr(&c.Log.Format, "text")
}

func setStr(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setDur(dst *Duration, def time.Duration) {
	if dst.Duration == 0 {
		dst.Duration = def
	}
}

// Validate checks what the pool needs before any network traffic.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for i, a := range c.Accounts {
		if strings.TrimSpace(a.Username) == "" || a.Password == "" {
			return fmt.Errorf("account %d: username and password are required", i+1)
		}
		if !seen.Add(a.Username) {
			return fmt.Errorf("account %q is configured more than once", a.Username)
		}
	}
	if c.Session.LoginAttempts < 1 {
		return fmt.Errorf("session.login_attempts must be positive")
	}
	if c.Session.SoftBlockMaxAttempts < 1 {
		return fmt.Errorf("session.soft_block_max_attempts must be positive")
	}
	if c.Watch.MaxPolls < 0 {
		return fmt.Errorf("watch.max_polls must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) Credentials() []ojuz.Credential {
	res := make([]ojuz.Credential, len(c.Accounts))
	for i, a := range c.Accounts {
		res[i] = ojuz.Credential{Username: a.Username, Password: a.Password}
	}
	return res
}

func (c *Config) OjuzSite() ojuz.Site {
	return ojuz.Site{
		BaseURL:            c.Site.BaseURL,
		LoginPath:          c.Site.LoginPath,
		ViewPagePrefix:     c.Site.ViewPagePrefix,
		SubmitPagePrefix:   c.Site.SubmitPagePrefix,
		TokenField:         c.Site.TokenField,
		LoginSuccessMarker: c.Site.LoginSuccessMarker,
		Language:           c.Site.Language,
		SummaryPath:        c.Site.SummaryPath,
		TokenPage:          c.Site.TokenPage,
		DetailsElementID:   c.Site.DetailsElementID,
	}
}

func (c *Config) OjuzOptions() ojuz.Options {
	return ojuz.Options{
		LoginAttempts:        c.Session.LoginAttempts,
		SoftBlockCooldown:    c.Session.SoftBlockCooldown.Duration,
		SoftBlockMaxCooldown: c.Session.SoftBlockMaxCooldown.Duration,
		SoftBlockMaxAttempts: c.Session.SoftBlockMaxAttempts,
		RequestTimeout:       c.Session.RequestTimeout.Duration,
		UserAgent:            c.Session.UserAgent,
	}
}
