package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file into the process
// environment. A missing file is fine; existing variables win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if raw := getenv("OJUZ_ACCOUNTS"); raw != "" {
		accounts, err := parseAccounts(raw)
		if err != nil {
			return fmt.Errorf("OJUZ_ACCOUNTS: %w", err)
		}
		c.Accounts = accounts
	}
	if v := getenv("OJUZ_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := getenv("OJUZ_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("OJUZ_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := getenv("OJUZ_SQS_REQUEST_URL"); v != "" {
		c.SQS.RequestQueueURL = v
	}
	if v := getenv("OJUZ_SQS_RESPONSE_URL"); v != "" {
		c.SQS.ResponseQueueURL = v
	}
	return nil
}

// parseAccounts reads "user:pass,user2:pass2". Passwords may contain ':'.
func parseAccounts(raw string) ([]Account, error) {
	var res []Account
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("expected user:password, got %q", pair)
		}
		res = append(res, Account{Username: user, Password: pass})
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no accounts in %q", raw)
	}
	return res, nil
}
