package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/styles"
)

// Validate checks that the configuration is usable. Failures are reported as
// criterio.FieldErrors keyed by the yaml path.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, required),
		criterio.Run("server.base_url", c.Server.BaseURL, httpURL),
		criterio.Run("server.api_prefix", c.Server.APIPrefix, apiPrefix),
		c.validateDurations(),
		criterio.Run("statistics.source", c.Statistics.Source, oneOf(StatisticsLocal, StatisticsRemote)),
		criterio.Run("tui.theme", c.TUI.Theme, oneOf(styles.ThemeNames()...)),
	)
}

func (c *Config) validateDurations() error {
	var errs criterio.FieldErrorsBuilder
	if err := positive(c.Server.Timeout); err != nil {
		errs = errs.Append("server.timeout", err)
	}
	if err := positive(c.Notifications.TTL); err != nil {
		errs = errs.Append("notifications.ttl", err)
	}
	return errs.ToError()
}

// ValidateDeep runs Validate and then checks the config file and data
// directory on disk.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func httpURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func apiPrefix(p string) error {
	if p != "" && !strings.HasPrefix(p, "/") {
		return fmt.Errorf("must start with /, got %q", p)
	}
	return nil
}

func positive(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func oneOf(values ...string) func(string) error {
	return func(s string) error {
		if !slices.Contains(values, s) {
			return fmt.Errorf("must be one of %s, got %q", strings.Join(values, ", "), s)
		}
		return nil
	}
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return errors.New("exists but is not a directory")
	}
	return nil
}
