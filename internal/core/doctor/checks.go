package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/core/session"
)

// ConfigCheck validates the loaded configuration and its files on disk.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	err := c.cfg.ValidateDeep(c.configPath)
	if err == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusPass,
			Detail: c.configPath,
		})
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	for _, fe := range fieldErrs {
		result.Items = append(result.Items, CheckItem{
			Label:  fe.Field,
			Status: StatusFail,
			Detail: fe.Err.Error(),
		})
	}
	return result
}

// Pinger checks connectivity to the remote store.
type Pinger interface {
	Health(ctx context.Context) error
	BaseURL() string
}

// ServerCheck verifies the remote task store is reachable.
type ServerCheck struct {
	pinger Pinger
}

// NewServerCheck creates a connectivity check.
func NewServerCheck(p Pinger) *ServerCheck {
	return &ServerCheck{pinger: p}
}

func (c *ServerCheck) Name() string {
	return "Task Store"
}

func (c *ServerCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	start := time.Now()
	if err := c.pinger.Health(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.pinger.BaseURL(),
			Status: StatusFail,
			Detail: fmt.Sprintf("unreachable: %v", err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  c.pinger.BaseURL(),
		Status: StatusPass,
		Detail: fmt.Sprintf("connected in %s", time.Since(start).Round(time.Millisecond)),
	})
	return result
}

// SessionCheck reports on the stored credential. An expired credential is
// fixable: autofix releases it so the next login starts clean.
type SessionCheck struct {
	session *session.Session
	autofix bool
	now     func() time.Time
}

// NewSessionCheck creates a session check.
func NewSessionCheck(sess *session.Session, autofix bool) *SessionCheck {
	return &SessionCheck{session: sess, autofix: autofix, now: time.Now}
}

func (c *SessionCheck) Name() string {
	return "Session"
}

func (c *SessionCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	profile, ok := c.session.Profile()
	if !ok {
		result.Items = append(result.Items, CheckItem{
			Label:  "login",
			Status: StatusWarn,
			Detail: "not logged in; run 'taskdeck login'",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "login",
		Status: StatusPass,
		Detail: profile.DisplayName(),
	})

	claims, err := c.session.Claims()
	switch {
	case errors.Is(err, session.ErrOpaqueToken):
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: "opaque token, expiry unknown",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusWarn,
			Detail: err.Error(),
		})
	case claims.Expired(c.now()):
		item := CheckItem{
			Label:   "token",
			Status:  StatusFail,
			Detail:  fmt.Sprintf("expired %s", claims.ExpiresAt.Format(time.RFC3339)),
			Fixable: true,
		}
		if c.autofix {
			if err := c.session.Release(ctx); err != nil {
				item.Detail = fmt.Sprintf("%s; release failed: %v", item.Detail, err)
			} else {
				item.Status = StatusPass
				item.Detail = "expired session removed"
			}
		}
		result.Items = append(result.Items, item)
	case !claims.ExpiresAt.IsZero():
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: fmt.Sprintf("valid until %s", claims.ExpiresAt.Format(time.RFC3339)),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: "no expiry",
		})
	}

	return result
}
