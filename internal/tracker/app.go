package tracker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/core/notify"
	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/data/remote"
	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
)

// App is the central entry point for all taskdeck operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks  *Service
	Auth   *AuthService
	Cache  *Cache
	Notify *notify.Channel

	Session      *session.Session
	SessionStore *jsonfile.SessionStore
	Client       *remote.Client
	Config       *config.Config
}

// NewApp wires the application from a validated config. httpClient may be nil.
func NewApp(ctx context.Context, cfg *config.Config, httpClient *http.Client, log zerolog.Logger) (*App, error) {
	store := jsonfile.NewSessionStore(cfg.SessionFile())
	sess := session.New(store)
	if err := sess.Restore(ctx); err != nil {
		return nil, err
	}

	client, err := remote.New(remote.Options{
		BaseURL:    cfg.Server.BaseURL,
		APIPrefix:  cfg.Server.APIPrefix,
		Timeout:    cfg.Server.Timeout,
		HTTPClient: httpClient,
	}, sess, log)
	if err != nil {
		return nil, fmt.Errorf("create remote client: %w", err)
	}

	ch := notify.NewChannel(sess, cfg.Notifications.TTL)
	cache := NewCache()

	return &App{
		Tasks: NewService(client, cache, ch, Options{
			DescriptionRequired: cfg.Validation.DescriptionRequired,
			Statistics:          StatisticsSource(cfg.Statistics.Source),
		}, log),
		Auth:         NewAuthService(client, sess, cache, ch, log),
		Cache:        cache,
		Notify:       ch,
		Session:      sess,
		SessionStore: store,
		Client:       client,
		Config:       cfg,
	}, nil
}
