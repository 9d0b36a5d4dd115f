package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
	"nestadmin/internal/api"
	"nestadmin/internal/config"
	"nestadmin/internal/logging"
	"nestadmin/internal/session"
	"nestadmin/internal/storage"
)

// errReported marks failures whose message was already written to stderr.
var errReported = errors.New("already reported")

// errLoginRequired stops authenticated commands when no session exists.
var errLoginRequired = fmt.Errorf("not logged in: %w", errReported)

const loginNotice = "Not logged in. Run `nestadmin login` to sign in."

type globalFlags struct {
	config   string
	apiURL   string
	json     bool
	logLevel string
}

// runtime bundles the wired collaborators for one invocation.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	client  *api.Client
	session *session.Manager
	admin   *admin.Service

	redirected atomic.Bool
}

type commandContext struct {
	flags *globalFlags

	stdin       io.Reader
	stderr      io.Writer
	commandPath string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	runtimeOnce sync.Once
	rt          *runtime
	runtimeErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:  flags,
		stdin:  os.Stdin,
		stderr: os.Stderr,
	}
}

func (c *commandContext) bindStreams(cmd *cobra.Command) {
	c.stdin = cmd.InOrStdin()
	c.stderr = cmd.ErrOrStderr()
	c.commandPath = cmd.CommandPath()
}

func (c *commandContext) jsonOutput() bool {
	return c.flags != nil && c.flags.json
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	changed := false
	if url := strings.TrimSpace(c.flags.apiURL); url != "" {
		cfg.API.BaseURL = strings.TrimRight(url, "/")
		changed = true
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
		changed = true
	}
	if changed {
		return cfg.Validate()
	}
	return nil
}

// runtime wires storage, the request client, and the session manager. The
// client's 401 handler closes over the manager so neither imports the other.
func (c *commandContext) runtime() (*runtime, error) {
	c.runtimeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.runtimeErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.runtimeErr = fmt.Errorf("init logging: %w", err)
			return
		}
		if c.commandPath != "" {
			logger = logger.With(logging.FieldCommand, c.commandPath)
		}
		store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
		if err != nil {
			c.runtimeErr = fmt.Errorf("open credential store: %w", err)
			return
		}

		rt := &runtime{cfg: cfg, logger: logger, store: store}
		client, err := api.New(cfg.API.BaseURL,
			api.WithTimeout(cfg.API.Timeout()),
			api.WithRetry(cfg.API.MaxRetries, cfg.API.RetryDelay()),
			api.WithUserAgent(cfg.API.UserAgent),
			api.WithCredentialStore(store),
			api.WithLogger(logger),
			api.WithUnauthorizedHandler(func(ctx context.Context) {
				if rt.session != nil {
					rt.session.Invalidate(ctx)
				}
				c.redirectToLogin(rt, "Session expired.")
			}),
		)
		if err != nil {
			_ = store.Close()
			c.runtimeErr = err
			return
		}
		rt.client = client

		manager, err := session.NewManager(client, store,
			session.WithLogger(logger),
			session.WithRejectExpired(cfg.Auth.RejectExpiredTokens),
			session.WithRedirector(func(context.Context) {
				c.redirectToLogin(rt, "Signed out.")
			}),
		)
		if err != nil {
			_ = store.Close()
			c.runtimeErr = err
			return
		}
		rt.session = manager
		rt.admin = admin.New(client, admin.WithLogger(logger))
		c.rt = rt
	})
	return c.rt, c.runtimeErr
}

// redirectToLogin is the terminal form of the login redirect: a notice on
// stderr, printed once per invocation.
func (c *commandContext) redirectToLogin(rt *runtime, reason string) {
	if !rt.redirected.CompareAndSwap(false, true) {
		return
	}
	fmt.Fprintf(c.stderr, "%s Run `nestadmin login` to sign in.\n", reason)
}

// authenticated restores the stored session and refuses to continue
// without one.
func (c *commandContext) authenticated(cmd *cobra.Command) (*runtime, error) {
	rt, err := c.runtime()
	if err != nil {
		return nil, err
	}
	current := rt.session.RestoreSession(cmd.Context())
	if !current.Authenticated {
		if current.LastError != "" {
			fmt.Fprintf(c.stderr, "%s\n", current.LastError)
		}
		fmt.Fprintln(c.stderr, loginNotice)
		return nil, errLoginRequired
	}
	if leeway := rt.cfg.Auth.RefreshLeeway(); current.ExpiringWithin(leeway) {
		rt.logger.Warn("session token expires soon; run `nestadmin session refresh`",
			"expires_at", current.ExpiresAt)
	}
	return rt, nil
}

func (c *commandContext) withAdmin(cmd *cobra.Command, fn func(*admin.Service) error) error {
	rt, err := c.authenticated(cmd)
	if err != nil {
		return err
	}
	return fn(rt.admin)
}

func (c *commandContext) close() {
	if c.rt == nil {
		return
	}
	c.rt.session.Close()
	if err := c.rt.store.Close(); err != nil {
		c.rt.logger.Debug("close credential store", logging.FieldError, err)
	}
	c.rt = nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
