package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/fleetctl/internal/config"
	"github.com/samvad-hq/fleetctl/internal/journal"
	"github.com/samvad-hq/fleetctl/internal/logger"
	"github.com/samvad-hq/fleetctl/pkg/environments"
	"github.com/samvad-hq/fleetctl/pkg/fleet"
	"github.com/samvad-hq/fleetctl/pkg/notifiers"
)

// customEnvironment names the environment when a raw base URL overrides the registry.
const customEnvironment = "custom"

// Commander is the fleetctl runtime. It owns the fleet client and records
// every robot command in the journal before announcing it to notifiers.
type Commander struct {
	env       environments.Environment
	client    *fleet.Client
	journal   journal.Store
	notifiers *notifiers.Fanout
	vpnDir    string
	log       logger.Logger
}

// Dependencies are the collaborators of a Commander built by hand.
type Dependencies struct {
	Environment  environments.Environment
	Client       *fleet.Client
	Journal      journal.Store
	Notifiers    *notifiers.Fanout
	VPNConfigDir string
	Log          logger.Logger
}

// NewCommander builds a commander runtime from config files.
func NewCommander(ctx context.Context, cfg *config.Config, log logger.Logger) (*Commander, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := resolveEnvironment(cfg)
	if err != nil {
		return nil, err
	}

	opts := []fleet.Option{
		fleet.WithTimeout(cfg.HTTPTimeout),
		fleet.WithLogger(log),
	}
	if cfg.HasCredentials() {
		opts = append(opts, fleet.WithBasicAuth(cfg.Username, cfg.Password))
	}
	client, err := fleet.New(env.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("build fleet client: %w", err)
	}
	log.InfoObj("fleet client ready", "fleet_env", map[string]any{
		"name":     env.Name,
		"base_url": client.BaseURL(),
		"auth":     cfg.HasCredentials(),
	})

	notifierReg, err := notifiers.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := notifierReg.Enabled()
	clients, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, n := range enabled {
		summaries = append(summaries, map[string]string{"id": n.ID, "type": n.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		err = fmt.Errorf("init journal: %w", err)
		if cerr := notifiers.NewFanout(clients).Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"ttl_seconds":              int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return NewCommanderFrom(Dependencies{
		Environment:  env,
		Client:       client,
		Journal:      store,
		Notifiers:    notifiers.NewFanout(clients, notifiers.WithRetry(cfg.NotifyMaxAttempts, cfg.NotifyBackoff)),
		VPNConfigDir: cfg.VPNConfigDir,
		Log:          log,
	})
}

// NewCommanderFrom assembles a commander from prepared dependencies.
func NewCommanderFrom(deps Dependencies) (*Commander, error) {
	if deps.Client == nil {
		return nil, fmt.Errorf("fleet client must not be nil")
	}
	if deps.Journal == nil {
		deps.Journal, _ = journal.NewStore("none", "", journal.Options{})
	}
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	return &Commander{
		env:       deps.Environment,
		client:    deps.Client,
		journal:   deps.Journal,
		notifiers: deps.Notifiers,
		vpnDir:    deps.VPNConfigDir,
		log:       deps.Log,
	}, nil
}

// resolveEnvironment picks the API deployment. An explicit base URL wins
// over the named environment.
func resolveEnvironment(cfg *config.Config) (environments.Environment, error) {
	if cfg.BaseURL != "" {
		return environments.Environment{Name: customEnvironment, BaseURL: cfg.BaseURL}, nil
	}
	reg, err := environments.LoadRegistry(cfg.EnvironmentsFile)
	if err != nil {
		return environments.Environment{}, fmt.Errorf("load environments: %w", err)
	}
	env, err := reg.Resolve(cfg.Environment)
	if err != nil {
		return environments.Environment{}, err
	}
	return env, nil
}

// Environment returns the deployment the commander talks to.
func (c *Commander) Environment() environments.Environment { return c.env }

// Client exposes the underlying fleet client.
func (c *Commander) Client() *fleet.Client { return c.client }

func (c *Commander) ListOrganizations(ctx context.Context) (*fleet.Response, error) {
	return c.client.ListOrganizations(ctx)
}

func (c *Commander) GetOrganization(ctx context.Context, id string) (*fleet.Response, error) {
	return c.client.GetOrganization(ctx, id)
}

func (c *Commander) ListStores(ctx context.Context) (*fleet.Response, error) {
	return c.client.ListStores(ctx)
}

func (c *Commander) GetStore(ctx context.Context, id string) (*fleet.Response, error) {
	return c.client.GetStore(ctx, id)
}

func (c *Commander) ListRobots(ctx context.Context) (*fleet.Response, error) {
	return c.client.ListRobots(ctx)
}

func (c *Commander) GetRobot(ctx context.Context, id string) (*fleet.Response, error) {
	return c.client.GetRobot(ctx, id)
}

func (c *Commander) GetPlayExecution(ctx context.Context, id string) (*fleet.Response, error) {
	return c.client.GetPlayExecution(ctx, id)
}

// OpenVPN asks the robot to open its VPN tunnel.
func (c *Commander) OpenVPN(ctx context.Context, robotID string) (*fleet.Response, error) {
	return c.dispatch(ctx, robotID, fleet.OpenVPNCommand())
}

// CloseVPN asks the robot to close its VPN tunnel.
func (c *Commander) CloseVPN(ctx context.Context, robotID string) (*fleet.Response, error) {
	return c.dispatch(ctx, robotID, fleet.CloseVPNCommand())
}

// PowerControl sends a power_control command built from the defaults and opts.
func (c *Commander) PowerControl(ctx context.Context, robotID string, opts ...fleet.PowerOption) (*fleet.Response, error) {
	return c.dispatch(ctx, robotID, fleet.PowerControlCommand(opts...))
}

// dispatch sends cmd and then records and announces it. Journal and notifier
// failures are logged; the fleet outcome is returned untouched.
func (c *Commander) dispatch(ctx context.Context, robotID string, cmd fleet.Command) (*fleet.Response, error) {
	resp, err := c.client.SendCommand(ctx, robotID, cmd)
	if err != nil && rejectedLocally(err) {
		return nil, err
	}

	evt := notifiers.NewCommandEvent(c.env.Name, robotID, cmd.Type, cmd.Parameters)
	switch {
	case err != nil:
		evt.Error = err.Error()
	default:
		evt.StatusCode = resp.StatusCode
		if serr := resp.Err(); serr != nil {
			evt.Error = serr.Error()
		}
	}

	c.record(evt)
	c.announce(ctx, evt)
	return resp, err
}

// rejectedLocally reports errors raised before any request left the process.
func rejectedLocally(err error) bool {
	return errors.Is(err, fleet.ErrEmptyID) ||
		errors.Is(err, fleet.ErrUnsupportedMethod) ||
		errors.Is(err, fleet.ErrAmbiguousBody)
}

func (c *Commander) record(evt notifiers.CommandEvent) {
	err := c.journal.Record(journal.Entry{
		ID:          evt.ID,
		Environment: evt.Environment,
		RobotID:     evt.RobotID,
		Command:     evt.CommandType,
		Parameters:  evt.Parameters,
		StatusCode:  evt.StatusCode,
		Error:       evt.Error,
		IssuedAt:    evt.IssuedAt,
	})
	if err != nil {
		c.log.WarnObj("journal record failed", "journal_error", map[string]any{
			"command_id": evt.ID,
			"error":      err.Error(),
		})
	}
}

func (c *Commander) announce(ctx context.Context, evt notifiers.CommandEvent) {
	if c.notifiers.Size() == 0 {
		return
	}
	start := time.Now()
	delivered, err := c.notifiers.Notify(ctx, evt)
	meta := map[string]any{
		"command_id": evt.ID,
		"delivered":  delivered,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		meta["error"] = err.Error()
		c.log.WarnObj("command notification incomplete", "notify_meta", meta)
		return
	}
	c.log.DebugObj("command notification delivered", "notify_meta", meta)
}

// History returns the most recent journal entries, newest first.
func (c *Commander) History(limit int) ([]journal.Entry, error) {
	entries, err := c.journal.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}

// Close releases the journal and notifier connections.
func (c *Commander) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	if err := c.notifiers.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
