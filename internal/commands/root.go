// Package commands implements the fleetctl command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/fleetctl/internal/app"
	"github.com/samvad-hq/fleetctl/internal/config"
	"github.com/samvad-hq/fleetctl/internal/logger"
)

// globalFlags override values loaded from the environment.
type globalFlags struct {
	env      string
	baseURL  string
	username string
	password string
	logLevel string
}

// session carries the state shared by one command invocation.
type session struct {
	flags     globalFlags
	cfg       *config.Config
	log       *logger.ZapLogger
	commander *app.Commander
}

// Execute runs the command tree with args and releases everything the
// invocation opened.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s := &session{}
	root := s.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := s.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func (s *session) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Fleet API client for organizations, stores and robots",
		Long:          "fleetctl talks to the fleet management API: browse organizations, stores, robots and play executions, and send VPN and power commands to robots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return s.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&s.flags.env, "env", "", "Named fleet environment (overrides FLEET_ENV)")
	pf.StringVar(&s.flags.baseURL, "base-url", "", "Fleet API base URL (overrides --env)")
	pf.StringVar(&s.flags.username, "username", "", "API username (overrides FLEET_USERNAME)")
	pf.StringVar(&s.flags.password, "password", "", "API password (overrides FLEET_PASSWORD)")
	pf.StringVar(&s.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(s.orgsCommand())
	root.AddCommand(s.storesCommand())
	root.AddCommand(s.robotsCommand())
	root.AddCommand(s.playsCommand())
	root.AddCommand(s.envsCommand())
	root.AddCommand(s.historyCommand())

	return root
}

// setup loads config, applies flag overrides and starts the logger.
func (s *session) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if s.flags.env != "" {
		cfg.Environment = s.flags.env
	}
	if s.flags.baseURL != "" {
		cfg.BaseURL = s.flags.baseURL
	}
	if s.flags.username != "" {
		cfg.Username = s.flags.username
	}
	if s.flags.password != "" {
		cfg.Password = s.flags.password
	}
	if s.flags.logLevel != "" {
		cfg.LogLevel = s.flags.logLevel
	}
	s.cfg = cfg

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	s.log = log
	log.DebugObj("fleetctl starting", "config", map[string]any{
		"env":      cfg.Environment,
		"base_url": cfg.BaseURL,
		"journal":  cfg.JournalType,
	})
	return nil
}

// runtime builds the commander on first use.
func (s *session) runtime(ctx context.Context) (*app.Commander, error) {
	if s.commander != nil {
		return s.commander, nil
	}
	if s.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	var log logger.Logger = logger.NopLogger{}
	if s.log != nil {
		log = s.log
	}
	cmdr, err := app.NewCommander(ctx, s.cfg, log)
	if err != nil {
		return nil, err
	}
	s.commander = cmdr
	return cmdr, nil
}

func (s *session) close() error {
	var errs []error
	if s.commander != nil {
		if err := s.commander.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.log != nil {
		_ = logger.Close()
	}
	return errors.Join(errs...)
}
