// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
	"github.com/cloudmine/cmpurge/internal/config"
	"github.com/cloudmine/cmpurge/internal/db"
	"github.com/cloudmine/cmpurge/internal/i18n"
	"github.com/cloudmine/cmpurge/internal/logging"
)

// app holds the state of one invocation. Tests build their own with
// substitutes for stdin, the HTTP transport and the journal.
type app struct {
	cfgFile   string
	verbose   bool
	noJournal bool
	assumeYes bool
	dryRun    bool

	cfg       config.Config
	cfgErr    error
	cfgLoaded bool
	firstRun  bool

	stdin      io.Reader
	isTerminal func() bool
	httpClient cloudmine.Doer
	openStore  func(dbType, dsn string) (db.Store, error)
	newRunID   func() string
	now        func() time.Time
	// persistDefaults writes cmpurge.yaml on first run.
	persistDefaults bool
}

func newApp() *app {
	return &app{
		stdin:      os.Stdin,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		openStore: func(dbType, dsn string) (db.Store, error) {
			s, err := db.NewStoreFromDSN(dbType, dsn)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		newRunID:        uuid.NewString,
		now:             time.Now,
		persistDefaults: true,
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil && !isReported(err) {
		logging.Errorf("%s", describeError(err))
	}
	return ExitCode(err)
}

// NewRootCmd creates a fresh root command. Each call gets its own state, so
// tests can build as many as they like.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmpurge",
		Short: "Bulk deletion of CloudMine application data and user accounts",
		Long: `cmpurge permanently deletes data from a CloudMine application using its
master key. It can wipe all application data, or delete every user account
together with that user's private data.

Every run is recorded in a local journal that can be inspected with
'cmpurge history'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupDefaultServices(cmd)
		},
	}
	cmd.Version = compositeVersion()
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: cmpurge.yaml in the user config dir)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("language", "", `Output language ("en", "de")`)
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("base-url", "", "API base URL for the fixed-domain commands")
	pf.Duration("timeout", 0, "Per-request timeout (0 keeps the transport default)")
	pf.String("user-agent", "", "User-Agent header sent to the API")
	pf.Int("parallel", 0, "Number of users deleted concurrently (default sequential)")
	pf.BoolVar(&a.noJournal, "no-journal", false, "Do not record this run in the journal")
	pf.String("database.type", "", "Journal database type (sqlite, postgres, mysql)")
	pf.String("database.dsn", "", "Journal database connection string (DSN)")
	pf.BoolVarP(&a.assumeYes, "yes", "y", false, "Skip the interactive confirmation")
	pf.BoolVar(&a.dryRun, "dry-run", false, "List what would be deleted without deleting anything")

	cmd.AddCommand(
		newDeleteDataCmd(a),
		newDeleteUsersCmd(a),
		newDeleteUsersAtCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// getConfigPathFromCli returns the --config path when one was given. The
// file has to exist.
func getConfigPathFromCli(cmd *cobra.Command, path string) (*string, error) {
	if !cmd.Flags().Changed("config") || path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// loadConfig reads the configuration once. It has no side effects so it
// can run before the usage guard.
func (a *app) loadConfig(cmd *cobra.Command) error {
	if a.cfgLoaded {
		return a.cfgErr
	}
	a.cfgLoaded = true

	path, err := getConfigPathFromCli(cmd, a.cfgFile)
	if err != nil {
		a.cfgErr = err
		return err
	}
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	a.cfg = cfg
	if config.IsNotFound(err) {
		a.firstRun = true
		err = nil
	}
	a.cfgErr = err
	return err
}

// initLanguage sets up i18n from whatever configuration is readable,
// falling back to English.
func (a *app) initLanguage(cmd *cobra.Command) {
	lang := "en"
	if err := a.loadConfig(cmd); err == nil && a.cfg.Language != "" {
		lang = a.cfg.Language
	}
	i18n.Init(lang)
}

func (a *app) setupDefaultServices(cmd *cobra.Command) error {
	if err := a.loadConfig(cmd); err != nil {
		i18n.Init("en")
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("config.error_load", err))
		return reported(fmt.Errorf("error loading config: %w", err))
	}
	i18n.Init(a.cfg.Language)

	if a.firstRun && a.persistDefaults {
		if path, err := config.WriteConfigFile(&a.cfg, false); err != nil {
			logging.Warnf("%s", i18n.T("config.warn_write_default", err))
		} else {
			logging.Debugf("wrote default config to %s", path)
		}
	}

	// Empty values in a user file fall back to the defaults.
	defaults := config.Defaults()
	if strings.TrimSpace(a.cfg.API.BaseURL) == "" {
		a.cfg.API.BaseURL = defaults["api.base_url"].(string)
	}
	if a.cfg.Database.Type == "" {
		a.cfg.Database.Type = defaults["database.type"].(string)
	}
	if a.cfg.Database.Dsn == "" {
		a.cfg.Database.Dsn = defaults["database.dsn"].(string)
	}

	if a.cfg.Log.Level != "" && !logging.SetLevel(a.cfg.Log.Level) {
		logging.Warnf("unknown log level %q, keeping %s", a.cfg.Log.Level, logging.L.GetLevel())
	}
	if a.verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	}
	return nil
}

// openJournal opens the run journal for a purge. A disabled or broken
// journal yields nil; purges never fail because of it.
func (a *app) openJournal() db.Store {
	if a.noJournal || !a.cfg.Journal.Enabled {
		return nil
	}
	st, err := a.openStore(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		logging.Warnf("%s", i18n.T("journal.warn_open", err))
		return nil
	}
	return st
}

// clientFactory builds API clients with the configured transport settings
// and the journal observer.
func (a *app) clientFactory(rec *db.Recorder) func(baseURL, masterKey string) (*cloudmine.Client, error) {
	return func(baseURL, masterKey string) (*cloudmine.Client, error) {
		opts := []cloudmine.Option{
			cloudmine.WithTimeout(a.cfg.API.Timeout),
			cloudmine.WithUserAgent(a.cfg.API.UserAgent),
		}
		if a.httpClient != nil {
			opts = append(opts, cloudmine.WithHTTPClient(a.httpClient))
		}
		if rec.Enabled() {
			opts = append(opts, cloudmine.WithObserver(rec.Observe))
		}
		return cloudmine.NewClient(baseURL, masterKey, opts...)
	}
}
