package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ttylogin/internal/auth"
	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/config"
	"github.com/hnrobert/ttylogin/internal/console"
	"github.com/hnrobert/ttylogin/internal/envctx"
	"github.com/hnrobert/ttylogin/internal/hostcmd"
	"github.com/hnrobert/ttylogin/internal/launch"
	"github.com/hnrobert/ttylogin/internal/logger"
	"github.com/hnrobert/ttylogin/internal/seat"
	"github.com/hnrobert/ttylogin/internal/selection"
	"github.com/hnrobert/ttylogin/internal/tty"
	"github.com/hnrobert/ttylogin/internal/ttyown"
	"github.com/hnrobert/ttylogin/internal/usermgr"
	"github.com/hnrobert/ttylogin/internal/utmp"
)

func runLogin(cmd *cobra.Command, cfgPath string) error {
	if os.Geteuid() != 0 {
		return errors.New("must run as root")
	}

	store := config.NewStore(cfgPath)
	if err := store.Ensure(); err != nil {
		logger.Warn("could not write default config %s: %v", store.Path(), err)
	}
	cfg, err := store.Get()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Dir); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}
	defer logger.Close()

	users, sessions, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	authn, err := auth.New(cfg.Login.ShadowFile, cfg.Login.SuFallback)
	if err != nil {
		return err
	}
	acct := &utmp.Writer{Path: cfg.Accounting.UtmpFile, WtmpPath: cfg.Accounting.WtmpFile}
	orch := &launch.Orchestrator{
		Ownership:         ttyown.Controller{},
		Accounting:        acct,
		Registry:          seat.Loginctl{Lister: &hostcmd.Runner{Timeout: cfg.Launch.RegistryTimeout}},
		Auth:              authn,
		Spawner:           launch.ExecSpawner{},
		Env:               envctx.Process(),
		Groups:            launch.GroupsFromFile(cfg.Login.GroupFile),
		SpawnFailureDelay: cfg.Launch.SpawnFailureDelay,
	}

	var sel console.Selection
	if cfg.Login.SaveSelection {
		sel = selection.NewStore(cfg.Login.SelectionFile)
	}
	id := tty.Current()
	c := &console.Console{
		In:           cmd.InOrStdin(),
		Out:          cmd.OutOrStdout(),
		ReadPassword: console.TerminalPassword(int(os.Stdin.Fd())),
		Auth:         authn,
		Launcher:     orch,
		Power:        hostcmd.New(),
		ActiveUsers:  func() (int, error) { return utmp.CountUsers(cfg.Accounting.UtmpFile) },
		Selection:    sel,
		Issue:        console.LoadIssue(cfg.Issue.File),
		TTY:          id,
		Users:        users,
		Sessions:     sessions,
	}

	logger.Info("ttylogin starting on %s with %d users and %d sessions", id.Path, len(users), len(sessions))
	return c.Run(cmd.Context())
}

// loadCatalog applies the login filters from cfg. Without a readable shells
// file users are not filtered by shell.
func loadCatalog(cfg config.Config) ([]catalog.User, []catalog.Session, error) {
	shells, err := usermgr.LoadShells(cfg.Login.ShellsFile)
	if err != nil {
		logger.Warn("shells file %s: %v", cfg.Login.ShellsFile, err)
		shells = nil
	}
	users, err := catalog.LoadUsers(cfg.Login.UserFile, catalog.UserFilter{
		MinUID:      cfg.Login.MinUID,
		IncludeRoot: cfg.Login.IncludeRoot,
		Shells:      shells,
	})
	if err != nil {
		return nil, nil, err
	}
	sessions, err := catalog.LoadSessions(cfg.Login.SessionFile, shells)
	if err != nil {
		return nil, nil, err
	}
	return users, sessions, nil
}
