package cmd

import (
	"github.com/grovetools/focus/cli"
	"github.com/grovetools/focus/config"
	"github.com/grovetools/focus/pkg/settings"
	"github.com/grovetools/focus/pkg/tasks"
	"github.com/grovetools/focus/state"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// env is what the page-side commands share: the loaded config, the open
// key/value store and the repositories over it.
type env struct {
	cfg      *config.Config
	store    state.Store
	tasks    *tasks.Repository
	settings *settings.Repository
	logger   *logrus.Entry
}

// openEnv loads the config and opens the store it names. Callers must
// Close the returned env.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := state.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		store:    st,
		tasks:    tasks.New(st),
		settings: settings.New(st),
		logger:   cli.GetLogger(cmd),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// socket returns the daemon socket from the config.
func (e *env) socket() string {
	return e.cfg.Daemon.Socket
}
