package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/ipc"
	"pustakam/internal/logging"
)

const skipConfigAnnotation = "pustakam-skip-config"

// commandContext carries lazily loaded configuration shared by all commands.
type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	cfg        *config.Config
	configPath string
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{socketFlag: socketFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(*c.configFlag)
		if err != nil {
			c.configErr = err
			return
		}
		c.cfg = cfg
		c.configPath = path
	})
	return c.cfg, c.configErr
}

func (c *commandContext) socketPath() (string, error) {
	if *c.socketFlag != "" {
		return *c.socketFlag, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.SocketPath(), nil
}

// withService opens the book store and runs fn against the library workflows.
// Store access from the CLI coexists with a running daemon; SQLite WAL mode
// and the busy timeout handle the cross-process contention.
func (c *commandContext) withService(ctx context.Context, fn func(context.Context, *api.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := bookstore.Open(cfg.DatabasePath(), logging.NewNop())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, api.NewService(cfg, store, logging.NewNop()))
}

// withClient dials the daemon socket and runs fn with the connected client.
func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket, err := c.socketPath()
	if err != nil {
		return nil, err
	}
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(socket, err)
	}
	return client, nil
}

func wrapDialError(socket string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("daemon is not running (no socket at %s); start it with 'pustakamd' or 'pustakam daemon run'", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("daemon socket at %s is not accepting connections; the daemon may have crashed, remove the stale socket and restart it: %w", socket, err)
	default:
		return fmt.Errorf("connect to daemon at %s: %w", socket, err)
	}
}

// markSkipConfig exempts a command from configuration loading.
func markSkipConfig(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipConfigAnnotation] = "true"
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
