package main

import (
	"time"

	"github.com/spf13/cobra"

	"pustakam/internal/daemonctl"
	"pustakam/internal/daemonrun"
)

const daemonWaitTimeout = 10 * time.Second

func newDaemonCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run and control the generation daemon",
	}
	cmd.AddCommand(newDaemonRunCommand(cmdCtx))
	cmd.AddCommand(newDaemonStartCommand(cmdCtx))
	cmd.AddCommand(newDaemonStopCommand(cmdCtx))
	return cmd
}

func newDaemonStartCommand(cmdCtx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := cmdCtx.socketPath()
			if err != nil {
				return err
			}
			executable, err := daemonctl.DaemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(socket, executable, daemonctl.LaunchOptions{
				ConfigPath: *cmdCtx.configFlag,
				LogLevel:   logLevel,
			}, daemonWaitTimeout)
			if err != nil {
				return err
			}
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				cmd.Printf("Daemon already running (pid %d)\n", result.PID)
			default:
				cmd.Printf("Daemon started (pid %d)\n", result.PID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func newDaemonStopCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := cmdCtx.socketPath()
			if err != nil {
				return err
			}
			running, err := daemonctl.StopAndWait(socket, daemonWaitTimeout)
			if err != nil {
				return err
			}
			if !running {
				cmd.Println("Daemon is not running.")
				return nil
			}
			cmd.Println("Daemon stopped.")
			return nil
		},
	}
}

func newDaemonRunCommand(cmdCtx *commandContext) *cobra.Command {
	var logLevel string
	var development bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "dev", false, "Use human-readable log output")
	return cmd
}
