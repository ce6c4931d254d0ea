package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/userboard/internal/app"
	"github.com/vango-dev/userboard/internal/config"
)

// cli is created once per invocation before any command runs.
type cli struct {
	cfgFile string
	cfg     *config.Config
	app     *app.App
}

func (rt *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.app = app.New(cfg, app.WithLogOutput(cmd.ErrOrStderr()))
	return nil
}

func (rt *cli) close() error {
	if rt.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rt.app.Shutdown(ctx)
}

func newRootCmd() *cobra.Command {
	rt := &cli{}

	rootCmd := &cobra.Command{
		Use:   "userboard",
		Short: "Browse and create users against the users API",
		Long: `userboard talks to a users API with classified errors, retries
and optimistic creation.

Settings come from userboard.yaml, USERBOARD_* environment variables
and flags, in increasing order of precedence.

Examples:
  userboard serve
  userboard list
  userboard create --name "Ada Lovelace" --username ada --email ada@example.com
  userboard demo --count 3 --invalid`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return rt.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.cfgFile, "config", "", "config file (default: ./userboard.yaml)")
	flags.String("base-url", config.DefaultBaseURL, "users API base URL")
	flags.Bool("simulate", false, "inject random failures")
	flags.Duration("timeout", 10*time.Second, "response timeout for list calls")
	flags.Int("retries", 3, "retries for transient failures")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	rootCmd.AddCommand(
		listCmd(rt),
		createCmd(rt),
		postsCmd(rt),
		demoCmd(rt),
		serveCmd(rt),
		versionCmd(),
	)
	return rootCmd
}
