package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "ojuzman",
		Usage: "submit solutions to oj.uz through a pool of accounts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config.toml (default: $XDG_CONFIG_HOME/ojuzman/config.toml)",
				Sources: cli.EnvVars("OJUZ_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the config",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			accountsCommand(),
			submitCommand(),
			verdictCommand(),
			detailsCommand(),
			serveCommand(),
			listenCommand(),
			pollSQSCommand(),
		},
	}
}
