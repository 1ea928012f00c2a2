package main

import (
	"context"

	"github.com/programme-lv/ojuzman/internal/httpapi"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "expose the pool over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "listen address, overrides http.listen_addr"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := startApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			addr := a.cfg.HTTP.ListenAddr
			if l := cmd.String("listen"); l != "" {
				addr = l
			}
			srv := httpapi.New(httpapi.Config{
				ListenAddr:   addr,
				ReadTimeout:  a.cfg.HTTP.ReadTimeout.Duration,
				WriteTimeout: a.cfg.HTTP.WriteTimeout.Duration,
			}, a.submitter(), a.pool, a.log)
			return srv.Run(ctx)
		},
	}
}
