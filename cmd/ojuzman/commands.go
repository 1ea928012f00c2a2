package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/gatherer/termgath"
	"github.com/urfave/cli/v3"
)

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "log in every configured account and report which ones work",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			initErr := a.pool.Initialize(ctx, a.cfg.Credentials())
			printAccounts(os.Stdout, a)
			return initErr
		},
	}
}

func printAccounts(w io.Writer, a *app) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%-4s %-24s %s\n", "#", "ACCOUNT", "STATUS")
	for i, acc := range a.cfg.Accounts {
		status := red("login failed")
		if s, ok := a.pool.Session(acc.Username); ok && s.Authenticated() {
			status = green("logged in")
		}
		fmt.Fprintf(w, "%-4d %-24s %s\n", i+1, acc.Username, status)
	}
	fmt.Fprintf(w, "%d of %d accounts usable\n", a.pool.Size(), len(a.cfg.Accounts))
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "submit a source file to a problem",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "problem id or URL", Required: true},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "source file, - for stdin", Required: true},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "poll the verdict until it is final"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			code, err := readCode(cmd.String("file"), os.Stdin)
			if err != nil {
				return err
			}
			a, err := startApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			req := api.SubmitReq{
				Uuid:    uuid.NewString(),
				Problem: cmd.String("problem"),
				Code:    code,
				Watch:   cmd.Bool("watch"),
			}
			return a.submitter().Process(ctx, req, termgath.New())
		},
	}
}

func readCode(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("source %s is empty", path)
	}
	return string(b), nil
}

func verdictCommand() *cli.Command {
	return &cli.Command{
		Name:      "verdict",
		Usage:     "print the verdict summary of a submission",
		ArgsUsage: "<tracking-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("missing tracking id")
			}
			a, err := startApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			v, err := a.pool.QueryVerdict(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(internal.APIVerdict(v))
		},
	}
}

func detailsCommand() *cli.Command {
	return &cli.Command{
		Name:      "details",
		Usage:     "print the per-test details fragment of a submission as HTML",
		ArgsUsage: "<tracking-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("missing tracking id")
			}
			a, err := startApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			html, err := a.pool.VerdictDetails(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(html)
			return nil
		},
	}
}
