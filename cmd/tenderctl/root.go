package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/tenderscore/internal/client"
	"github.com/rpggio/tenderscore/internal/config"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
)

// app carries the global flags and the clients built from them.
type app struct {
	out io.Writer

	server  string
	user    string
	timeout time.Duration
	asJSON  bool
	force   bool
	verbose bool

	client   *client.Client
	sessions *session.Service
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "tenderctl",
		Short:         "Score and negotiate procurement offers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", "", "persistence service URL (default from TENDERSCORE_CLIENT_BASE_URL)")
	flags.StringVarP(&a.user, "user", "u", os.Getenv("USER"), "user name recorded on locks")
	flags.DurationVar(&a.timeout, "timeout", 0, "request timeout")
	flags.BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")
	flags.BoolVar(&a.force, "force", false, "edit even when another user holds the lock")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log HTTP traffic to stderr")

	root.AddCommand(
		a.projectsCmd(),
		a.locksCmd(),
		a.lotsCmd(),
		a.companiesCmd(),
		a.criteriaCmd(),
		a.scoreCmd(),
		a.versionsCmd(),
		a.decisionsCmd(),
		a.notesCmd(),
		a.pricesCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.server == "" {
		a.server = cfg.Client.BaseURL
	}
	if a.timeout <= 0 {
		a.timeout = cfg.Client.Timeout
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.client = client.New(a.server, client.WithTimeout(a.timeout), client.WithLogger(logger))
	a.sessions = session.NewService(a.client, a.client, logger, session.WithHeartbeatInterval(cfg.Lock.Heartbeat))
	return nil
}

// edit opens a session on a project, applies fn and saves the result.
func (a *app) edit(ctx context.Context, projectID string, fn func(*session.Session) error) error {
	if a.user == "" {
		return fmt.Errorf("--user is required to edit a project")
	}
	sess, err := a.sessions.Open(ctx, projectID, session.OpenOptions{Owner: a.user, Force: a.force})
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(context.WithoutCancel(ctx)) }()

	if err := fn(sess); err != nil {
		return err
	}
	return sess.Save(ctx)
}

// editLot is edit restricted to one lot; an empty lotID selects the current lot.
func (a *app) editLot(ctx context.Context, projectID, lotID string, fn func(*project.Lot) error) error {
	return a.edit(ctx, projectID, func(sess *session.Session) error {
		return sess.MutateLot(lotID, fn)
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func versionOrCurrent(lot *project.Lot, versionID string) string {
	if versionID == "" {
		return lot.CurrentVersionID
	}
	return versionID
}
