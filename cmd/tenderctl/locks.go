package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) locksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locks",
		Aliases: []string{"lock"},
		Short:   "Inspect and manage project locks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List live locks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			locks, err := a.client.Locks(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(locks)
			}
			ids := make([]string, 0, len(locks))
			for id := range locks {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROJECT\tLOCKED BY\tSINCE")
			for _, id := range ids {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id, locks[id].LockedBy, locks[id].LockedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	acquire := &cobra.Command{
		Use:   "acquire <project-id>",
		Short: "Take the lock of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.client.Acquire(cmd.Context(), args[0], a.user)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(l)
			}
			fmt.Fprintf(a.out, "%s locked by %s\n", l.ProjectID, l.LockedBy)
			return nil
		},
	}

	var anyOwner bool
	release := &cobra.Command{
		Use:   "release <project-id>",
		Short: "Release the lock of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := a.user
			if anyOwner {
				owner = ""
			}
			if err := a.client.Release(cmd.Context(), args[0], owner); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s released\n", args[0])
			return nil
		},
	}
	release.Flags().BoolVar(&anyOwner, "any", false, "release whoever holds the lock")

	heartbeat := &cobra.Command{
		Use:   "heartbeat <project-id>",
		Short: "Refresh a lock you hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.client.Heartbeat(cmd.Context(), args[0], a.user)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s refreshed at %s\n", l.ProjectID, l.LockedAt.Local().Format(time.DateTime))
			return nil
		},
	}

	cmd.AddCommand(list, acquire, release, heartbeat)
	return cmd
}
