package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
)

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List, inspect, create and delete projects",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := a.client.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(summaries)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tMARKET\tLOT\tUPDATED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.MarketRef, s.LotAnalyzed, s.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "full-text search on name and market reference")

	get := &cobra.Command{
		Use:   "get <project-id>",
		Short: "Print a project document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(doc.Project)
		},
	}

	del := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}

	var (
		info project.Info
		lots []string
	)
	create := &cobra.Command{
		Use:   "create [project-id]",
		Short: "Create a project with its lots",
		Long:  "Create a project. Lots are given as label:number, e.g. --lot 'Gros oeuvre:02'.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.user == "" {
				return fmt.Errorf("--user is required to create a project")
			}
			req := session.CreateRequest{Info: info}
			if len(args) == 1 {
				req.ID = args[0]
			}
			for _, raw := range lots {
				spec, err := parseLotSpec(raw)
				if err != nil {
					return err
				}
				req.Lots = append(req.Lots, spec)
			}
			sess, err := a.sessions.Create(cmd.Context(), req, session.OpenOptions{Owner: a.user})
			if err != nil {
				return err
			}
			if err := sess.Close(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, sess.Project().ID)
			return nil
		},
	}
	create.Flags().StringVar(&info.Name, "name", "", "operation name")
	create.Flags().StringVar(&info.MarketRef, "market-ref", "", "market reference")
	create.Flags().BoolVar(&info.DualEstimate, "dual-estimate", false, "estimate on two sheets (DPGF 1 and 2)")
	create.Flags().StringArrayVar(&lots, "lot", nil, "lot as label:number (repeatable)")

	cmd.AddCommand(list, get, del, create)
	return cmd
}

func parseLotSpec(raw string) (session.LotSpec, error) {
	label, number, _ := strings.Cut(raw, ":")
	label = strings.TrimSpace(label)
	if label == "" {
		return session.LotSpec{}, fmt.Errorf("invalid lot %q, expected label:number", raw)
	}
	return session.LotSpec{Label: label, Number: strings.TrimSpace(number)}, nil
}
