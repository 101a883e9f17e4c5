package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/scoring"
)

func (a *app) scoreCmd() *cobra.Command {
	var (
		flags lotFlags
		view  bool
	)
	cmd := &cobra.Command{
		Use:   "score <project-id>",
		Short: "Rank the companies of a lot version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lot, err := lotOrCurrent(doc.Project, flags.lotID)
			if err != nil {
				return err
			}
			version, err := lot.Version(versionOrCurrent(lot, flags.versionID))
			if err != nil {
				return err
			}

			if view {
				return a.printJSON(scoring.View(lot, version))
			}
			result := scoring.Compute(lot, version)
			if a.asJSON {
				return a.printJSON(result)
			}
			return a.printScores(lot, version, result)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&view, "view", false, "print the full export view with lines and deviations")
	return cmd
}

func (a *app) printScores(lot *project.Lot, version *project.NegotiationVersion, result scoring.Result) error {
	fmt.Fprintf(a.out, "Lot %s %s, version %s", lot.Number, lot.Label, version.Label)
	if version.ReadOnly() {
		fmt.Fprint(a.out, " (read-only)")
	}
	fmt.Fprintln(a.out)
	if !result.WeightsValid {
		fmt.Fprintf(a.out, "weights sum to %g, ranking withheld\n", result.WeightTotal)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tID\tCOMPANY\tTECHNICAL\tPRICE\tTOTAL PRICE\tGLOBAL\tDECISION\t")
	for _, c := range result.Companies {
		rank := "-"
		if c.Rank > 0 {
			rank = strconv.Itoa(c.Rank)
		}
		name := c.Name
		if c.Excluded {
			name += " (excluded)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			rank, c.CompanyID, name, c.TechnicalTotal, c.PriceScore, c.TotalPrice, c.GlobalScore, version.Decisions[c.CompanyID])
	}
	return tw.Flush()
}

func lotOrCurrent(p *project.Project, lotID string) (*project.Lot, error) {
	if lotID == "" {
		return p.CurrentLot()
	}
	return p.Lot(lotID)
}
