package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/tenderscore/internal/domain/negotiation"
	"github.com/rpggio/tenderscore/internal/domain/project"
)

// lotFlags are shared by every command working on one version of a lot.
type lotFlags struct {
	lotID     string
	versionID string
}

func (f *lotFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lotID, "lot", "", "lot id (default: analysed lot)")
	cmd.Flags().StringVar(&f.versionID, "version", "", "version id (default: current version)")
}

func (a *app) versionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "versions",
		Aliases: []string{"version"},
		Short:   "Drive the negotiation rounds of a lot",
	}

	var (
		flags        lotFlags
		label        string
		analysisDate string
	)
	create := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Open a new round from the validated current version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var created *project.NegotiationVersion
			err := a.editLot(cmd.Context(), args[0], flags.lotID, func(lot *project.Lot) error {
				v, err := negotiation.CreateVersion(lot, label, analysisDate, time.Now())
				created = v
				return err
			})
			if err != nil {
				return withReason(err)
			}
			fmt.Fprintf(a.out, "%s %s\n", created.ID, created.Label)
			return nil
		},
	}
	create.Flags().StringVar(&flags.lotID, "lot", "", "lot id (default: analysed lot)")
	create.Flags().StringVar(&label, "label", "", "version label (default: V<n>)")
	create.Flags().StringVar(&analysisDate, "analysis-date", "", "analysis date")

	transition := func(use, short string, apply func(*project.Lot, string) error) *cobra.Command {
		var f lotFlags
		c := &cobra.Command{
			Use:   use + " <project-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				err := a.editLot(cmd.Context(), args[0], f.lotID, func(lot *project.Lot) error {
					return apply(lot, versionOrCurrent(lot, f.versionID))
				})
				return withReason(err)
			},
		}
		f.bind(c)
		return c
	}

	cmd.AddCommand(
		create,
		transition("freeze", "Make a version read-only", negotiation.FreezeVersion),
		transition("unfreeze", "Make a frozen version editable again", negotiation.UnfreezeVersion),
		transition("validate", "Validate a version once an awardee is chosen", func(lot *project.Lot, id string) error {
			return negotiation.ValidateVersion(lot, id, time.Now())
		}),
		transition("unvalidate", "Withdraw the validation of a version", negotiation.UnvalidateVersion),
		transition("switch", "Make a version current", negotiation.SwitchVersion),
	)
	return cmd
}

func (a *app) decisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Record negotiation decisions",
	}

	var flags lotFlags
	set := &cobra.Command{
		Use:   "set <project-id> <company-id> <undecided|retained|not_retained|awardee>",
		Short: "Set the decision for a company",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompanyID(args[1])
			if err != nil {
				return err
			}
			err = a.editLot(cmd.Context(), args[0], flags.lotID, func(lot *project.Lot) error {
				return negotiation.SetDecision(lot, versionOrCurrent(lot, flags.versionID), companyID, project.Decision(args[2]))
			})
			return withReason(err)
		},
	}
	flags.bind(set)
	cmd.AddCommand(set)
	return cmd
}

func (a *app) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Rate companies on technical criteria",
	}

	var (
		flags   lotFlags
		subID   string
		comment string
	)
	set := &cobra.Command{
		Use:   "set <project-id> <company-id> <criterion-id> <notation>",
		Short: "Rate a company: insufficient, passable, average, good, very_good (empty clears)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompanyID(args[1])
			if err != nil {
				return err
			}
			note := project.TechnicalNote{
				CompanyID:      companyID,
				CriterionID:    args[2],
				SubCriterionID: subID,
				Notation:       project.Notation(args[3]),
				Comment:        comment,
			}
			err = a.editLot(cmd.Context(), args[0], flags.lotID, func(lot *project.Lot) error {
				return negotiation.SetTechnicalNote(lot, versionOrCurrent(lot, flags.versionID), note)
			})
			return withReason(err)
		},
	}
	flags.bind(set)
	set.Flags().StringVar(&subID, "sub", "", "sub-criterion id")
	set.Flags().StringVar(&comment, "comment", "", "free comment")
	cmd.AddCommand(set)
	return cmd
}

func (a *app) pricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Enter offered amounts",
	}

	var (
		flags  lotFlags
		lineID int
		dpgf2  float64
	)
	set := &cobra.Command{
		Use:   "set <project-id> <company-id> <amount>",
		Short: "Set the offered amount for the base offer (line 0) or a lot line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompanyID(args[1])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[2])
			}
			entry := project.PriceEntry{CompanyID: companyID, LineID: lineID, DPGF1: amount, DPGF2: dpgf2}
			err = a.editLot(cmd.Context(), args[0], flags.lotID, func(lot *project.Lot) error {
				return negotiation.SetPriceEntry(lot, versionOrCurrent(lot, flags.versionID), entry)
			})
			return withReason(err)
		},
	}
	flags.bind(set)
	set.Flags().IntVar(&lineID, "line", 0, "lot line id, 0 for the base offer")
	set.Flags().Float64Var(&dpgf2, "dpgf2", 0, "amount on the second estimation sheet")
	cmd.AddCommand(set)
	return cmd
}

func parseCompanyID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid company id %q", raw)
	}
	return id, nil
}

// withReason prefixes lifecycle rejections with their stable reason code.
func withReason(err error) error {
	if err == nil {
		return nil
	}
	if code := negotiation.ReasonCode(err); code != "" {
		return fmt.Errorf("%s: %w", code, err)
	}
	return err
}
