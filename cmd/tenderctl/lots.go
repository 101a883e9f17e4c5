package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
)

func (a *app) lotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lots",
		Short: "Manage the lots of a project",
	}

	var (
		number  string
		current bool
	)
	add := &cobra.Command{
		Use:   "add <project-id> <label>",
		Short: "Add a lot with its initial negotiation version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lotID string
			err := a.edit(cmd.Context(), args[0], func(sess *session.Session) error {
				return sess.Mutate(func(p *project.Project) error {
					lot := p.AddLot(args[1], number, time.Now())
					lotID = lot.ID
					if current {
						return p.SetCurrentLot(lot.ID)
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, lotID)
			return nil
		},
	}
	add.Flags().StringVar(&number, "number", "", "lot number")
	add.Flags().BoolVar(&current, "current", false, "make the new lot the analysed one")

	use := &cobra.Command{
		Use:   "use <project-id> <lot-id>",
		Short: "Select the analysed lot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(sess *session.Session) error {
				return sess.Mutate(func(p *project.Project) error {
					return p.SetCurrentLot(args[1])
				})
			})
		},
	}

	cmd.AddCommand(add, use)
	return cmd
}

func (a *app) companiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Manage the bidders of a lot",
	}

	var lotID string
	add := &cobra.Command{
		Use:   "add <project-id> <name>",
		Short: "Add a company to a lot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			err := a.editLot(cmd.Context(), args[0], lotID, func(lot *project.Lot) error {
				c, err := lot.AddCompany(args[1])
				if err != nil {
					return err
				}
				id = c.ID
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}

	var reason string
	status := &cobra.Command{
		Use:   "status <project-id> <company-id> <undecided|retained|excluded>",
		Short: "Set the lot-level status of a company",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid company id %q", args[1])
			}
			return a.editLot(cmd.Context(), args[0], lotID, func(lot *project.Lot) error {
				return lot.SetCompanyStatus(companyID, project.CompanyStatus(args[2]), reason)
			})
		},
	}
	status.Flags().StringVar(&reason, "reason", "", "exclusion reason")

	for _, c := range []*cobra.Command{add, status} {
		c.Flags().StringVar(&lotID, "lot", "", "lot id (default: analysed lot)")
	}
	cmd.AddCommand(add, status)
	return cmd
}

func (a *app) criteriaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Manage the weighting criteria of a lot",
	}

	var (
		lotID string
		label string
	)
	add := &cobra.Command{
		Use:   "add <project-id> <criterion-id> <weight>",
		Short: "Add a criterion; ids like 'prix' or 'delais' select the price or planning role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q", args[2])
			}
			return a.editLot(cmd.Context(), args[0], lotID, func(lot *project.Lot) error {
				_, err := lot.AddCriterion(project.CriterionSpec{ID: args[1], Label: label, Weight: weight})
				return err
			})
		},
	}
	add.Flags().StringVar(&label, "label", "", "criterion label")

	sub := &cobra.Command{
		Use:   "sub <project-id> <criterion-id> <label> <weight>",
		Short: "Add a sub-criterion with an integer weight",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid weight %q", args[3])
			}
			var subID string
			err = a.editLot(cmd.Context(), args[0], lotID, func(lot *project.Lot) error {
				s, err := lot.AddSubCriterion(args[1], args[2], weight)
				if err != nil {
					return err
				}
				subID = s.ID
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, subID)
			return nil
		},
	}

	for _, c := range []*cobra.Command{add, sub} {
		c.Flags().StringVar(&lotID, "lot", "", "lot id (default: analysed lot)")
	}
	cmd.AddCommand(add, sub)
	return cmd
}
