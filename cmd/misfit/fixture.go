package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/misfit-go/fixture"
)

func newFixtureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Inspect saved fixtures",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [kind]",
			Short: "List saved fixtures",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kinds := fixture.Kinds
				if len(args) == 1 {
					k, err := fixture.ParseKind(args[0])
					if err != nil {
						return err
					}
					kinds = []fixture.Kind{k}
				}
				out := cmd.OutOrStdout()
				return a.withStore(func(s fixture.Store) error {
					for _, k := range kinds {
						records, err := s.List(k)
						if err != nil {
							return err
						}
						for _, r := range records {
							printSummary(out, r)
						}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a saved fixture",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(func(s fixture.Store) error {
					r, err := s.Find(args[0])
					if err != nil {
						return err
					}
					printRecord(cmd.OutOrStdout(), r)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <kind> <id>",
			Short: "Remove a saved fixture",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := fixture.ParseKind(args[0])
				if err != nil {
					return err
				}
				return a.withStore(func(s fixture.Store) error {
					if err := s.Delete(k, args[1]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", k, args[1])
					return nil
				})
			},
		},
	)
	return cmd
}

func printSummary(w io.Writer, r *fixture.Record) {
	state := "valid"
	if r.Broken {
		state = "broken:" + strings.Join(r.Flags, ",")
	}
	fmt.Fprintf(w, "%-6s %s %s\n", r.Kind, r.ID, state)
}

func printRecord(w io.Writer, r *fixture.Record) {
	fmt.Fprintf(w, "kind: %s\n", r.Kind)
	fmt.Fprintf(w, "id: %s\n", r.ID)
	fmt.Fprintf(w, "broken: %t\n", r.Broken)
	if len(r.Flags) > 0 {
		fmt.Fprintf(w, "flags: %s\n", strings.Join(r.Flags, ","))
	}
	if r.Parent != "" {
		fmt.Fprintf(w, "parent: %s\n", r.Parent)
	}
	fmt.Fprintf(w, "created: %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%s\n", r.Hex)
}
