package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bigfive/internal/assessment"
	"bigfive/internal/cards"
	"bigfive/internal/signals"
	"bigfive/pkg/canonical"
)

// errMismatch makes a failed verification exit non-zero after the report is
// printed.
var errMismatch = errors.New("seal does not verify")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bigfivectl",
		Short:         "Offline scoring and seal verification for Big Five results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newScoreCmd(),
		newAssembleCmd(),
		newVerifyDomainCmd(),
		newVerifySuiteCmd(),
		newSignalsCmd(),
		newCardsCmd(),
	)
	return root
}

func newScoreCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "score --domain O [answers.json|-]",
		Short: "Score a complete answer set and print the sealed domain result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := assessment.ParseDomain(domain)
			if err != nil {
				return err
			}
			var answers assessment.Answers
			if err := readJSON(cmd, args, &answers); err != nil {
				return err
			}
			r, err := assessment.Score(assessment.DefaultCatalog(), d, answers)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "domain key: O, C, E, A or N")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newAssembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble O.json C.json E.json A.json N.json",
		Short: "Seal five domain results into a suite",
		Args:  cobra.ExactArgs(len(assessment.DomainOrder)),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]assessment.DomainResult, 0, len(args))
			for _, path := range args {
				var r assessment.DomainResult
				if err := readJSON(cmd, []string{path}, &r); err != nil {
					return err
				}
				results = append(results, r)
			}
			suite, err := assessment.AssembleSuite(results)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), suite)
		},
	}
}

func newVerifyDomainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-domain [result.json|-]",
		Short: "Recompute a domain nonce from its stored fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r assessment.DomainResult
			if err := readJSON(cmd, args, &r); err != nil {
				return err
			}
			v, err := assessment.VerifyDomain(r)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), v)
		},
	}
}

func newVerifySuiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-suite [suite.json|-]",
		Short: "Recompute a suite hash and every domain nonce",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s assessment.SuiteResult
			if err := readJSON(cmd, args, &s); err != nil {
				return err
			}
			v, err := assessment.VerifySuite(s)
			if err != nil {
				return err
			}
			if v.Valid {
				if err := assessment.ValidateEntries(s.Results); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					v.Valid = false
				}
			}
			return report(cmd.OutOrStdout(), v)
		},
	}
}

func newSignalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signals [suite.json|-]",
		Short: "Print life signals, the snapshot and the handoff of a suite",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s assessment.SuiteResult
			if err := readJSON(cmd, args, &s); err != nil {
				return err
			}
			sig := signals.Compute(signals.MeansFromSuite(s))
			handoff, err := signals.BuildHandoff(assessment.DefaultCatalog(), s)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"signals":  sig,
				"snapshot": signals.Snapshot(sig),
				"handoff":  handoff,
			})
		},
	}
}

func newCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards [suite.json|-]",
		Short: "Print the five cards of a suite",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s assessment.SuiteResult
			if err := readJSON(cmd, args, &s); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cards.FromSuite(assessment.DefaultCatalog(), s))
		},
	}
}

// readJSON decodes the file named by args[0], or stdin when there is no
// argument or it is "-".
func readJSON(cmd *cobra.Command, args []string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r, name = f, args[0]
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON prints v in canonical form so output can be hashed as is.
func writeJSON(w io.Writer, v any) error {
	out, err := canonical.String(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func report(w io.Writer, v assessment.Verification) error {
	if err := writeJSON(w, v); err != nil {
		return err
	}
	if !v.Valid {
		return errMismatch
	}
	return nil
}
