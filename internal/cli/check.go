package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/lint"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		policyFlag string
		vars       []string
		strict     bool
	)
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Lint module descriptors and verify that they resolve",
		Long: `Check reports suspicious descriptors (self references, absent or
out-of-range targets, non-strict versions) and then runs the solver.

It fails when any finding is an error, when resolution fails, or, with
--strict, when any finding is a warning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			policy, err := c.policy(policyFlag)
			if err != nil {
				return err
			}
			descriptors, err := c.loadDescriptors(ctx, pathArg(args), vars)
			if err != nil {
				return err
			}

			findings := lint.Check(descriptors)
			if len(findings) > 0 {
				writeFindings(cmd.OutOrStdout(), findings)
			}

			plan, solveErr := solver.New(solver.WithMatchPolicy(policy)).Plan(ctx, descriptors)
			if solveErr != nil {
				printError("Resolution failed: %s", errs.UserMessage(solveErr))
			} else {
				printSuccess("Resolved %d modules", len(plan.Order))
			}

			errCount, warnCount := countFindings(findings)
			switch {
			case solveErr != nil:
				return solveErr
			case errCount > 0:
				return errs.New(errs.ErrCodeInvalidManifest, "check failed with %d errors", errCount)
			case strict && warnCount > 0:
				return errs.New(errs.ErrCodeInvalidManifest, "check failed with %d warnings (--strict)", warnCount)
			}
			if warnCount > 0 {
				printWarning("%d warnings", warnCount)
			} else if len(findings) == 0 {
				printSuccess("No findings")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policyFlag, "policy", "", "match policy: id-and-range or range-only (default from config)")
	cmd.Flags().StringArrayVar(&vars, "set", nil, "condition variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func countFindings(findings []lint.Finding) (errors, warnings int) {
	for _, f := range findings {
		switch f.Severity {
		case lint.Error:
			errors++
		case lint.Warning:
			warnings++
		}
	}
	return errors, warnings
}

// writeFindings renders findings as a table.
func writeFindings(w io.Writer, findings []lint.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{f.Severity.String(), f.Module, f.Message}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("SEVERITY", "MODULE", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(colorCyan)
			}
			if col != 0 {
				return base
			}
			switch findings[row].Severity {
			case lint.Error:
				return base.Foreground(colorRed)
			case lint.Warning:
				return base.Foreground(colorYellow)
			default:
				return base.Foreground(colorGray)
			}
		})
	fmt.Fprintln(w, t.Render())
}
