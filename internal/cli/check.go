package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"charsub/internal/rules"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Raw bool
}

// CheckReport summarizes validation of one rule file.
type CheckReport struct {
	Path     string       `json:"path"`
	Rules    int          `json:"rules"`
	Problems []Diagnostic `json:"problems,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <rule files...>",
		Short: "Validate rule files without applying them",
		Long: `Parse the given rule files and report every problem found: lines with a
missing map-to value and tokens with invalid escape notation. Exits 1 when
any file has problems.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "do not decode escape notation in rule tokens")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, args []string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	loadOpts := []rules.Option{rules.WithMode(rules.LoadModeCollectAll)}
	if opts.Raw {
		loadOpts = append(loadOpts, rules.WithRawTokens())
	}

	failed := false
	var reports []CheckReport
	for _, path := range args {
		set, errs := rules.LoadPath(path, loadOpts...)

		report := CheckReport{Path: path}
		if set != nil {
			report.Rules = len(set.Rules)
		}
		for _, err := range errs {
			report.Problems = append(report.Problems, Diagnostic{
				Code:    classifyLoadError(err),
				Message: err.Error(),
			})
		}
		if len(errs) > 0 {
			failed = true
		}
		reports = append(reports, report)
	}

	if opts.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if len(r.Problems) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d rules)\n", r.Path, r.Rules)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d problem(s)\n", r.Path, len(r.Problems))
			for _, p := range r.Problems {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", p.Code, p.Message)
			}
		}
	}

	if failed {
		return NewExitError(ExitFailure, "rule validation failed")
	}
	return nil
}

// classifyLoadError maps a load error onto a diagnostic code.
func classifyLoadError(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return ErrCodeNotFound
	}
	var mv *rules.MissingValueError
	if errors.As(err, &mv) {
		return ErrCodeParse
	}
	var ue *rules.UnescapeError
	if errors.As(err, &ue) {
		return ErrCodeDecode
	}
	var le *rules.LineError
	if errors.As(err, &le) {
		return ErrCodeParse
	}
	return ErrCodeReadFailed
}
