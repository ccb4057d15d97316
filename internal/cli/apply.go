package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/transform"

	"charsub/internal/engine"
	"charsub/internal/rules"
	"charsub/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	RuleFiles []string
	Database  string
	Ruleset   string
	Output    string
	Raw       bool
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply [input files...]",
		Short: "Apply substitution rules to text",
		Long: `Apply substitution rules to the given input files, or to stdin when no
files are given. Output goes to stdout unless -o is used.

Rules come from --rules files (line format or YAML, repeatable) and/or a
named ruleset in the registry (--db with --ruleset). When several sources
are given they are layered in order, later rules overwriting earlier ones
for the same input sequence.

Example:
  charsub apply --rules tex.charsub draft.txt
  cat draft.txt | charsub apply --rules tex.charsub --rules local.yaml
  charsub apply --db registry.db --ruleset tex -o out.txt draft.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.RuleFiles, "rules", nil, "rule file (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to ruleset registry database")
	cmd.Flags().StringVar(&opts.Ruleset, "ruleset", "", "name of a stored ruleset to apply")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "do not decode escape notation in rule tokens")

	return cmd
}

func runApply(cmd *cobra.Command, opts *ApplyOptions, args []string) error {
	machine, err := buildMachine(cmd.Context(), opts)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "creating output file", err)
		}
		defer f.Close()
		out = f
	}

	if len(args) == 0 {
		return applyStream(machine, cmd.InOrStdin(), out, "stdin")
	}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening input file", err)
		}
		err = applyStream(machine, f, out, path)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// applyStream pipes src through the machine into out. The machine is reset
// between streams so a candidate cannot leak across file boundaries.
func applyStream(m *engine.Machine, src io.Reader, out io.Writer, name string) error {
	tr := engine.NewTransformer(m)
	tr.Reset()

	n, err := io.Copy(out, transform.NewReader(src, tr))
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("processing %s", name), err)
	}
	slog.Debug("stream processed", "input", name, "bytes_out", n)
	return nil
}

// buildMachine layers all requested rule sources into one engine.
func buildMachine(ctx context.Context, opts *ApplyOptions) (*engine.Machine, error) {
	if len(opts.RuleFiles) == 0 && opts.Ruleset == "" {
		return nil, NewExitError(ExitCommandError, "no rules given: use --rules and/or --db with --ruleset")
	}
	if (opts.Ruleset == "") != (opts.Database == "") {
		return nil, NewExitError(ExitCommandError, "--db and --ruleset must be used together")
	}

	merged := &rules.Set{Name: "apply"}

	if opts.Ruleset != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "opening registry", err)
		}
		defer st.Close()

		set, err := st.GetSet(ctx, opts.Ruleset)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading ruleset", err)
		}
		merged.Merge(set)
		slog.Debug("ruleset loaded from registry", "name", set.Name, "rules", len(set.Rules))
	}

	for _, path := range opts.RuleFiles {
		var loadOpts []rules.Option
		if opts.Raw {
			loadOpts = append(loadOpts, rules.WithRawTokens())
		}
		set, errs := rules.LoadPath(path, loadOpts...)
		if len(errs) > 0 {
			return nil, WrapExitError(ExitFailure, "loading rule file", errs[0])
		}
		merged.Merge(set)
		slog.Debug("rule file loaded", "path", path, "rules", len(set.Rules))
	}

	slog.Debug("machine built", "rules", len(merged.Rules))
	return merged.Machine(), nil
}
