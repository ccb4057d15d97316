package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"charsub/internal/rules"
	"charsub/internal/store"
)

// RulesOptions holds flags shared by the registry subcommands.
type RulesOptions struct {
	*RootOptions
	Database string
}

// NewRulesCommand creates the "rules" command group for managing the
// ruleset registry.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the ruleset registry",
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to ruleset registry database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newRulesImportCommand(opts))
	cmd.AddCommand(newRulesExportCommand(opts))
	cmd.AddCommand(newRulesListCommand(opts))
	cmd.AddCommand(newRulesDeleteCommand(opts))

	return cmd
}

func newRulesImportCommand(opts *RulesOptions) *cobra.Command {
	var name string
	var raw bool

	cmd := &cobra.Command{
		Use:   "import <rule file>",
		Short: "Import a rule file into the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loadOpts []rules.Option
			if raw {
				loadOpts = append(loadOpts, rules.WithRawTokens())
			}
			set, errs := rules.LoadPath(args[0], loadOpts...)
			if len(errs) > 0 {
				return WrapExitError(ExitFailure, "loading rule file", errs[0])
			}
			if name != "" {
				set.Name = name
			}

			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening registry", err)
			}
			defer st.Close()

			revision, err := st.SaveSet(cmd.Context(), set)
			if err != nil {
				return WrapExitError(ExitCommandError, "saving ruleset", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Success(map[string]any{
				"name":     set.Name,
				"rules":    len(set.Rules),
				"revision": revision,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store under this name instead of the file name")
	cmd.Flags().BoolVar(&raw, "raw", false, "do not decode escape notation in rule tokens")

	return cmd
}

func newRulesExportCommand(opts *RulesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a stored ruleset back out in the line format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening registry", err)
			}
			defer st.Close()

			set, err := st.GetSet(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading ruleset", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  ruleset %s (%d rules)\n", set.Name, len(set.Rules))
			for _, r := range set.Rules {
				fmt.Fprintf(out, "%s\t%s\n", rules.Escape(r.Input), rules.Escape(r.Output))
			}
			return nil
		},
	}
	return cmd
}

func newRulesListCommand(opts *RulesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored rulesets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening registry", err)
			}
			defer st.Close()

			infos, err := st.ListSets(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "listing rulesets", err)
			}

			if opts.Format == "json" {
				formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return formatter.Success(infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no rulesets stored")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rules\tupdated %s\trev %s\n",
					info.Name, info.RuleCount, info.UpdatedAt, info.Revision)
			}
			return nil
		},
	}
	return cmd
}

func newRulesDeleteCommand(opts *RulesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored ruleset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening registry", err)
			}
			defer st.Close()

			if err := st.DeleteSet(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitCommandError, "deleting ruleset", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	return cmd
}
