package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/rulesetview/internal/form"
	"github.com/matthewbaird/rulesetview/internal/view"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate RULESET...",
		Short: "Load rulesets and report what they define",
		Example: `  # Check a ruleset together with its includes
  rulesetctl validate rulesets/newspaper.ruleset.cue`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, file := range args {
				m, err := opts.load(cmd, file)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", file, err)
					failed++
					continue
				}
				doc := m.Document()
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s: %d keys, %d divisions, %d stages\n",
					file, len(doc.Keys), len(doc.Divisions), len(m.AcquisitionStages()))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rulesets failed to load", failed, len(args))
			}
			return nil
		},
	}
}

func newDivisionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "divisions RULESET",
		Short: "List the divisions a process can be created for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			priority, err := opts.priority()
			if err != nil {
				return err
			}
			noWorkflow := m.DivisionsWithNoWorkflow()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tWORKFLOW")
			for _, it := range m.StructuralElements(priority) {
				workflow := "yes"
				if slices.Contains(noWorkflow, it.ID) {
					workflow = "no"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Label, workflow)
			}
			return tw.Flush()
		},
	}
}

func newViewCmd(opts *options) *cobra.Command {
	var (
		division   string
		file       string
		additional []string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "view RULESET",
		Short: "Render the editing mask of a division",
		Long: `Render the fields a division shows for the given metadata, in display
order, followed by the keys a field may still be added for.`,
		Example: `  # Show the mask of a monograph in German
  rulesetctl view rulesets/default.ruleset.cue --division Monograph --lang de --metadata book.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			priority, err := opts.priority()
			if err != nil {
				return err
			}
			current, err := readMetadata(file)
			if err != nil {
				return err
			}
			v := m.StructuralElementView(division, opts.stage, priority)
			rows := form.DescribeRows(v.SortedVisibleMetadata(current, additional))
			addable := form.DescribeAll(v.AddableMetadata(current, additional))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"division": form.DescribeDivision(v),
					"rows":     rows,
					"addable":  addable,
				})
			}
			return printMask(cmd.OutOrStdout(), v, rows, addable)
		},
	}
	cmd.Flags().StringVarP(&division, "division", "d", "", "division to render (required)")
	cmd.Flags().StringVarP(&file, "metadata", "m", "", "YAML file with the entered metadata")
	cmd.Flags().StringSliceVar(&additional, "add", nil, "keys a field was requested for")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the mask as JSON")
	_ = cmd.MarkFlagRequired("division")
	return cmd
}

func printMask(w io.Writer, v *view.DivisionView, rows []form.Row, addable []form.Field) error {
	header := v.Label()
	if v.IsUndefined() {
		header += " (undefined)"
	}
	fmt.Fprintln(w, header)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		values := make([]string, 0, len(r.Values))
		for _, m := range r.Values {
			if m.IsGroup() {
				values = append(values, fmt.Sprintf("[%d entries]", len(m.Group)))
			} else {
				values = append(values, m.Value)
			}
		}
		if r.Field == nil {
			fmt.Fprintf(tw, "  (excluded)\t\t%s\n", strings.Join(values, ", "))
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Field.Label, fieldKind(r.Field), strings.Join(values, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(addable) > 0 {
		labels := make([]string, len(addable))
		for i, f := range addable {
			labels[i] = f.Label
		}
		fmt.Fprintf(w, "addable: %s\n", strings.Join(labels, ", "))
	}
	return nil
}

func fieldKind(f *form.Field) string {
	switch {
	case f.Undefined:
		return "undefined"
	case f.Complex:
		return "complex"
	default:
		return string(f.Type)
	}
}

func newReimportCmd(opts *options) *cobra.Command {
	var division, currentFile, updateFile string
	cmd := &cobra.Command{
		Use:   "reimport RULESET",
		Short: "Merge reimported metadata into the current metadata",
		Long: `Merge the update into the current metadata key by key, following each
key's reimport setting, and print the result as YAML. The change in the
number of entries is reported on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			current, err := readMetadata(currentFile)
			if err != nil {
				return err
			}
			update, err := readMetadata(updateFile)
			if err != nil {
				return err
			}
			merged, delta := m.UpdateMetadata(division, current, opts.stage, update)
			if err := writeMetadata(cmd.OutOrStdout(), merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%+d entries\n", delta)
			return nil
		},
	}
	cmd.Flags().StringVarP(&division, "division", "d", "", "division the metadata belongs to (required)")
	cmd.Flags().StringVar(&currentFile, "current", "", "YAML file with the current metadata")
	cmd.Flags().StringVar(&updateFile, "update", "", "YAML file with the reimported metadata (required)")
	_ = cmd.MarkFlagRequired("division")
	_ = cmd.MarkFlagRequired("update")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export RULESET [DIVISION...]",
		Short: "Write UI descriptions of division masks as JSON",
		Long: `Write the UI description of every division, or of the named ones, as
one JSON document keyed by division id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			priority, err := opts.priority()
			if err != nil {
				return err
			}
			divisions := args[1:]
			if len(divisions) == 0 {
				divisions = m.StructuralElements(priority).IDs()
			}
			described := make(map[string]form.Division, len(divisions))
			for _, id := range divisions {
				described[id] = form.DescribeDivision(m.StructuralElementView(id, opts.stage, priority))
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeJSON(w, described)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write instead of stdout")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
