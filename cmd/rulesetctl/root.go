package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/view"
)

// options are the flags shared by all subcommands.
type options struct {
	lang    string
	stage   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "rulesetctl",
		Short:         "Inspect rulesets and the editing masks they define",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.lang, "lang", "en", "language priority list, Accept-Language syntax")
	rootCmd.PersistentFlags().StringVar(&opts.stage, "stage", "", "acquisition stage")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log loader diagnostics")

	rootCmd.AddCommand(
		newValidateCmd(opts),
		newDivisionsCmd(opts),
		newViewCmd(opts),
		newReimportCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

// load reads the ruleset at file. Includes and namespace files are resolved
// relative to its directory.
func (o *options) load(cmd *cobra.Command, file string) (*view.Management, error) {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	loader := ruleset.NewLoader(os.DirFS(filepath.Dir(file)), logger)
	doc, err := loader.Load(filepath.Base(file))
	if err != nil {
		return nil, err
	}
	return view.NewManagement(doc), nil
}

func (o *options) priority() (label.PriorityList, error) {
	p, err := label.ParsePriorityList(o.lang)
	if err != nil {
		return nil, fmt.Errorf("--lang: %w", err)
	}
	return p, nil
}

// readMetadata reads a YAML list of metadata entries. An empty path reads
// nothing.
func readMetadata(path string) ([]metadata.Metadata, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []metadata.Metadata
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func writeMetadata(w io.Writer, entries []metadata.Metadata) error {
	if entries == nil {
		entries = []metadata.Metadata{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
