// Command feedmap inspects JSON payloads and evaluates mapping
// configurations against them from the shell.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/feedmap/internal/core"
	"github.com/JonMunkholm/feedmap/internal/mapping"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedmap",
		Short:         "Inspect JSON payloads and evaluate field mappings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPathsCmd(), newInspectCmd(), newResolveCmd(), newEvalCmd())
	return root
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths [file]",
		Short: "List the keyed paths present in a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			for _, p := range mapping.EnumeratePaths(doc) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Describe a document's shape and suggest a format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var chosen mapping.Format
			if format != "" {
				f, err := mapping.ParseFormat(format)
				if err != nil {
					return err
				}
				chosen = f
			}
			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), core.Inspect(doc, chosen))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "format you intend to use (keyed or positional); reports a mismatch")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var format string
	var strict bool
	cmd := &cobra.Command{
		Use:   "resolve <address> [file]",
		Short: "Resolve one address against a document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := mapping.ParseFormat(format)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd, args[1:])
			if err != nil {
				return err
			}
			v, ok := mapping.Resolver{Strict: strict}.Resolve(doc, args[0], f)
			if !ok {
				return fmt.Errorf("address %q not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "keyed", "address format (keyed or positional)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of stopping at a non-container segment")
	return cmd
}

func newEvalCmd() *cobra.Command {
	var mappingPath, entitiesPath string
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a mapping configuration against a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(mappingPath)
			if err != nil {
				return fmt.Errorf("read mapping: %w", err)
			}
			cfg, err := mapping.LoadConfigYAML(data)
			if err != nil {
				return err
			}

			dir := mapping.StaticDirectory{}
			if entitiesPath != "" {
				if dir, err = loadEntities(entitiesPath); err != nil {
					return err
				}
			}

			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), mapping.Evaluate(doc, cfg, dir))
		},
	}
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "mapping configuration (YAML)")
	cmd.Flags().StringVarP(&entitiesPath, "entities", "e", "", "entity directory (YAML map of key to name)")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

// readDocument decodes the named file, or stdin when no file is given.
func readDocument(cmd *cobra.Command, args []string) (any, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return mapping.Decode(data)
}

func loadEntities(path string) (mapping.StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	dir := mapping.StaticDirectory{}
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parse entities: %w", err)
	}
	return dir, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
