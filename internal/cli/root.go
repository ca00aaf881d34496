package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openfare/openfare-rs/pkg/buildinfo"
	"github.com/openfare/openfare-rs/pkg/extension"
	"github.com/openfare/openfare-rs/pkg/registries/crates"
)

// Execute runs the openfare-rs CLI and returns an error if any command
// fails. This is the main entry point for the binary.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd builds the command tree.
//
// The log level comes from --verbose (debug) or OPENFARE_RS_LOG, and
// defaults to off. The logger is attached to the command context; the
// crates extension is constructed once in PersistentPreRun so every
// command shares the same configuration.
func newRootCmd() *cobra.Command {
	var (
		verbose bool
		summary bool
		ext     extension.Extension
	)

	root := &cobra.Command{
		Use:          "openfare-rs",
		Short:        "OpenFare registry extension for Rust crates",
		Long:         `openfare-rs resolves a crate's (or local Cargo project's) full dependency set and reports the OpenFare lock record attached to each resolved package. It is invoked by the openfare host tool and prints JSON results on stdout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := parseLogLevel(os.Getenv(envLogLevel))
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			installHooks(logger)
			ext = crates.NewExtension(crates.Config{}, logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&summary, "summary", false, "print a human-readable summary to stderr")

	root.AddCommand(newPackageLocksCmd(&ext, &summary))
	root.AddCommand(newProjectLocksCmd(&ext, &summary))
	root.AddCommand(newRegistriesCmd(&ext))

	return root
}

// newPackageLocksCmd resolves a published crate by name.
func newPackageLocksCmd(ext *extension.Extension, summary *bool) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "package-locks <package-name> [extension-args...]",
		Short: "Resolve a published crate's dependency locks",
		Long: `Resolve a crate published to crates.io and report the OpenFare lock
record for the crate and every package in its dependency graph.

Without --package-version the registry's newest version is used.

Examples:
  openfare-rs package-locks serde
  openfare-rs package-locks serde --package-version 1.0.193`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			result, err := (*ext).PackageDependenciesLocks(c.Context(), args[0], version, args[1:])
			if err != nil {
				return err
			}
			if *summary {
				writeSummary(c.ErrOrStderr(), fmt.Sprintf("%s dependency locks", args[0]), result.PackageLocks)
			}
			return writeJSON(c.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&version, "package-version", "", "crate version (default: latest published)")
	return cmd
}

// newProjectLocksCmd resolves a local Cargo project.
func newProjectLocksCmd(ext *extension.Extension, summary *bool) *cobra.Command {
	var workingDirectory string

	cmd := &cobra.Command{
		Use:   "project-locks [extension-args...]",
		Short: "Resolve a local project's dependency locks",
		Long: `Locate the nearest Cargo manifest from the working directory upward,
resolve the project's dependency graph, and report the OpenFare lock
record for the project and each resolved package.

A directory with no recognized project yields an empty result, not an
error.`,
		RunE: func(c *cobra.Command, args []string) error {
			dir, err := absWorkingDirectory(workingDirectory)
			if err != nil {
				return err
			}
			result, err := (*ext).ProjectDependenciesLocks(c.Context(), dir, args)
			if err != nil {
				return err
			}
			if *summary {
				writeSummary(c.ErrOrStderr(), fmt.Sprintf("%s dependency locks", dir), result.PackageLocks)
			}
			return writeJSON(c.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&workingDirectory, "working-directory", "", "project directory (default: current directory)")
	return cmd
}

// newRegistriesCmd prints the registry host names this extension serves.
func newRegistriesCmd(ext *extension.Extension) *cobra.Command {
	return &cobra.Command{
		Use:   "registries",
		Short: "Print supported registry host names",
		RunE: func(c *cobra.Command, args []string) error {
			return writeJSON(c.OutOrStdout(), (*ext).Registries())
		},
	}
}

// absWorkingDirectory resolves the flag value (or the process working
// directory) to an absolute path, as the upward manifest walk requires.
func absWorkingDirectory(flag string) (string, error) {
	if flag == "" {
		return os.Getwd()
	}
	return filepath.Abs(flag)
}

// writeJSON writes the host-facing protocol result to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
