package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the trackerctl command tree
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		output     string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "trackerctl",
		Short:         "File metadata tracker tooling",
		Long:          "Inspect files and tracker tables, and feed object notifications to the tracker.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path, empty for defaults and environment only")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to the console")

	rootCmd.AddCommand(
		newSniffCmd(),
		newDecomposeCmd(),
		newRouteCmd(),
		newEnqueueCmd(),
		newTableCmd("latest", "Show the latest metadata of a filepath"),
		newTableCmd("history", "Show superseded metadata versions of a filepath"),
		newTableCmd("deleted", "Show deletion records of a filepath"),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "trackerctl version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func getConfigPath(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("config")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "text" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
