package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command of the todos demo.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todos",
		Short: "todos - a namespaced state container demo",
		Long:  "Mounts the todos and user models, drives their effects and prints the rendered views.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")

	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
