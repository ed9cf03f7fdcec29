package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdivelog2uddf/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand, it behaves like "convert".
func (c *CLI) RootCommand() *cobra.Command {
	convert := c.convertCommand()

	root := &cobra.Command{
		Use:   appName + " [dive numbers...]",
		Short: "gdivelog2uddf exports gdivelog dive logs as UDDF",
		Long: `gdivelog2uddf converts a gdivelog dive log into UDDF 3.0.0 documents
(or the legacy UDCF format) for import into other logbook software.

Dives are grouped into repetition groups and, optionally, trips from their
start times alone. Large logs can be split into several self-contained files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         convert.Args,
		RunE:         convert.RunE,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.Flags().AddFlagSet(convert.Flags())

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(convert)
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
