package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Corphon/ScriptBreakdown/internal/prompt"
)

// newRootCommand assembles the command tree; factory builds the generator
// used by the generate command.
func newRootCommand(factory generatorFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "breakdown",
		Short:         "Turn a video script into a scene-by-scene JSON breakdown",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCommand(factory), newSchemaCommand())
	return root
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema every breakdown follows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(prompt.JSONSchema())
		},
	}
}
