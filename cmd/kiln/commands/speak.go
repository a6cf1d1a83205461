package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newSpeakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speak <dialog-file>",
		Short: "Synthesize the dialogue lines that have no recording yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Speak(cmd.Context(), args[0], runOptions(cmd))
		},
	}
}
