package commands

import (
	"github.com/spf13/cobra"
)

// creates and returns the "watch" command
func watch(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live terminal dashboard for camera discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			return props.UI.Launch()
		},
	}

	return cmd
}
