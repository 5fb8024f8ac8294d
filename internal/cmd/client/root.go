package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the msgquery client.
// It registers the message and stats commands.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "msgquery",
		Short: "msgquery client commands",
	}
	root.AddCommand(NewMessageCommand(baseURL))
	root.AddCommand(NewStatsCommand(baseURL))
	return root
}
