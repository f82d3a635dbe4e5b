package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command. An HTTP/websocket surface
// for a collaborating UI is out of scope for this build: deskaide is
// driven through "chat" or embedded directly via the agent package.
// The subcommand exists as a documented extension point rather than
// being silently absent from the tree.
func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "serve",
		Short:  "Not implemented: reserved for a future HTTP/websocket front end",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("serve: not implemented, use 'deskaide chat' instead")
		},
	}
}
