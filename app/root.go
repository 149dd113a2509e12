// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "realtor-authcore",
	Short: "Authorization, session and audit core for the realtor back office",
	Long: `realtor-authcore provides the authorization, session and audit subsystem
of the realtor back office: role and permission evaluation, session lifecycle
management, and the audit trail with suspicious-activity analysis. It serves a
narrow internal RPC surface consumed by the web layer and admin tooling.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
