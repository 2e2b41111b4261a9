package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Continuation-style component web framework for Go",
		Long: `Weft serves component trees through a continuation-style
request cycle.

Every page a browser sees is a stored snapshot of the component
tree; the back button, reload, and modal call/answer flows all
work without client-side state. Features include:

  • Components with decorations and backtrackable state
  • Callback dispatch over opaque per-page field ids
  • Page-id rotation for reload-safe actions
  • Modal delegation via call and answer
  • Live updates over WebSocket
  • Session continuity across restarts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
