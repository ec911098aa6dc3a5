// Command tunes is the engine's CLI driver: render a composition to a
// WAV file offline, play it back in realtime, or stream an already
// encoded audio file through the realtime sink. Subcommand structure
// follows github.com/spf13/cobra, the one CLI library the reference
// pack's own terminal-driver repo (schollz-221e) depends on.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqrew/tunes-sub004/internal/slogx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slogx.Default().Error("tunes: command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tunes",
		Short: "Declarative audio synthesis and composition engine",
	}
	root.PersistentFlags().Int("sample-rate", 48000, "render/playback sample rate in Hz")
	root.PersistentFlags().Int("block-size", 1024, "render block size in frames")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newPlayCmd())
	root.AddCommand(newStreamCmd())
	return root
}

func flagInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunes: internal flag error for --%s: %v\n", name, err)
		os.Exit(2)
	}
	return v
}
