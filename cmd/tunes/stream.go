package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqrew/tunes-sub004/internal/audiobackend"
	"github.com/sqrew/tunes-sub004/internal/format"
	"github.com/sqrew/tunes-sub004/internal/stream"
)

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <audiofile>",
		Short: "Stream an encoded audio file through the realtime sink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, args[0])
		},
	}
	cmd.Flags().Bool("loop", false, "restart the stream from the beginning when it ends")
	return cmd
}

func runStream(cmd *cobra.Command, path string) error {
	sampleRate := flagInt(cmd, "sample-rate")
	blockSize := flagInt(cmd, "block-size")
	looping, _ := cmd.Flags().GetBool("loop")

	sample, err := format.Load(path)
	if err != nil {
		return fmt.Errorf("stream: load %s: %w", path, err)
	}

	player := stream.NewPlayer(sample, float64(sampleRate), looping)
	defer player.Stop()

	backend, err := audiobackend.NewPlayer(sampleRate, blockSize)
	if err != nil {
		return fmt.Errorf("stream: open audio backend: %w", err)
	}
	defer backend.Close()

	backend.SetPull(player.Pull)
	backend.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	for player.IsPlaying() {
		select {
		case <-sigCh:
			return nil
		case <-time.After(50 * time.Millisecond):
		}
	}

	stats := player.Stats()
	fmt.Printf("stream finished: %d underrun blocks\n", stats.UnderrunBlocks)
	return nil
}
