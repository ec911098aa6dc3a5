package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqrew/tunes-sub004/internal/audiobackend"
	"github.com/sqrew/tunes-sub004/internal/control"
	"github.com/sqrew/tunes-sub004/internal/format/midi"
	"github.com/sqrew/tunes-sub004/internal/score"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <input.mid>",
		Short: "Play a MIDI-sourced composition in realtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0])
		},
	}
}

func runPlay(cmd *cobra.Command, inputPath string) error {
	sampleRate := flagInt(cmd, "sample-rate")
	blockSize := flagInt(cmd, "block-size")

	comp, err := midi.Load(inputPath)
	if err != nil {
		return fmt.Errorf("play: load %s: %w", inputPath, err)
	}
	comp.SampleRate = sampleRate

	frozen, err := score.Freeze(*comp)
	if err != nil {
		return fmt.Errorf("play: freeze composition: %w", err)
	}

	reg := control.NewRegistry(float64(sampleRate), blockSize)
	id, err := reg.PlayMixer(frozen)
	if err != nil {
		return fmt.Errorf("play: start playback: %w", err)
	}

	player, err := audiobackend.NewPlayer(sampleRate, blockSize)
	if err != nil {
		return fmt.Errorf("play: open audio backend: %w", err)
	}
	defer player.Close()

	player.SetPull(reg.Pull)
	player.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	for reg.IsPlaying(id) {
		select {
		case <-sigCh:
			reg.Stop(id)
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
