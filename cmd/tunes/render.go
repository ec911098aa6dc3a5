package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqrew/tunes-sub004/internal/format/midi"
	"github.com/sqrew/tunes-sub004/internal/format/wav"
	"github.com/sqrew/tunes-sub004/internal/render"
	"github.com/sqrew/tunes-sub004/internal/score"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input.mid> <output.wav>",
		Short: "Render a MIDI-sourced composition to a WAV file offline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], args[1])
		},
	}
	return cmd
}

func runRender(cmd *cobra.Command, inputPath, outputPath string) error {
	sampleRate := flagInt(cmd, "sample-rate")
	blockSize := flagInt(cmd, "block-size")

	comp, err := midi.Load(inputPath)
	if err != nil {
		return fmt.Errorf("render: load %s: %w", inputPath, err)
	}
	comp.SampleRate = sampleRate

	frozen, err := score.Freeze(*comp)
	if err != nil {
		return fmt.Errorf("render: freeze composition: %w", err)
	}

	sess, err := render.NewSession(frozen, blockSize)
	if err != nil {
		return fmt.Errorf("render: new session: %w", err)
	}

	var all []float32
	block := make([]float32, 2*blockSize)
	for {
		done, err := sess.RenderBlock(block)
		if err != nil {
			return fmt.Errorf("render: render block: %w", err)
		}
		all = append(all, block...)
		if done {
			break
		}
	}

	out := &score.Sample{Channels: 2, SampleRate: sampleRate, Frames: all}
	if err := wav.Save(outputPath, out); err != nil {
		return fmt.Errorf("render: save %s: %w", outputPath, err)
	}
	fmt.Printf("rendered %s -> %s (%d frames)\n", inputPath, outputPath, len(all)/2)
	return nil
}
