package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"optionsimulator/internal/config"
	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/render"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Walk the asset price and print a frame per tick",
	RunE:  runSimulate,
}

func init() {
	flags := simulateCmd.Flags()
	flags.Int("frames", simulation.DefaultMaxFrames, "Frames to emit before stopping")
	flags.Duration("interval", simulation.DefaultInterval, "Real time between frames")
	flags.Uint64("seed", 0, "Random seed, 0 picks one from the clock")
	flags.String("increment", string(simulation.IncrementHorizon), "Random walk increment model: horizon or volatility")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	opts, err := cfg.StartOptions()
	if err != nil {
		return err
	}

	opts.Contract, opts.ValuationDate, err = contractFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		opts.MaxFrames, _ = flags.GetInt("frames")
	}
	if flags.Changed("interval") {
		opts.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("seed") {
		opts.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("increment") {
		value, _ := flags.GetString("increment")
		if opts.Increment, err = simulation.ParseIncrementModel(value); err != nil {
			return err
		}
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	out := cmd.OutOrStdout()
	renderer := render.NewTerminalRenderer(out)
	engine := simulation.NewSimulationEngine(renderer)
	defer engine.Cleanup()

	fmt.Fprintf(out, "seed %d\n", opts.Seed)
	if err := engine.Start(opts); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-engine.Done():
	case sig := <-sigs:
		log.Infof("Received %v, stopping simulation", sig)
		if err := engine.Stop(); err != nil {
			return err
		}
		<-engine.Done()
	}

	return renderer.RenderSummary(out)
}
