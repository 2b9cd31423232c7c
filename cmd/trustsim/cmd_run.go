package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/logging"
	"github.com/web4labs/trustsim/internal/models"
	"github.com/web4labs/trustsim/internal/playback"
	"github.com/web4labs/trustsim/internal/presets"
	"github.com/web4labs/trustsim/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the single-agent simulation",
		Long: `Run the single-agent trust economy simulation: an agent spends energy on
actions, earns or loses trust, dies when either runs out, and is reborn
with karma until its lives are spent.

Example:
  trustsim run --preset gambler --seed 42
  trustsim run --lives 5 --risk 0.8 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			simCfg := cfg.Simulation
			if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
				p, err := presets.Engine(preset)
				if err != nil {
					return err
				}
				simCfg = p.Config
			}

			if lives, _ := cmd.Flags().GetInt("lives"); lives > 0 {
				simCfg.Lives = lives
			}
			if ticks, _ := cmd.Flags().GetInt("ticks"); ticks > 0 {
				simCfg.TicksPerLife = ticks
			}
			if cmd.Flags().Changed("risk") {
				simCfg.RiskAppetite, _ = cmd.Flags().GetFloat64("risk")
			}
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				simCfg.Seed = seed
			}

			dir, _ := cmd.Flags().GetString("dir")
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			tracer := logging.NewTraceLogger(dir, cfg.Logging.Level)
			defer tracer.Close()

			eng, err := engine.New(simCfg)
			if err != nil {
				return err
			}

			logger.Info("starting run", "lives", simCfg.Lives, "ticks_per_life", simCfg.TicksPerLife)
			result := eng.Run()

			for _, life := range result.Lives {
				tracer.Log(map[string]any{
					"event":       "life_completed",
					"life_number": life.LifeNumber,
					"ticks":       life.Ticks(),
					"final_trust": life.FinalTrust,
					"final_atp":   life.FinalATP,
					"reason":      life.Reason,
				})
			}

			var runID string
			if save, _ := cmd.Flags().GetBool("save"); save {
				runStore, err := store.NewSQLiteRunStore(dir)
				if err != nil {
					return err
				}
				defer runStore.Close()

				runID, err = runStore.SaveEngineRun(cmd.Context(), result)
				if err != nil {
					return err
				}
				logger.Info("run saved", "run_id", runID)
			}

			if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
				if err := playLives(cmd.Context(), result.Lives, interval); err != nil {
					return err
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(struct {
					RunID string `json:"run_id,omitempty"`
					engine.Result
				}{RunID: runID, Result: result})
			}

			printResult(result, runID)
			return nil
		},
	}

	cmd.Flags().String("preset", "", "Scenario preset (steady, gambler, doomed)")
	cmd.Flags().Int("lives", 0, "Number of lives including rebirths")
	cmd.Flags().Int("ticks", 0, "Tick cap per life")
	cmd.Flags().Float64("risk", 0, "Risk appetite in [0, 1]")
	cmd.Flags().Int64("seed", 0, "Random seed (0 derives one from entropy)")
	cmd.Flags().Bool("save", false, "Persist the run for later analysis")
	cmd.Flags().Duration("interval", 0, "Replay the run tick by tick at this interval (e.g. 100ms)")

	return cmd
}

// playLives replays each recorded tick on a wall-clock cadence.
func playLives(ctx context.Context, lives []models.Life, interval time.Duration) error {
	player, err := playback.New(interval)
	if err != nil {
		return err
	}

	var points []models.TickPoint
	var labels []int
	for _, life := range lives {
		for _, p := range life.History {
			points = append(points, p)
			labels = append(labels, life.LifeNumber)
		}
	}

	return player.Play(ctx, len(points), func(i int) error {
		p := points[i]
		fmt.Printf("life %d tick %4d  atp %7.1f  trust %.3f  success=%v\n",
			labels[i], p.Tick, p.ATP, p.Trust, p.Success)
		return nil
	})
}

func printResult(result engine.Result, runID string) {
	for _, life := range result.Lives {
		fmt.Printf("life %d: %3d ticks  trust %.2f -> %.2f  atp %.1f  (%s)\n",
			life.LifeNumber, life.Ticks(), life.InitialTrust, life.FinalTrust, life.FinalATP, life.Reason)
	}

	s := result.Summary
	fmt.Printf("\n%d lives, %d ticks total  final trust %.2f (%+.2f)\n",
		s.Lives, s.TotalTicks, s.FinalTrust, s.TrustGrowth)
	fmt.Printf("deaths: %d exhaustion, %d trust lost, %d completed  (seed %d)\n",
		s.Exhaustions, s.TrustDeaths, s.Completed, s.Seed)
	if runID != "" {
		fmt.Printf("saved as %s\n", runID)
	}
}
