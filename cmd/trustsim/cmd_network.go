package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/logging"
	"github.com/web4labs/trustsim/internal/models"
	"github.com/web4labs/trustsim/internal/network"
	"github.com/web4labs/trustsim/internal/playback"
	"github.com/web4labs/trustsim/internal/presets"
	"github.com/web4labs/trustsim/internal/store"
)

func newNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Run the multi-agent collusion simulation",
		Long: `Run the network simulation: agents validate each other's actions while a
colluding cartel inflates its own rewards and detection checks try to
expose it.

Example:
  trustsim network --preset naive-cartel --seed 7
  trustsim network --sophistication advanced --cartel 3 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			netCfg := cfg.Network
			if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
				p, err := presets.Network(preset)
				if err != nil {
					return err
				}
				netCfg = p.Config
			}

			if soph, _ := cmd.Flags().GetString("sophistication"); soph != "" {
				netCfg.Sophistication = models.Sophistication(soph)
			}
			if ticks, _ := cmd.Flags().GetInt("ticks"); ticks > 0 {
				netCfg.Ticks = ticks
			}
			if cmd.Flags().Changed("cartel") {
				netCfg.CartelSize, _ = cmd.Flags().GetInt("cartel")
			}
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				netCfg.Seed = seed
			}

			dir, _ := cmd.Flags().GetString("dir")
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			tracer := logging.NewTraceLogger(dir, cfg.Logging.Level)
			defer tracer.Close()

			sim, err := network.New(netCfg)
			if err != nil {
				return err
			}
			seed := sim.Seed()

			logger.Info("starting network run",
				"agents", netCfg.NetworkSize, "cartel", netCfg.CartelSize,
				"sophistication", netCfg.Sophistication, "ticks", netCfg.Ticks)
			snapshots := sim.Run()

			for _, snap := range snapshots {
				for _, d := range snap.Detections {
					tracer.Log(map[string]any{
						"event":    "detection",
						"tick":     d.Tick,
						"check":    d.Check,
						"severity": d.Severity,
						"agent_id": d.AgentID,
						"value":    d.Value,
					})
				}
			}

			var runID string
			if save, _ := cmd.Flags().GetBool("save"); save {
				runStore, err := store.NewSQLiteRunStore(dir)
				if err != nil {
					return err
				}
				defer runStore.Close()

				runID, err = runStore.SaveNetworkRun(cmd.Context(), seed, snapshots)
				if err != nil {
					return err
				}
				logger.Info("run saved", "run_id", runID)
			}

			if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
				player, err := playback.New(interval)
				if err != nil {
					return err
				}
				err = player.Play(cmd.Context(), len(snapshots), func(i int) error {
					snap := snapshots[i]
					fmt.Printf("tick %3d  avg trust %.3f  validations %3d  detections %d\n",
						snap.Tick, snap.AvgTrust, len(snap.Validations), len(snap.Detections))
					return nil
				})
				if err != nil {
					return err
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(struct {
					RunID     string                `json:"run_id,omitempty"`
					Seed      int64                 `json:"seed"`
					Snapshots []models.TickSnapshot `json:"snapshots"`
				}{RunID: runID, Seed: seed, Snapshots: snapshots})
			}

			printNetworkSummary(snapshots, seed, runID)
			return nil
		},
	}

	cmd.Flags().String("preset", "", "Scenario preset (naive-cartel, advanced-cartel)")
	cmd.Flags().String("sophistication", "", "Cartel sophistication (naive, moderate, advanced)")
	cmd.Flags().Int("ticks", 0, "Run length in ticks")
	cmd.Flags().Int("cartel", -1, "Number of colluding agents")
	cmd.Flags().Int64("seed", 0, "Random seed (0 derives one from entropy)")
	cmd.Flags().Bool("save", false, "Persist the run for later analysis")
	cmd.Flags().Duration("interval", 0, "Replay the run tick by tick at this interval (e.g. 100ms)")

	return cmd
}

func printNetworkSummary(snapshots []models.TickSnapshot, seed int64, runID string) {
	byCheck := make(map[models.DetectionCheck]int)
	total := 0
	firstTick := 0
	for _, snap := range snapshots {
		for _, d := range snap.Detections {
			total++
			byCheck[d.Check]++
			if firstTick == 0 {
				firstTick = snap.Tick
			}
		}
	}

	if len(snapshots) > 0 {
		last := snapshots[len(snapshots)-1]
		fmt.Printf("%d ticks, %d agents, final avg trust %.3f  (seed %d)\n",
			len(snapshots), len(last.Agents), last.AvgTrust, seed)
	}

	if total == 0 {
		fmt.Println("no collusion detected")
	} else {
		fmt.Printf("%d detections, first at tick %d:\n", total, firstTick)
		for _, check := range []models.DetectionCheck{
			models.CheckDiversity, models.CheckChallenge,
			models.CheckATPVelocity, models.CheckTrustVelocity,
		} {
			if n := byCheck[check]; n > 0 {
				fmt.Printf("  %-15s %d\n", check, n)
			}
		}
	}

	if runID != "" {
		fmt.Printf("saved as %s\n", runID)
	}
}
