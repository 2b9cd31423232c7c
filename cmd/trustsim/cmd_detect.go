package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/detect"
	"github.com/web4labs/trustsim/internal/store"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <run-id>",
		Short: "Extract significant moments from a stored run",
		Long: `Analyze a stored run and print its significant moments, ranked most
significant first. Works on both single-agent and network runs.

Example:
  trustsim detect run-1724500000000000000
  trustsim detect run-1724500000000000000 --limit 5 --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			runStore, err := store.NewSQLiteRunStore(dir)
			if err != nil {
				return err
			}
			defer runStore.Close()

			runID := args[0]
			run, err := runStore.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}

			history := detect.History{SourceID: run.ID}
			switch run.Kind {
			case store.RunKindEngine:
				history.Lives, err = runStore.LoadLives(cmd.Context(), run.ID)
			case store.RunKindNetwork:
				history.Snapshots, err = runStore.LoadSnapshots(cmd.Context(), run.ID)
			default:
				return fmt.Errorf("unknown run kind: %s", run.Kind)
			}
			if err != nil {
				return err
			}

			detector, err := detect.New(cfg.Detector)
			if err != nil {
				return err
			}
			moments := detector.Detect(history)

			if save, _ := cmd.Flags().GetBool("save"); save {
				if err := runStore.SaveMoments(cmd.Context(), run.ID, moments); err != nil {
					return err
				}
			}

			shown := moments
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(moments) > limit {
				shown = moments[:limit]
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(shown)
			}

			if len(moments) == 0 {
				fmt.Println("no significant moments")
				return nil
			}

			fmt.Printf("%d moments in %s:\n", len(moments), run.ID)
			for _, m := range shown {
				fmt.Printf("  [%-9s %-8s] tick %4d  %s\n", m.Category, m.Severity, m.Tick, m.Narrative)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum moments to print (0 means all)")
	cmd.Flags().Bool("save", false, "Persist the ranked moments alongside the run")

	return cmd
}
