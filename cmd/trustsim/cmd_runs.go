package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/store"
)

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			runStore, err := store.NewSQLiteRunStore(dir)
			if err != nil {
				return err
			}
			defer runStore.Close()

			runs, err := runStore.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Println("no stored runs")
				return nil
			}

			for _, run := range runs {
				line := fmt.Sprintf("%s  %-7s  %s  seed %d",
					run.ID, run.Kind, run.CreatedAt.Local().Format(time.DateTime), run.Seed)
				if run.Summary != nil {
					line += fmt.Sprintf("  (%d lives, final trust %.2f)",
						run.Summary.Lives, run.Summary.FinalTrust)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
