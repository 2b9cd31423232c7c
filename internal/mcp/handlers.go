package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/web4labs/trustsim/internal/detect"
	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/models"
	"github.com/web4labs/trustsim/internal/network"
	"github.com/web4labs/trustsim/internal/presets"
	"github.com/web4labs/trustsim/internal/store"
)

// handleRun runs the single-agent engine and summarizes the result.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (*sdk.CallToolResult, RunOutput, error) {
	cfg := s.cfg.Simulation
	if args.Preset != "" {
		p, err := presets.Engine(args.Preset)
		if err != nil {
			return nil, RunOutput{}, err
		}
		cfg = p.Config
	}

	if args.Lives > 0 {
		cfg.Lives = args.Lives
	}
	if args.TicksPerLife > 0 {
		cfg.TicksPerLife = args.TicksPerLife
	}
	if args.RiskAppetite != nil {
		cfg.RiskAppetite = *args.RiskAppetite
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return nil, RunOutput{}, err
	}
	result := eng.Run()

	out := RunOutput{
		Seed:        result.Summary.Seed,
		FinalTrust:  result.Summary.FinalTrust,
		TrustGrowth: result.Summary.TrustGrowth,
		Exhaustions: result.Summary.Exhaustions,
		TrustDeaths: result.Summary.TrustDeaths,
		Completed:   result.Summary.Completed,
	}
	for _, life := range result.Lives {
		out.Lives = append(out.Lives, LifeSummary{
			LifeNumber:   life.LifeNumber,
			Ticks:        life.Ticks(),
			InitialTrust: life.InitialTrust,
			FinalTrust:   life.FinalTrust,
			FinalATP:     life.FinalATP,
			Reason:       string(life.Reason),
		})
	}

	if args.Save {
		runID, err := s.store.SaveEngineRun(ctx, result)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = runID
	}

	return nil, out, nil
}

// handleNetwork runs the collusion simulation and summarizes detections.
func (s *Server) handleNetwork(ctx context.Context, req *sdk.CallToolRequest, args NetworkInput) (*sdk.CallToolResult, NetworkOutput, error) {
	cfg := s.cfg.Network
	if args.Preset != "" {
		p, err := presets.Network(args.Preset)
		if err != nil {
			return nil, NetworkOutput{}, err
		}
		cfg = p.Config
	}

	if args.Sophistication != "" {
		cfg.Sophistication = models.Sophistication(args.Sophistication)
	}
	if args.Ticks > 0 {
		cfg.Ticks = args.Ticks
	}
	if args.CartelSize != nil {
		cfg.CartelSize = *args.CartelSize
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}

	sim, err := network.New(cfg)
	if err != nil {
		return nil, NetworkOutput{}, err
	}
	snapshots := sim.Run()

	out := NetworkOutput{
		Seed:         sim.Seed(),
		Ticks:        len(snapshots),
		DetectionsBy: make(map[string]int),
	}
	if len(snapshots) > 0 {
		out.FinalAvgTrust = snapshots[len(snapshots)-1].AvgTrust
	}
	for _, snap := range snapshots {
		for _, d := range snap.Detections {
			out.Detections++
			out.DetectionsBy[string(d.Check)]++
			if out.FirstDetection == 0 || snap.Tick < out.FirstDetection {
				out.FirstDetection = snap.Tick
			}
		}
	}

	if args.Save {
		runID, err := s.store.SaveNetworkRun(ctx, sim.Seed(), snapshots)
		if err != nil {
			return nil, NetworkOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = runID
	}

	return nil, out, nil
}

// handleDetect loads a stored run, extracts its moments, and returns them
// ranked.
func (s *Server) handleDetect(ctx context.Context, req *sdk.CallToolRequest, args DetectInput) (*sdk.CallToolResult, DetectOutput, error) {
	if args.RunID == "" {
		return nil, DetectOutput{}, fmt.Errorf("run_id is required")
	}

	run, err := s.store.GetRun(ctx, args.RunID)
	if err != nil {
		return nil, DetectOutput{}, err
	}

	history := detect.History{SourceID: run.ID}
	switch run.Kind {
	case store.RunKindEngine:
		history.Lives, err = s.store.LoadLives(ctx, run.ID)
	case store.RunKindNetwork:
		history.Snapshots, err = s.store.LoadSnapshots(ctx, run.ID)
	default:
		return nil, DetectOutput{}, fmt.Errorf("unknown run kind: %s", run.Kind)
	}
	if err != nil {
		return nil, DetectOutput{}, err
	}

	detector, err := detect.New(s.cfg.Detector)
	if err != nil {
		return nil, DetectOutput{}, err
	}
	moments := detector.Detect(history)

	if args.Save {
		if err := s.store.SaveMoments(ctx, run.ID, moments); err != nil {
			return nil, DetectOutput{}, fmt.Errorf("failed to save moments: %w", err)
		}
	}

	out := DetectOutput{RunID: run.ID, Count: len(moments), Moments: moments}
	if args.Limit > 0 && len(moments) > args.Limit {
		out.Moments = moments[:args.Limit]
	}

	return nil, out, nil
}
