package store

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/models"
)

func newTestStore(t *testing.T) *SQLiteRunStore {
	t.Helper()
	s, err := NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteRunStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() engine.Result {
	return engine.Result{
		Lives: []models.Life{
			{
				AgentID: "agent-1", LifeNumber: 1,
				StartTick: 0, EndTick: 2,
				InitialATP: 100, InitialTrust: 0.5,
				FinalATP: 110, FinalTrust: 0.54,
				Reason: models.TerminationCompleted,
				History: []models.TickPoint{
					{Tick: 1, ATP: 105, Trust: 0.52, Success: true},
					{Tick: 2, ATP: 110, Trust: 0.54, Success: true},
				},
			},
			{
				AgentID: "agent-1", LifeNumber: 2,
				StartTick: 2, EndTick: 3,
				InitialATP: 106, InitialTrust: 0.52,
				FinalATP: 0, FinalTrust: 0.47,
				Reason: models.TerminationATPExhaustion,
				History: []models.TickPoint{
					{Tick: 3, ATP: 0, Trust: 0.47, Success: false},
				},
			},
		},
		Summary: engine.Summary{
			Lives: 2, TotalTicks: 3, FinalTrust: 0.47,
			TrustGrowth: -0.03, Exhaustions: 1, Completed: 1, Seed: 42,
		},
	}
}

func TestEngineRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result := sampleResult()
	runID, err := s.SaveEngineRun(ctx, result)
	if err != nil {
		t.Fatalf("SaveEngineRun failed: %v", err)
	}
	if !strings.HasPrefix(runID, "run-") {
		t.Errorf("unexpected run ID format: %s", runID)
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Kind != RunKindEngine {
		t.Errorf("expected engine kind, got %s", run.Kind)
	}
	if run.Seed != 42 {
		t.Errorf("expected seed 42, got %d", run.Seed)
	}
	if run.Summary == nil || run.Summary.Lives != 2 {
		t.Errorf("expected a summary with 2 lives, got %+v", run.Summary)
	}

	lives, err := s.LoadLives(ctx, runID)
	if err != nil {
		t.Fatalf("LoadLives failed: %v", err)
	}
	if !reflect.DeepEqual(lives, result.Lives) {
		t.Errorf("loaded lives differ from saved:\n got %+v\nwant %+v", lives, result.Lives)
	}
}

func TestNetworkRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snapshots := []models.TickSnapshot{
		{
			Tick: 1,
			Agents: []models.NetworkAgent{
				{ID: "agent-01", ATP: 102, Trust: 0.51, Colluding: true, Diversity: 1},
				{ID: "agent-02", ATP: 100, Trust: 0.5, Diversity: 1},
			},
			Validations: []models.Validation{
				{From: "agent-02", To: "agent-01", TrustDelta: 0.01, ATPDelta: 2},
			},
			AvgTrust: 0.505,
		},
		{
			Tick: 2,
			Agents: []models.NetworkAgent{
				{ID: "agent-01", ATP: 102, Trust: 0.51, Colluding: true, Diversity: 0.5},
				{ID: "agent-02", ATP: 100, Trust: 0.5, Diversity: 1},
			},
			Detections: []models.Detection{
				{Check: models.CheckDiversity, Severity: models.SeverityHigh, Tick: 2, AgentID: "agent-01", Value: 0.3},
			},
			AvgTrust: 0.505,
		},
	}

	runID, err := s.SaveNetworkRun(ctx, 7, snapshots)
	if err != nil {
		t.Fatalf("SaveNetworkRun failed: %v", err)
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Kind != RunKindNetwork {
		t.Errorf("expected network kind, got %s", run.Kind)
	}
	if run.Summary != nil {
		t.Errorf("network runs carry no summary, got %+v", run.Summary)
	}

	loaded, err := s.LoadSnapshots(ctx, runID)
	if err != nil {
		t.Fatalf("LoadSnapshots failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, snapshots) {
		t.Errorf("loaded snapshots differ from saved:\n got %+v\nwant %+v", loaded, snapshots)
	}
}

func TestMomentsReplaceOnSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveEngineRun(ctx, sampleResult())
	if err != nil {
		t.Fatalf("SaveEngineRun failed: %v", err)
	}

	first := []models.Moment{
		{ID: "m-1", Category: models.CategoryKarma, Severity: models.SeverityCritical, Tick: 2, LifeNumber: 2, Narrative: "one"},
		{ID: "m-2", Category: models.CategoryCrisis, Severity: models.SeverityCritical, Tick: 3, LifeNumber: 2, Narrative: "two"},
	}
	if err := s.SaveMoments(ctx, runID, first); err != nil {
		t.Fatalf("SaveMoments failed: %v", err)
	}

	second := []models.Moment{
		{ID: "m-3", Category: models.CategoryTrust, Severity: models.SeverityMedium, Tick: 1, LifeNumber: 1, Narrative: "three"},
	}
	if err := s.SaveMoments(ctx, runID, second); err != nil {
		t.Fatalf("SaveMoments failed: %v", err)
	}

	loaded, err := s.LoadMoments(ctx, runID)
	if err != nil {
		t.Fatalf("LoadMoments failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, second) {
		t.Errorf("expected the second save to replace the first:\n got %+v\nwant %+v", loaded, second)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	firstID, err := s.SaveEngineRun(ctx, sampleResult())
	if err != nil {
		t.Fatalf("SaveEngineRun failed: %v", err)
	}
	secondID, err := s.SaveNetworkRun(ctx, 1, nil)
	if err != nil {
		t.Fatalf("SaveNetworkRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != secondID || runs[1].ID != firstID {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestGetRunUnknownID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRun(context.Background(), "run-0"); err == nil {
		t.Error("expected an error for an unknown run ID")
	}
}
