package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

func openTemp(t *testing.T, halfLife int64) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.log")
	s, err := Open(path, halfLife)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreAppendAndQuery(t *testing.T) {
	s := openTemp(t, 0)
	ctx := context.Background()

	for i, ts := range []int64{100, 200, 300} {
		entry := domain.KnowledgeEntry{Domain: "example.com", Outcome: domain.OutcomeAllow, Timestamp: ts}
		if err := s.Store(ctx, entry); err != nil {
			t.Fatalf("Store(%d): %v", i, err)
		}
	}

	entries, err := s.Query(ctx, "example.com", nil, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Timestamp != 300 {
		t.Fatalf("expected most-recent-first order, got %d first", entries[0].Timestamp)
	}
}

func TestStoreQuerySinceAndLimit(t *testing.T) {
	s := openTemp(t, 0)
	ctx := context.Background()
	for _, ts := range []int64{100, 200, 300, 400} {
		_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "d", Outcome: domain.OutcomeAllow, Timestamp: ts})
	}

	since := int64(200)
	entries, err := s.Query(ctx, "d", &since, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (limit)", len(entries))
	}
	for _, e := range entries {
		if e.Timestamp < since {
			t.Fatalf("entry timestamp %d before since %d", e.Timestamp, since)
		}
	}
}

func TestStoreClampsRegressingTimestamp(t *testing.T) {
	s := openTemp(t, 0)
	ctx := context.Background()

	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "d", Outcome: domain.OutcomeAllow, Timestamp: 500})
	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "d", Outcome: domain.OutcomeAllow, Timestamp: 100})

	entries, err := s.Query(ctx, "d", nil, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if entries[0].Timestamp != 500 {
		t.Fatalf("expected the regressing entry to be clamped to 500, got %d", entries[0].Timestamp)
	}
	if entries[0].Meta["clamped_from"] != int64(100) {
		t.Fatalf("expected clamped_from=100 recorded in meta, got %v", entries[0].Meta["clamped_from"])
	}
}

func TestWeightForHalvesEveryHalfLife(t *testing.T) {
	const halfLife = int64(1000)
	w0 := weightFor(0, halfLife)
	w1 := weightFor(halfLife, halfLife)
	w2 := weightFor(2*halfLife, halfLife)

	if diff := w0 - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weightFor(0) = %v, want 1.0", w0)
	}
	if diff := w1 - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weightFor(1 half-life) = %v, want 0.5", w1)
	}
	if diff := w2 - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weightFor(2 half-lives) = %v, want 0.25", w2)
	}
}

func TestReputationWeighsRecentObservationsMoreHeavily(t *testing.T) {
	// An old deny and a recent allow, with a half-life short enough that
	// the old deny's weight has decayed to near nothing by "now": the
	// recency-weighted score should favor the recent allow.
	s := openTemp(t, 100)
	ctx := context.Background()

	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "d", Outcome: domain.OutcomeDeny, Timestamp: 0})
	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "d", Outcome: domain.OutcomeAllow, Timestamp: 1000})

	rep, err := s.Reputation(ctx, "d", 1000)
	if err != nil {
		t.Fatalf("Reputation: %v", err)
	}
	if rep.Score <= 0 {
		t.Fatalf("expected the recency-weighted score to favor the recent allow, got %v", rep.Score)
	}
}

func TestReputationUnknownWithNoEntries(t *testing.T) {
	s := openTemp(t, 0)
	rep, err := s.Reputation(context.Background(), "nothing-here.com", 1000)
	if err != nil {
		t.Fatalf("Reputation: %v", err)
	}
	if rep.Label != domain.ReputationUnknown {
		t.Fatalf("Label = %v, want unknown", rep.Label)
	}
}

func TestStoreStats(t *testing.T) {
	s := openTemp(t, 0)
	ctx := context.Background()
	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "a.com", Outcome: domain.OutcomeAllow, Timestamp: 100})
	_ = s.Store(ctx, domain.KnowledgeEntry{Domain: "b.com", Outcome: domain.OutcomeDeny, Timestamp: 200})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalEntries != 2 || stats.DistinctDomains != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.OldestTimestamp != 100 || stats.NewestTimestamp != 200 {
		t.Fatalf("unexpected timestamp bounds: %+v", stats)
	}
}

func TestOpenToleratesPartialTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.log")
	complete := `{"domain":"d","outcome":"allow","timestamp":100}` + "\n"
	partial := `{"domain":"d","outcome":"deny","timest`
	if err := os.WriteFile(path, []byte(complete+partial), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	entries, err := s.Query(context.Background(), "d", nil, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the partial trailing line to be ignored, got %d entries", len(entries))
	}
}

func TestOpenToleratesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.log")
	line := `{"domain":"d","outcome":"allow","timestamp":100,"future_field":"ignored"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Fatalf("expected the line with an unknown key to still load, got %d entries", stats.TotalEntries)
	}
}
