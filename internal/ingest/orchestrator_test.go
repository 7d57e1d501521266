package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"newscollector/internal/core"
	"newscollector/internal/registry"
)

type fakeHealth struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (h *fakeHealth) RecordSuccess(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.successes = append(h.successes, id)
}

func (h *fakeHealth) RecordFailure(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, id)
}

type fakeConnector struct {
	source  *registry.Source
	records []core.RawRecord
	err     error
}

func (c *fakeConnector) Fetch(ctx context.Context, opts FetchOptions) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.records, c.err
}

func (c *fakeConnector) Source() *registry.Source { return c.source }

func fakeFactory(records map[string][]core.RawRecord, errs map[string]error) ConnectorFactory {
	return func(source *registry.Source) Connector {
		return &fakeConnector{source: source, records: records[source.ID], err: errs[source.ID]}
	}
}

func testSources(ids ...string) []registry.Source {
	var out []registry.Source
	for _, id := range ids {
		out = append(out, registry.Source{ID: id, Name: id, IngestionKind: core.KindRSS})
	}
	return out
}

func TestOrchestratorGathersAllSources(t *testing.T) {
	health := &fakeHealth{}
	records := map[string][]core.RawRecord{
		"a": {{ID: "a1", SourceID: "a"}, {ID: "a2", SourceID: "a"}},
		"b": {{ID: "b1", SourceID: "b"}},
	}
	o := NewOrchestrator(health, fakeFactory(records, nil), 4)

	got := o.Collect(context.Background(), testSources("a", "b"), FetchOptions{})
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if len(health.successes) != 2 {
		t.Errorf("expected 2 successes, got %v", health.successes)
	}
}

func TestOrchestratorFailureIsolated(t *testing.T) {
	health := &fakeHealth{}
	records := map[string][]core.RawRecord{"ok": {{ID: "r1", SourceID: "ok"}}}
	errs := map[string]error{"broken": errors.New("connection refused")}
	o := NewOrchestrator(health, fakeFactory(records, errs), 4)

	got := o.Collect(context.Background(), testSources("ok", "broken"), FetchOptions{})
	if len(got) != 1 {
		t.Fatalf("healthy source should still deliver, got %d records", len(got))
	}
	if len(health.failures) != 1 || health.failures[0] != "broken" {
		t.Errorf("expected the broken source to record a failure, got %v", health.failures)
	}
	if len(health.successes) != 1 || health.successes[0] != "ok" {
		t.Errorf("expected the healthy source to record a success, got %v", health.successes)
	}
}

func TestOrchestratorZeroRecordsIsSuccess(t *testing.T) {
	health := &fakeHealth{}
	o := NewOrchestrator(health, fakeFactory(nil, nil), 4)

	got := o.Collect(context.Background(), testSources("quiet"), FetchOptions{})
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
	if len(health.successes) != 1 {
		t.Errorf("a clean zero-record fetch counts as success, got %v", health.successes)
	}
}

func TestOrchestratorCancelledConnectorCountsAsFailure(t *testing.T) {
	health := &fakeHealth{}
	o := NewOrchestrator(health, fakeFactory(nil, nil), 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := o.Collect(ctx, testSources("a"), FetchOptions{})
	if len(got) != 0 {
		t.Fatalf("cancelled collection should yield nothing, got %d", len(got))
	}
	if len(health.failures) != 1 {
		t.Errorf("cancellation must count as failure, got %v", health.failures)
	}
}

func TestOrchestratorEmptySources(t *testing.T) {
	health := &fakeHealth{}
	o := NewOrchestrator(health, fakeFactory(nil, nil), 4)
	if got := o.Collect(context.Background(), nil, FetchOptions{}); got != nil {
		t.Errorf("no sources should yield nil, got %v", got)
	}
}

func TestOrchestratorQuotaPartialResultsKept(t *testing.T) {
	health := &fakeHealth{}
	records := map[string][]core.RawRecord{"q": {{ID: "r1", SourceID: "q"}}}
	errs := map[string]error{"q": ErrQuotaExhausted}
	o := NewOrchestrator(health, fakeFactory(records, errs), 4)

	got := o.Collect(context.Background(), testSources("q"), FetchOptions{})
	if len(got) != 1 {
		t.Fatalf("partial results before exhaustion must be kept, got %d", len(got))
	}
	if len(health.failures) != 1 {
		t.Errorf("quota exhaustion counts as a failure, got %v", health.failures)
	}
}
