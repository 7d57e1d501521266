package ingest

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newscollector/internal/core"
	"newscollector/internal/logger"
	"newscollector/internal/registry"
)

// Health is the subset of the registry the orchestrator writes back to.
type Health interface {
	RecordSuccess(id string)
	RecordFailure(id string)
}

// ConnectorFactory builds the connector for one selected source, or nil
// when the source's ingestion kind is not supported.
type ConnectorFactory func(source *registry.Source) Connector

// DefaultFactory builds RSS and API connectors with the given timeout and
// per-source credentials. Web-crawl sources have no built-in connector.
func DefaultFactory(timeout time.Duration, creds map[string]Credentials) ConnectorFactory {
	return func(source *registry.Source) Connector {
		switch source.IngestionKind {
		case core.KindRSS:
			return NewRSSConnector(source, timeout)
		case core.KindAPI:
			return NewAPIConnector(source, creds[source.ID], timeout)
		default:
			logger.Debug().Str("source", source.ID).Str("kind", string(source.IngestionKind)).Msg("no connector for ingestion kind")
			return nil
		}
	}
}

// Orchestrator fans one request out across every selected source's
// connector and gathers the results.
type Orchestrator struct {
	health         Health
	factory        ConnectorFactory
	maxConcurrency int
}

// NewOrchestrator builds an orchestrator that records per-source health
// through health and creates connectors through factory.
func NewOrchestrator(health Health, factory ConnectorFactory, maxConcurrency int) *Orchestrator {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Orchestrator{health: health, factory: factory, maxConcurrency: maxConcurrency}
}

// Collect drives all source connectors concurrently and returns every raw
// record they produced. A connector returning without error counts as a
// success even with zero records; an error or cancellation counts as a
// failure. Connector errors never propagate to the caller and there are
// no retries at this layer.
func (o *Orchestrator) Collect(ctx context.Context, sources []registry.Source, opts FetchOptions) []core.RawRecord {
	if len(sources) == 0 {
		logger.Warn().Msg("no sources selected, nothing to collect")
		return nil
	}

	logger.Info().Int("sources", len(sources)).Msg("starting collection")

	var (
		mu  sync.Mutex
		all []core.RawRecord
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)

	for i := range sources {
		source := sources[i]
		connector := o.factory(&source)
		if connector == nil {
			continue
		}

		g.Go(func() error {
			records, err := connector.Fetch(ctx, opts)
			if err != nil {
				logger.Error().Str("source", source.ID).Err(err).Msg("source collection failed")
				o.health.RecordFailure(source.ID)
				// Partial results gathered before a quota exhaustion are kept.
				if len(records) == 0 {
					return nil
				}
			} else {
				o.health.RecordSuccess(source.ID)
			}

			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}

	// Workers only return nil; Wait is for the join.
	_ = g.Wait()

	logger.Info().Int("records", len(all)).Msg("collection complete")
	return all
}
