package action

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/assembler"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// SnapshotCacheKey holds the encoded /action document.
const SnapshotCacheKey = "fern:actions:v1"

type CatalogRepository interface {
	FetchTable(ctx context.Context, table string) ([]models.Row, error)
}

type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Config struct {
	// FetchConcurrency bounds the table queries in flight; zero means unbounded.
	FetchConcurrency int
	CacheTTL         time.Duration
}

type Service struct {
	logger ectologger.Logger
	repo   CatalogRepository
	cache  SnapshotCache
	cfg    Config
}

// NewService creates the action service. cache may be nil.
func NewService(repo CatalogRepository, cache SnapshotCache, cfg Config, logger ectologger.Logger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
	}
}

// Items returns the raw item table.
func (s *Service) Items(ctx context.Context) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "action.Items")
	defer span.End()

	return s.repo.FetchTable(ctx, models.TableItem)
}

// Snapshot fetches the six catalog tables concurrently. The first failure
// cancels the remaining queries and is returned.
func (s *Service) Snapshot(ctx context.Context) (assembler.Tables, error) {
	ctx, span := tracing.StartSpan(ctx, "action.Snapshot")
	defer span.End()

	var tables assembler.Tables
	targets := []struct {
		table string
		rows  *[]models.Row
	}{
		{models.TableAction, &tables.Actions},
		{models.TableActionInput, &tables.Inputs},
		{models.TableActionOutput, &tables.Outputs},
		{models.TableActionSource, &tables.SourceLinks},
		{models.TableSource, &tables.Sources},
		{models.TableItem, &tables.Items},
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.FetchConcurrency > 0 {
		g.SetLimit(s.cfg.FetchConcurrency)
	}
	for _, target := range targets {
		g.Go(func() error {
			rows, err := s.repo.FetchTable(gctx, target.table)
			if err != nil {
				return err
			}
			*target.rows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return assembler.Tables{}, err
	}
	return tables, nil
}

// List fetches a snapshot and assembles every action.
func (s *Service) List(ctx context.Context) ([]models.AssembledAction, error) {
	ctx, span := tracing.StartSpan(ctx, "action.List")
	defer span.End()

	start := time.Now()
	tables, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result, err := tables.Assemble()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("error assembling actions")
		return nil, err
	}

	for _, anomaly := range result.Anomalies {
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"kind":      anomaly.Kind,
			"action_id": anomaly.ActionID,
			"ref":       anomaly.Ref,
			"count":     anomaly.Count,
		}).Warn("Anomalous reference in action catalog")
	}
	counts := make(map[string]int)
	for kind, n := range assembler.CountByKind(result.Anomalies) {
		counts[string(kind)] = n
	}
	metrics.RecordAssembly(len(result.Actions), counts, time.Since(start).Seconds())

	s.logger.WithContext(ctx).Debugf("Assembled actions: %d", len(result.Actions))
	return result.Actions, nil
}

// Document returns the JSON array served by /action, from cache when fresh.
func (s *Service) Document(ctx context.Context) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "action.Document")
	defer span.End()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, SnapshotCacheKey)
		switch {
		case err != nil:
			metrics.RecordCacheLookup(metrics.CacheError)
			s.logger.WithContext(ctx).WithError(err).Warn("error reading action snapshot from cache")
		case ok:
			metrics.RecordCacheLookup(metrics.CacheHit)
			return cached, nil
		default:
			metrics.RecordCacheLookup(metrics.CacheMiss)
		}
	}

	actions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(actions)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, SnapshotCacheKey, doc, s.cfg.CacheTTL); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("error writing action snapshot to cache")
		}
	}
	return doc, nil
}
