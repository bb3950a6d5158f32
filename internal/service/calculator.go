// Package service wraps the calculator registry with logging, memoisation and
// the catalog view shared by the CLI, the MCP server and the catalog API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/uro-calc-engine/internal/calculator"
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// DefaultCacheSize is used when caching is enabled without a size.
const DefaultCacheSize = 1024

// CalculatorService evaluates calculators by name.
type CalculatorService struct {
	logger   *logrus.Logger
	registry *calculator.Registry
	// cache is nil when memoisation is disabled.
	cache *lru.Cache[string, *domain.ResultRecord]
}

// EvaluateResult is one evaluation and how it was produced.
type EvaluateResult struct {
	Record         *domain.ResultRecord `json:"record"`
	Cached         bool                 `json:"cached"`
	ProcessingTime time.Duration        `json:"processing_time"`
}

// CatalogEntry describes one calculator: its inputs and its band tables.
type CatalogEntry struct {
	Schema domain.Schema      `json:"schema"`
	Tables []engine.TableInfo `json:"tables"`
}

// NewCalculatorService creates a service over registry. Evaluation is pure,
// so records can be memoised by calculator and canonical input.
func NewCalculatorService(logger *logrus.Logger, registry *calculator.Registry, cacheCfg domain.CacheConfig) (*CalculatorService, error) {
	s := &CalculatorService{
		logger:   logger,
		registry: registry,
	}

	if cacheCfg.Enabled {
		size := cacheCfg.MaxItems
		if size <= 0 {
			size = DefaultCacheSize
		}
		cache, err := lru.New[string, *domain.ResultRecord](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}

	logger.WithFields(logrus.Fields{
		"calculators":   len(registry.Names()),
		"cache_enabled": s.cache != nil,
		"strict_ranges": registry.Options().StrictRanges,
	}).Info("Calculator service initialized")

	return s, nil
}

// Evaluate validates and evaluates input with the named calculator. An
// incomplete input returns an error wrapping domain.ErrIncompleteInput and
// no record. The returned record is shared with the cache and must not be
// modified.
func (s *CalculatorService) Evaluate(ctx context.Context, name string, in domain.Input) (*EvaluateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	key := name + "|" + in.Key()
	if s.cache != nil {
		if record, ok := s.cache.Get(key); ok {
			s.logger.WithField("calculator", name).Debug("Result served from cache")
			return &EvaluateResult{Record: record, Cached: true, ProcessingTime: time.Since(startTime)}, nil
		}
	}

	record, err := s.registry.Evaluate(name, in)
	if err != nil {
		var incomplete *domain.IncompleteInputError
		if errors.As(err, &incomplete) {
			s.logger.WithFields(logrus.Fields{
				"calculator": name,
				"fields":     incomplete.Fields(),
			}).Debug("Incomplete input, evaluation skipped")
			return nil, err
		}
		s.logger.WithError(err).WithField("calculator", name).Warn("Evaluation failed")
		return nil, fmt.Errorf("failed to evaluate %s: %w", name, err)
	}

	if s.cache != nil {
		s.cache.Add(key, record)
	}

	result := &EvaluateResult{
		Record:         record,
		ProcessingTime: time.Since(startTime),
	}

	s.logger.WithFields(logrus.Fields(record.LogFields())).
		WithField("processing_time", result.ProcessingTime).
		Info("Evaluation completed")

	return result, nil
}

// Names returns the registered calculator names.
func (s *CalculatorService) Names() []string {
	return s.registry.Names()
}

// Catalog describes every calculator, sorted by name.
func (s *CalculatorService) Catalog() []CatalogEntry {
	names := s.registry.Names()
	entries := make([]CatalogEntry, 0, len(names))
	for _, name := range names {
		entry, err := s.Describe(name)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

// Describe returns the catalog entry of one calculator.
func (s *CalculatorService) Describe(name string) (*CatalogEntry, error) {
	c, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return &CatalogEntry{Schema: c.Schema(), Tables: c.Tables()}, nil
}

// CacheLen returns the number of memoised records.
func (s *CalculatorService) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// PurgeCache drops every memoised record.
func (s *CalculatorService) PurgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
