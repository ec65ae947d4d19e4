// Package recognizer runs the Arabic number, ordinal, and percentage
// extractors together over one text and caches what it finds.
//
// A Recognizer is built from a config.Config and is safe for concurrent use.
package recognizer

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/az-ai-labs/numrec/arabic"
	"github.com/az-ai-labs/numrec/config"
	"github.com/az-ai-labs/numrec/extractor"
)

// Recognizer merges number, ordinal, and percentage results. When two
// overlap the longer wins; on equal spans a percentage beats an ordinal,
// which beats a plain number.
type Recognizer struct {
	mode       extractor.Mode
	number     *extractor.Extractor
	ordinal    *extractor.Extractor
	percentage *extractor.PercentageExtractor
	cache      *lru.Cache[string, []extractor.Result]
	logger     *zap.Logger
}

// New builds the extractors for cfg.Mode. A nil logger discards output.
// opts are applied after the settings derived from cfg, for example to
// supply a custom resource table.
func New(cfg *config.Config, logger *zap.Logger, opts ...arabic.Option) (*Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseOpts := []arabic.Option{
		arabic.WithLogger(logger),
		arabic.WithTimeout(cfg.ScanTimeout),
		arabic.WithMaxInputBytes(cfg.MaxInputBytes),
	}
	opts = append(baseOpts, opts...)

	number, err := arabic.NewNumberExtractor(cfg.Mode, opts...)
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	ordinal, err := arabic.NewOrdinalExtractor(opts...)
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	percentage, err := arabic.NewPercentageExtractor(opts...)
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	cache, err := lru.New[string, []extractor.Result](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("recognizer: cache: %w", err)
	}

	r := &Recognizer{
		mode:       cfg.Mode,
		number:     number,
		ordinal:    ordinal,
		percentage: percentage,
		cache:      cache,
		logger:     logger,
	}
	logger.Info("recognizer ready",
		zap.Stringer("mode", cfg.Mode),
		zap.Int("cache_size", cfg.CacheSize),
		zap.Duration("scan_timeout", cfg.ScanTimeout))
	return r, nil
}

// Mode returns the mode the number extractor was built for.
func (r *Recognizer) Mode() extractor.Mode { return r.mode }

// Recognize returns every numeric expression in s, sorted by Start.
// The returned slice is the caller's to modify. When a rule scan times out
// the results found so far are returned but not cached.
func (r *Recognizer) Recognize(s string) []extractor.Result {
	if cached, ok := r.cache.Get(s); ok {
		return clone(cached)
	}
	pct, errPct := r.percentage.ExtractPartial(s)
	ord, errOrd := r.ordinal.ExtractPartial(s)
	num, errNum := r.number.ExtractPartial(s)
	results := extractor.Merge(pct, ord, num)

	if err := multierr.Combine(errPct, errOrd, errNum); err != nil {
		r.logger.Warn("partial results not cached", zap.Int("bytes", len(s)), zap.Error(err))
		return results
	}
	r.cache.Add(s, results)
	return clone(results)
}

// RecognizeContext is like Recognize but stops when ctx is done and reports
// pattern timeouts. Only complete results are cached.
func (r *Recognizer) RecognizeContext(ctx context.Context, s string) ([]extractor.Result, error) {
	if cached, ok := r.cache.Get(s); ok {
		return clone(cached), nil
	}
	pct, err := r.percentage.ExtractContext(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("recognizer: percentage: %w", err)
	}
	ord, err := r.ordinal.ExtractContext(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("recognizer: ordinal: %w", err)
	}
	num, err := r.number.ExtractContext(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("recognizer: number: %w", err)
	}
	results := extractor.Merge(pct, ord, num)
	r.cache.Add(s, results)
	return clone(results), nil
}

// CacheLen returns the number of cached texts.
func (r *Recognizer) CacheLen() int { return r.cache.Len() }

// Purge empties the result cache.
func (r *Recognizer) Purge() {
	r.cache.Purge()
	r.logger.Debug("result cache purged")
}

func clone(results []extractor.Result) []extractor.Result {
	if results == nil {
		return nil
	}
	out := make([]extractor.Result, len(results))
	for i, res := range results {
		out[i] = res
		out[i].Parts = clone(res.Parts)
	}
	return out
}
