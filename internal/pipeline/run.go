// Package pipeline drives the harvest of a company list: cache lookup, website
// resolution, site crawl, and result aggregation.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/contact-harvester/internal/crawling"
	"github.com/jonathan/contact-harvester/internal/types"
)

// DefaultWorkers processes companies strictly one at a time.
const DefaultWorkers = 1

// Resolver finds a verified website for a company.
type Resolver interface {
	Resolve(ctx context.Context, companyName string) (string, bool)
}

// Crawler collects emails from a website.
type Crawler interface {
	Crawl(ctx context.Context, baseURL string) (*crawling.SiteResult, error)
}

// Cache stores emails per company.
type Cache interface {
	Get(company string) ([]string, bool)
	Set(ctx context.Context, company string, emails []string) error
}

// Recorder persists a run and its rows.
type Recorder interface {
	CreateRun(ctx context.Context, source string, total int) (uuid.UUID, error)
	RecordRow(ctx context.Context, runID uuid.UUID, position int, result types.CompanyResult) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// ProgressEvent reports one finished company.
type ProgressEvent struct {
	Index  int                 `json:"index"`
	Total  int                 `json:"total"`
	Result types.CompanyResult `json:"result"`
}

// ProgressCallback is called as each company finishes. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Workers  int
	Source   string // label recorded with the run, e.g. the input file
	OnResult ProgressCallback
	Recorder Recorder
}

// Runner processes company lists.
type Runner struct {
	resolver Resolver
	crawler  Crawler
	cache    Cache
	opts     RunOptions
	logger   *zap.Logger
	flights  singleflight.Group
}

// NewRunner creates a Runner. cache may be nil to disable caching.
func NewRunner(resolver Resolver, crawler Crawler, cache Cache, opts *RunOptions, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o RunOptions
	if opts != nil {
		o = *opts
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	return &Runner{
		resolver: resolver,
		crawler:  crawler,
		cache:    cache,
		opts:     o,
		logger:   logger,
	}
}

// Run processes every company and returns exactly one result per input, in input order.
// Per-company failures become error rows and never stop the run. When ctx is cancelled,
// companies not yet started get error rows.
func (r *Runner) Run(ctx context.Context, companies []string) []types.CompanyResult {
	return r.RunWithProgress(ctx, companies, nil)
}

// RunWithProgress is Run with an additional per-call callback, invoked after RunOptions.OnResult.
func (r *Runner) RunWithProgress(ctx context.Context, companies []string, onResult ProgressCallback) []types.CompanyResult {
	results := make([]types.CompanyResult, len(companies))
	runID := r.startRun(ctx, len(companies))

	var emitMu sync.Mutex
	finish := func(i int, result types.CompanyResult) {
		results[i] = result
		emitMu.Lock()
		defer emitMu.Unlock()
		r.recordRow(ctx, runID, i, result)
		event := ProgressEvent{Index: i, Total: len(companies), Result: result}
		if r.opts.OnResult != nil {
			r.opts.OnResult(event)
		}
		if onResult != nil {
			onResult(event)
		}
	}

	// Workers never return errors, so one company's failure cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	for i, company := range companies {
		if err := ctx.Err(); err != nil {
			finish(i, types.ErrorResult(company, err.Error()))
			continue
		}
		g.Go(func() error {
			finish(i, r.processShared(ctx, company))
			return nil
		})
	}
	_ = g.Wait()

	r.completeRun(ctx, runID)

	summary := types.Summarize(results)
	r.logger.Info("harvest complete",
		zap.Int("companies", summary.Total),
		zap.Int("with_email", summary.WithEmail),
		zap.Int("cached", summary.Cached),
		zap.Int("no_website", summary.NoWebsite),
		zap.Int("not_found", summary.NotFound),
		zap.Int("errors", summary.Errors))

	return results
}

// processShared collapses concurrent work on the same company name.
func (r *Runner) processShared(ctx context.Context, company string) types.CompanyResult {
	v, _, _ := r.flights.Do(company, func() (interface{}, error) {
		return r.Process(ctx, company), nil
	})
	return v.(types.CompanyResult)
}

// Process harvests a single company. A panic is recovered into an error result.
func (r *Runner) Process(ctx context.Context, company string) (result types.CompanyResult) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic while processing company",
				zap.String("company", company),
				zap.Any("panic", p),
				zap.Stack("stack"))
			result = types.ErrorResult(company, fmt.Sprintf("panic: %v", p))
		}
	}()
	return r.process(ctx, company)
}

func (r *Runner) process(ctx context.Context, company string) types.CompanyResult {
	logger := r.logger.With(zap.String("company", company))

	if err := ctx.Err(); err != nil {
		return types.ErrorResult(company, err.Error())
	}

	if r.cache != nil {
		if emails, ok := r.cache.Get(company); ok && len(emails) > 0 {
			logger.Info("using cached results", zap.Int("emails", len(emails)))
			return types.EmailsResult(company, emails, "", true)
		}
	}

	website, ok := r.resolver.Resolve(ctx, company)
	if err := ctx.Err(); err != nil {
		return types.ErrorResult(company, err.Error())
	}
	if !ok {
		logger.Info("no website found")
		return types.NoWebsiteResult(company)
	}

	site, err := r.crawler.Crawl(ctx, website)
	if err != nil {
		logger.Warn("crawl failed", zap.String("website", website), zap.Error(err))
		return types.ErrorResult(company, err.Error())
	}
	if len(site.Emails) == 0 {
		logger.Info("no emails found", zap.String("website", website))
		return types.NotFoundResult(company, website)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, company, site.Emails); err != nil {
			logger.Warn("failed to persist cache", zap.Error(err))
		}
	}

	logger.Info("emails found", zap.String("website", website), zap.Int("emails", len(site.Emails)))
	return types.EmailsResult(company, site.Emails, website, false)
}

// startRun creates the run record. Recording failures are logged and disable recording.
func (r *Runner) startRun(ctx context.Context, total int) uuid.UUID {
	if r.opts.Recorder == nil {
		return uuid.Nil
	}
	runID, err := r.opts.Recorder.CreateRun(ctx, r.opts.Source, total)
	if err != nil {
		r.logger.Warn("failed to create run record", zap.Error(err))
		return uuid.Nil
	}
	r.logger.Debug("recording run", zap.String("run_id", runID.String()))
	return runID
}

func (r *Runner) recordRow(ctx context.Context, runID uuid.UUID, position int, result types.CompanyResult) {
	if runID == uuid.Nil {
		return
	}
	if err := r.opts.Recorder.RecordRow(context.WithoutCancel(ctx), runID, position, result); err != nil {
		r.logger.Warn("failed to record row", zap.Int("position", position), zap.Error(err))
	}
}

func (r *Runner) completeRun(ctx context.Context, runID uuid.UUID) {
	if runID == uuid.Nil {
		return
	}
	status := types.RunStatusCompleted
	if ctx.Err() != nil {
		status = types.RunStatusCancelled
	}
	if err := r.opts.Recorder.CompleteRun(context.WithoutCancel(ctx), runID, status); err != nil {
		r.logger.Warn("failed to complete run record", zap.Error(err))
	}
}
