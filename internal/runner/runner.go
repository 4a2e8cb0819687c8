// Package runner sequences parse results through fetch and verify across
// all declared files, aggregating a complete per-entry report. Entries are
// independent: one failure never aborts sibling work.
package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelfetch/internal/common/fsutil"
	"modelfetch/internal/fetch"
	"modelfetch/internal/verify"
	"modelfetch/pkg/types"
)

const defaultConcurrency = 4

// Fetcher downloads one remote artifact to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, src, destPath string, expectedSize int64) (int64, error)
}

// Config controls one run.
type Config struct {
	// Root directory artifacts land under, as destRoot/<model>/<relative_path>.
	DestRoot string
	// Worker pool size; <= 0 means the default of 4.
	Concurrency int
	// When set, no network work happens: entries report succeeded when the
	// local artifact passes verification, failed otherwise.
	VerifyOnly bool
}

// Runner orchestrates fetch and verify over a manifest collection.
type Runner struct {
	fetcher Fetcher
	log     zerolog.Logger
}

func New(fetcher Fetcher, log zerolog.Logger) *Runner {
	return &Runner{fetcher: fetcher, log: log}
}

type task struct {
	idx   int
	model string
	entry types.FileEntry
	dest  string
}

// Run processes every file entry of every descriptor and returns a report
// covering each one. Entries already present and valid on disk are skipped
// without network work, making re-runs idempotent. Cancellation stops new
// fetches; entries never started report as canceled failures.
func (r *Runner) Run(ctx context.Context, descs []types.ModelDescriptor, cfg Config) types.RunReport {
	started := time.Now()

	var tasks []task
	for _, d := range descs {
		for _, e := range d.Files {
			tasks = append(tasks, task{
				idx:   len(tasks),
				model: d.Name,
				entry: e,
				dest:  filepath.Join(cfg.DestRoot, d.Name, filepath.FromSlash(e.RelativePath)),
			})
		}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(tasks) && len(tasks) > 0 {
		concurrency = len(tasks)
	}

	// Each worker writes only its own task's slot, so no lock is needed.
	results := make([]types.EntryResult, len(tasks))
	jobs := make(chan task)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-jobs:
					if !ok {
						return
					}
					results[t.idx] = r.process(ctx, t, cfg)
				}
			}
		}()
	}

feed:
	for _, t := range tasks {
		select {
		case jobs <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	report := types.RunReport{StartedAt: started}
	for i, t := range tasks {
		res := results[i]
		if res.Status == "" {
			res = types.EntryResult{
				Model:        t.model,
				RelativePath: t.entry.RelativePath,
				Status:       types.StatusFailed,
				ErrorKind:    types.ErrKindCanceled,
				ErrorDetail:  "run canceled before entry started",
			}
		}
		report.Entries = append(report.Entries, res)
	}
	sort.Slice(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.RelativePath < b.RelativePath
	})
	for _, e := range report.Entries {
		switch e.Status {
		case types.StatusSucceeded:
			report.Succeeded++
		case types.StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		report.BytesFetched += e.BytesFetched
		entriesTotal.WithLabelValues(string(e.Status)).Inc()
	}
	report.FinishedAt = time.Now()
	runsTotal.Inc()
	runDuration.Observe(report.FinishedAt.Sub(started).Seconds())
	return report
}

// process drives one entry to a terminal status: skip-if-valid, otherwise
// fetch then verify, with one delete-and-refetch on integrity failure.
func (r *Runner) process(ctx context.Context, t task, cfg Config) types.EntryResult {
	res := types.EntryResult{Model: t.model, RelativePath: t.entry.RelativePath}
	log := r.log.With().Str("model", t.model).Str("file", t.entry.RelativePath).Logger()

	if fsutil.PathExists(t.dest) {
		verr := verify.File(t.dest, t.entry.Checksum, t.entry.SizeBytes)
		if verr == nil {
			res.Status = types.StatusSkipped
			if cfg.VerifyOnly {
				res.Status = types.StatusSucceeded
			}
			log.Debug().Msg("already valid, skipping")
			return res
		}
		if cfg.VerifyOnly {
			return failed(res, verr)
		}
		log.Warn().Err(verr).Msg("existing artifact invalid, refetching")
	} else if cfg.VerifyOnly {
		res.Status = types.StatusFailed
		res.ErrorKind = types.ErrKindMissing
		res.ErrorDetail = "artifact not present at " + t.dest
		return res
	}

	// Integrity failure after a complete fetch gets exactly one refetch.
	for attempt := 0; ; attempt++ {
		n, err := r.fetcher.Fetch(ctx, t.entry.SourceURI, t.dest, t.entry.SizeBytes)
		res.BytesFetched += n
		res.Attempts++
		if err != nil {
			return failed(res, err)
		}
		verr := verify.File(t.dest, t.entry.Checksum, t.entry.SizeBytes)
		if verr == nil {
			res.Status = types.StatusSucceeded
			log.Info().Int64("bytes", res.BytesFetched).Msg("fetched and verified")
			return res
		}
		// corrupted artifact must never remain at the final path
		os.Remove(t.dest)
		if attempt >= 1 {
			return failed(res, verr)
		}
		log.Warn().Err(verr).Msg("verification failed after fetch, retrying once")
	}
}

func failed(res types.EntryResult, err error) types.EntryResult {
	res.Status = types.StatusFailed
	res.ErrorKind = errKind(err)
	res.ErrorDetail = err.Error()
	return res
}

// errKind maps an error to the report taxonomy.
func errKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return types.ErrKindCanceled
	case verify.IsSizeMismatch(err):
		return types.ErrKindSizeMismatch
	case verify.IsChecksumMismatch(err):
		return types.ErrKindChecksumMismatch
	case fetch.IsTransient(err):
		return types.ErrKindTransient
	case fetch.IsPermanent(err):
		return types.ErrKindPermanent
	case os.IsNotExist(err):
		return types.ErrKindMissing
	default:
		return types.ErrKindPermanent
	}
}
