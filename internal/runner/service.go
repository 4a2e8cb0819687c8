package runner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelfetch/pkg/types"
)

// errRunInProgress maps to 409 at the HTTP layer.
type errRunInProgress struct{}

func (errRunInProgress) Error() string   { return "run already in progress" }
func (errRunInProgress) StatusCode() int { return 409 }

// IsRunInProgress reports whether err indicates a concurrent run trigger.
func IsRunInProgress(err error) bool {
	_, ok := err.(errRunInProgress)
	return ok
}

// Service holds the loaded manifest collection and the latest run report
// for the serve mode. At most one run is in flight at a time; a second
// trigger while running is rejected rather than queued.
type Service struct {
	runner *Runner
	cfg    Config
	log    zerolog.Logger

	mu         sync.Mutex
	descs      []types.ModelDescriptor
	lastReport *types.RunReport
	running    bool
	runs       uint64
	startedAt  time.Time
}

func NewService(descs []types.ModelDescriptor, r *Runner, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		runner:    r,
		cfg:       cfg,
		log:       log,
		descs:     descs,
		startedAt: time.Now(),
	}
}

// ListModels returns the loaded descriptors.
func (s *Service) ListModels() []types.ModelDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ModelDescriptor, len(s.descs))
	copy(out, s.descs)
	return out
}

// LastReport returns the most recent run report, or nil before any run.
func (s *Service) LastReport() *types.RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Status summarizes the daemon for GET /status.
func (s *Service) Status() types.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := "idle"
	if s.running {
		state = "running"
	}
	entries := 0
	for _, d := range s.descs {
		entries += len(d.Files)
	}
	return types.StatusResponse{
		State:          state,
		Models:         len(s.descs),
		Entries:        entries,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		RunsTotal:      s.runs,
		LastRun:        s.lastReport,
	}
}

// Ready reports whether the manifest collection is loaded.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.descs) > 0
}

// TriggerRun starts a fetch/verify run in the background. ctx should be the
// process-level context so shutdown cancels an in-flight run.
func (s *Service) TriggerRun(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errRunInProgress{}
	}
	s.running = true
	descs := make([]types.ModelDescriptor, len(s.descs))
	copy(descs, s.descs)
	s.mu.Unlock()

	go func() {
		report := s.runner.Run(ctx, descs, s.cfg)
		s.mu.Lock()
		s.lastReport = &report
		s.running = false
		s.runs++
		s.mu.Unlock()
		s.log.Info().
			Int("succeeded", report.Succeeded).
			Int("skipped", report.Skipped).
			Int("failed", report.Failed).
			Int64("bytes", report.BytesFetched).
			Msg("run finished")
	}()
	return nil
}
