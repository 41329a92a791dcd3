package processor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezonia/nfse-reader/internal/model"
)

// Session holds the latest batch result. Runs are serialized, and readers
// always see one consistent snapshot: idle, processing, done or failed.
type Session struct {
	runner *Runner

	runMu sync.Mutex

	mu      sync.RWMutex
	current BatchResult
}

// NewSession creates an idle session backed by the runner
func NewSession(runner *Runner) *Session {
	if runner == nil {
		runner = NewRunner()
	}
	return &Session{
		runner:  runner,
		current: idleResult(),
	}
}

// Run starts a batch over paths and blocks until it finishes. A run that
// arrives while another is processing waits for it.
func (s *Session) Run(ctx context.Context, paths []string) *BatchResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	snapshot := s.begin(paths)
	result := s.runner.run(ctx, snapshot.ID, paths)
	s.store(result)
	return result
}

// Start marks the session processing and runs the batch in the background.
// It returns the processing snapshot of the new run; done is closed when
// the run is stored.
func (s *Session) Start(ctx context.Context, paths []string) (snapshot BatchResult, done <-chan struct{}) {
	s.runMu.Lock()

	snapshot = s.begin(paths)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer s.runMu.Unlock()
		s.store(s.runner.run(ctx, snapshot.ID, paths))
	}()
	return snapshot, finished
}

func (s *Session) begin(paths []string) BatchResult {
	snapshot := BatchResult{
		ID:        uuid.NewString(),
		State:     StateProcessing,
		Mode:      s.runner.Mode(),
		Files:     append([]string(nil), paths...),
		Records:   []model.InvoiceDetail{},
		StartedAt: time.Now().UTC(),
	}
	s.store(&snapshot)
	return snapshot
}

// Current returns a copy of the latest snapshot
func (s *Session) Current() BatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reset returns the session to idle. It waits for a running batch.
func (s *Session) Reset() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.store(nil)
}

func (s *Session) store(result *BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result == nil {
		s.current = idleResult()
		return
	}
	s.current = *result
}

func idleResult() BatchResult {
	return BatchResult{
		State:   StateIdle,
		Files:   []string{},
		Records: []model.InvoiceDetail{},
	}
}
