package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seedtools/shopseed/internal/database"
)

// ErrRunInProgress is returned when a new run is requested while another
// run is still writing. The pipeline owns exclusive write access to the
// seed tables, so runs never overlap.
var ErrRunInProgress = errors.New("an import run is already in progress")

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Service coordinates import runs against a connection pool, retaining a
// report per run so partial-success state is explicit and queryable.
type Service struct {
	pool    *pgxpool.Pool
	sources fs.FS
	timeout time.Duration

	mu      sync.RWMutex
	running bool
	reports map[string]*RunReport
	latest  string
}

// NewService creates a Service that reads entity sources from src and
// writes through pool. timeout bounds a single run.
func NewService(pool *pgxpool.Pool, src fs.FS, timeout time.Duration) *Service {
	return &Service{
		pool:    pool,
		sources: src,
		timeout: timeout,
		reports: make(map[string]*RunReport),
	}
}

// Run executes one import run synchronously and returns its report. The
// report is also retained for later queries. The pipeline itself enforces
// no uniqueness or foreign keys at the store; everything it inserts has
// already been validated, and the whole run commits or rolls back as one
// transaction.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	runID := uuid.New().String()

	if err := s.acquire(runID); err != nil {
		return nil, err
	}
	defer s.release()

	report, err := s.runInTx(ctx, runID)
	s.store(report)
	return report, err
}

// StartRun begins an asynchronous import run and returns its id
// immediately. Query the report by id to observe the outcome.
func (s *Service) StartRun(ctx context.Context) (string, error) {
	runID := uuid.New().String()

	if err := s.acquire(runID); err != nil {
		return "", err
	}

	go func() {
		defer s.release()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in import run", "run_id", runID, "panic", r)
				s.store(&RunReport{
					RunID:      runID,
					Phase:      PhaseFailed,
					FinishedAt: time.Now(),
					Error:      fmt.Sprintf("internal error: %v", r),
				})
			}
		}()

		report, _ := s.runInTx(context.WithoutCancel(ctx), runID)
		s.store(report)
	}()

	return runID, nil
}

// Report returns the report for a run id.
func (s *Service) Report(runID string) (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return report, nil
}

// Latest returns the most recently finished run's report.
func (s *Service) Latest() (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == "" {
		return nil, ErrRunNotFound
	}
	return s.reports[s.latest], nil
}

// runInTx runs the pipeline inside a single transaction: either every
// entity batch commits, or none do.
func (s *Service) runInTx(ctx context.Context, runID string) (*RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		err = fmt.Errorf("begin transaction: %w", err)
		return failedReport(runID, err), err
	}
	defer tx.Rollback(ctx)

	runner := &Runner{
		Store:   database.New(tx),
		Sources: s.sources,
	}
	report, err := runner.Run(ctx, runID)
	if err != nil {
		return report, err
	}

	if err := tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit: %w", err)
		report.Phase = PhaseFailed
		report.Error = err.Error()
		return report, err
	}

	slog.Info("import run committed", "run_id", runID)
	return report, nil
}

func (s *Service) acquire(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunInProgress
	}
	s.running = true

	// Placeholder so the run is queryable while in flight.
	s.reports[runID] = &RunReport{
		RunID:     runID,
		Phase:     PhaseResetting,
		StartedAt: time.Now(),
	}
	s.latest = runID
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) store(report *RunReport) {
	s.mu.Lock()
	s.reports[report.RunID] = report
	s.latest = report.RunID
	s.mu.Unlock()
}

func failedReport(runID string, err error) *RunReport {
	now := time.Now()
	return &RunReport{
		RunID:      runID,
		Phase:      PhaseFailed,
		StartedAt:  now,
		FinishedAt: now,
		Error:      err.Error(),
	}
}
