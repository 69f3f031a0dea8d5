package extract

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/config"
)

type job struct {
	id       uuid.UUID
	file     []byte
	strategy Strategy
	report   func(int)
	result   chan jobResult
}

type jobResult struct {
	table *tabular.TableData
	err   error
}

// Service serializes extraction requests through a bounded queue onto a
// single worker goroutine, so at most one extraction is ever in flight.
// It is an explicitly owned resource: construct it, share the handle, and
// Close it when done.
type Service struct {
	logger     *slog.Logger
	jobTimeout time.Duration

	mu         sync.RWMutex
	strategies map[string]Strategy
	closed     bool

	jobs chan *job
	done chan struct{}
}

// NewService creates the extraction service and starts its worker. The
// spatial strategy is registered when a layout collaborator is provided.
func NewService(cfg config.ExtractConfig, layout LayoutFunc, logger *slog.Logger) *Service {
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	timeout := time.Duration(cfg.JobTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	s := &Service{
		logger:     logger,
		jobTimeout: timeout,
		strategies: make(map[string]Strategy),
		jobs:       make(chan *job, queueSize),
		done:       make(chan struct{}),
	}
	if layout != nil {
		s.strategies[StrategySpatial] = &SpatialStrategy{Layout: layout}
	}

	go s.run()
	return s
}

// RegisterStrategy makes a strategy available under the given tag,
// replacing any previous registration.
func (s *Service) RegisterStrategy(name string, strategy Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[name] = strategy
}

// Extract submits a file buffer for extraction and blocks until the
// terminal result. onProgress may be nil. Ownership of the buffer passes
// to the service; the caller must not reuse it after submission.
//
// Cancelling ctx abandons the wait but does not interrupt a job already
// running; its result is discarded when it completes.
func (s *Service) Extract(ctx context.Context, file []byte, strategy string, onProgress func(percent int)) (*tabular.TableData, error) {
	if onProgress == nil {
		onProgress = func(int) {}
	}

	// The read lock is held across the enqueue so Close cannot close the
	// queue underneath a pending send.
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	impl, ok := s.strategies[strategy]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrUnknownStrategy
	}

	j := &job{
		id:       uuid.New(),
		file:     file,
		strategy: impl,
		report:   onProgress,
		result:   make(chan jobResult, 1),
	}

	select {
	case s.jobs <- j:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return nil, ctx.Err()
	}

	select {
	case res := <-j.result:
		return res.table, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting new work and waits for the worker to drain.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	<-s.done
}

func (s *Service) run() {
	defer close(s.done)

	for j := range s.jobs {
		start := time.Now()
		s.logger.Info("extraction started", "jobID", j.id, "bytes", len(j.file))

		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		table, err := j.strategy.Extract(ctx, j.file, j.report)
		cancel()

		if err != nil {
			s.logger.Warn("extraction failed", "jobID", j.id, "error", err)
		} else {
			s.logger.Info("extraction finished",
				"jobID", j.id,
				"rows", len(table.Rows),
				"confidence", table.Confidence,
				"elapsed", time.Since(start),
			)
		}

		j.result <- jobResult{table: table, err: err}
	}
}
