package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/nfse-reader/internal/extractor"
	"github.com/rezonia/nfse-reader/internal/logger"
	"github.com/rezonia/nfse-reader/internal/model"
)

// State is the lifecycle of one batch run
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Mode selects the failure policy of a batch run
type Mode string

const (
	// ModeAllOrNothing stops at the first failing file and keeps no records
	ModeAllOrNothing Mode = "all-or-nothing"
	// ModePartial keeps records of every file that parsed and reports the others
	ModePartial Mode = "partial"
)

// ParseMode maps a flag value to a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAllOrNothing, "":
		return ModeAllOrNothing, nil
	case ModePartial:
		return ModePartial, nil
	default:
		return "", fmt.Errorf("unknown batch mode: %s", s)
	}
}

// Parser parses one file into a response document
type Parser interface {
	Parse(ctx context.Context, path string) (*model.InvoiceResponse, error)
}

// FileResult is the outcome of one file of a batch
type FileResult struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// BatchResult is the immutable outcome of one batch run
type BatchResult struct {
	ID         string                `json:"id,omitempty"`
	State      State                 `json:"state"`
	Mode       Mode                  `json:"mode,omitempty"`
	Files      []string              `json:"files"`
	Records    []model.InvoiceDetail `json:"records"`
	Outcomes   []FileResult          `json:"outcomes,omitempty"`
	Message    string                `json:"message,omitempty"`
	Err        error                 `json:"-"`
	StartedAt  time.Time             `json:"started_at,omitempty"`
	FinishedAt time.Time             `json:"finished_at,omitempty"`
}

// Failures returns the failed file outcomes
func (r *BatchResult) Failures() []FileResult {
	return lo.Filter(r.Outcomes, func(o FileResult, _ int) bool {
		return o.Err != nil
	})
}

// Runner runs the extractor over an ordered list of paths
type Runner struct {
	parser      Parser
	concurrency int
	mode        Mode
	logger      *logger.Logger
}

// Option configures the runner
type Option func(*Runner)

// WithParser replaces the file parser
func WithParser(p Parser) Option {
	return func(r *Runner) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithConcurrency sets how many files are parsed at once (default 1)
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithMode sets the failure policy
func WithMode(m Mode) Option {
	return func(r *Runner) {
		if m != "" {
			r.mode = m
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner; by default it is sequential and all-or-nothing
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		parser:      extractor.New(),
		concurrency: 1,
		mode:        ModeAllOrNothing,
		logger:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the runner's failure policy
func (r *Runner) Mode() Mode {
	return r.mode
}

// Run parses every path in order and flattens their envelopes into one
// ordered record list. In all-or-nothing mode the first failing path ends
// the run, no later path is opened and no record is kept.
func (r *Runner) Run(ctx context.Context, paths []string) *BatchResult {
	return r.run(ctx, uuid.NewString(), paths)
}

func (r *Runner) run(ctx context.Context, id string, paths []string) *BatchResult {
	log := r.logger.With("batch", id)
	log.Debugw("batch started", "files", len(paths), "mode", r.mode, "concurrency", r.concurrency)

	result := &BatchResult{
		ID:        id,
		State:     StateProcessing,
		Mode:      r.mode,
		Files:     append([]string(nil), paths...),
		Records:   []model.InvoiceDetail{},
		StartedAt: time.Now().UTC(),
	}

	var responses []*model.InvoiceResponse
	var errs []error
	if r.concurrency > 1 && len(paths) > 1 {
		responses, errs = r.parseParallel(ctx, paths)
	} else {
		responses, errs = r.parseSequential(ctx, paths)
	}

	r.commit(result, responses, errs)
	result.FinishedAt = time.Now().UTC()

	if result.State == StateFailed {
		log.Warnw("batch failed", "error", result.Message)
	} else {
		log.Infow("batch done", "files", len(paths), "records", len(result.Records), "failures", len(result.Failures()))
	}
	return result
}

// parseSequential stops at the first error unless the batch is partial
func (r *Runner) parseSequential(ctx context.Context, paths []string) ([]*model.InvoiceResponse, []error) {
	responses := make([]*model.InvoiceResponse, len(paths))
	errs := make([]error, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		responses[i], errs[i] = r.parser.Parse(ctx, path)
		if errs[i] != nil && r.mode == ModeAllOrNothing {
			break
		}
	}

	return responses, errs
}

// parseParallel buffers every result by index. After a failure no new file
// is started; files already started finish, so the lowest failing index is
// the same one a sequential run would report.
func (r *Runner) parseParallel(ctx context.Context, paths []string) ([]*model.InvoiceResponse, []error) {
	responses := make([]*model.InvoiceResponse, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			if err := ctx.Err(); err != nil {
				errs[i] = err
			}
			break
		}
		g.Go(func() error {
			responses[i], errs[i] = r.parser.Parse(ctx, path)
			if r.mode == ModeAllOrNothing {
				return errs[i]
			}
			return nil
		})
	}
	_ = g.Wait()

	return responses, errs
}

func (r *Runner) commit(result *BatchResult, responses []*model.InvoiceResponse, errs []error) {
	for i, path := range result.Files {
		resp, err := responses[i], errs[i]
		if resp == nil && err == nil {
			// not reached
			break
		}

		outcome := FileResult{Path: path, Records: resp.Len(), Err: err}
		if err != nil {
			outcome.Error = err.Error()
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if err != nil && (r.mode == ModeAllOrNothing || isContextErr(err)) {
			result.State = StateFailed
			result.Err = err
			result.Message = failureMessage(path, err)
			result.Records = []model.InvoiceDetail{}
			return
		}
	}

	result.State = StateDone
	result.Records = lo.FlatMap(responses, func(resp *model.InvoiceResponse, _ int) []model.InvoiceDetail {
		return resp.Details()
	})
}

func failureMessage(path string, err error) string {
	if isContextErr(err) {
		return fmt.Sprintf("batch interrupted before %s: %v", path, err)
	}
	return fmt.Sprintf("failed to process %s: %v", path, err)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
