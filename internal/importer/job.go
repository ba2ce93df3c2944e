// Package importer turns an uploaded product table into sequential
// product-creation calls, logging one outcome per row.
package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProductCreator is the remote call each valid row makes.
type ProductCreator interface {
	CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
}

var ErrJobState = errors.New("import job is not in a runnable state")

// Job is one batch import. It moves Idle → Parsing → Running → Completed,
// or to Cancelled when its context ends mid-run. A Job runs once.
type Job struct {
	id      string
	source  string
	creator ProductCreator

	successDelay time.Duration
	onProgress   func(domain.ImportJobStatus)
	onSuccess    func(domain.ImportJobStatus)
	now          func() time.Time

	mu          sync.RWMutex
	state       domain.ImportState
	rows        []domain.ImportRow
	completed   int
	failed      int
	log         []domain.LogEntry
	startedAt   *time.Time
	completedAt *time.Time
}

type JobOption func(*Job)

// OnProgress is called after every row with a copy of the job status.
func OnProgress(fn func(domain.ImportJobStatus)) JobOption {
	return func(j *Job) { j.onProgress = fn }
}

// OnSuccess is called once, delay after the job completes, when no row
// failed. It is not called if the run's context ends during the delay.
func OnSuccess(delay time.Duration, fn func(domain.ImportJobStatus)) JobOption {
	return func(j *Job) {
		j.successDelay = delay
		j.onSuccess = fn
	}
}

func withClock(now func() time.Time) JobOption {
	return func(j *Job) { j.now = now }
}

func NewJob(id, source string, creator ProductCreator, opts ...JobOption) *Job {
	j := &Job{
		id:      id,
		source:  source,
		creator: creator,
		now:     time.Now,
		state:   domain.ImportIdle,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Job) ID() string { return j.id }

// Parse loads rows from text. On error the job returns to Idle.
func (j *Job) Parse(text string, mode ParseMode) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != domain.ImportIdle && j.state != domain.ImportParsing {
		return ErrJobState
	}

	j.state = domain.ImportParsing
	table, err := Parse(text, mode)
	if err != nil {
		j.state = domain.ImportIdle
		return err
	}
	j.rows = table.Rows
	return nil
}

// Rows returns the parsed rows.
func (j *Job) Rows() []domain.ImportRow {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]domain.ImportRow(nil), j.rows...)
}

// Run submits rows one at a time in file order. A row that fails
// validation or is rejected remotely is logged and the batch continues.
// If ctx ends, the job stops before the next row and is Cancelled.
func (j *Job) Run(ctx context.Context) (domain.ImportJobStatus, error) {
	j.mu.Lock()
	if j.state != domain.ImportParsing {
		j.mu.Unlock()
		return j.Status(), ErrJobState
	}
	if len(j.rows) == 0 {
		j.mu.Unlock()
		return j.Status(), domain.NewValidationError("no data rows to import")
	}
	started := j.now()
	j.startedAt = &started
	j.state = domain.ImportRunning
	rows := j.rows
	j.mu.Unlock()

	logger := log.With().Str("job_id", j.id).Int("rows", len(rows)).Logger()
	logger.Info().Str("source", j.source).Msg("import started")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return j.cancel(err)
		}

		entry, cancelled := j.submit(ctx, row)
		if cancelled {
			return j.cancel(ctx.Err())
		}

		status := j.record(entry)
		if !entry.Success {
			logger.Warn().Int("row", row.Number).Str("reason", entry.Message).Msg("import row failed")
		}
		if j.onProgress != nil {
			j.onProgress(status)
		}
	}

	status := j.finish()
	logger.Info().Int("failed", status.Failed).Msg("import completed")

	if status.Succeeded() && j.onSuccess != nil {
		j.fireSuccess(ctx, status)
	}
	return status, nil
}

// submit processes one row. It reports cancelled when the remote call was
// cut short by ctx; that row is not logged.
func (j *Job) submit(ctx context.Context, row domain.ImportRow) (domain.LogEntry, bool) {
	label := rowLabel(row)
	if !row.Valid {
		return domain.LogEntry{
			Row:     row.Number,
			Message: fmt.Sprintf("%s: %s", label, row.Error),
			At:      j.now(),
		}, false
	}

	created, err := j.creator.CreateProduct(ctx, toProduct(row))
	if err != nil {
		if ctx.Err() != nil {
			return domain.LogEntry{}, true
		}
		return domain.LogEntry{
			Row:     row.Number,
			Message: fmt.Sprintf("%s: %s", label, domain.UserMessage(err)),
			At:      j.now(),
		}, false
	}

	entry := domain.LogEntry{
		Row:     row.Number,
		Success: true,
		Message: fmt.Sprintf("Created %s", row.Field(ColumnName)),
		At:      j.now(),
	}
	if created != nil {
		entry.ProductID = created.ID
	}
	return entry, false
}

// rowLabel names a row by its product name, or by its 1-based number.
func rowLabel(row domain.ImportRow) string {
	if name := row.Field(ColumnName); name != "" {
		return name
	}
	return fmt.Sprintf("Row %d", row.Number)
}

func (j *Job) record(entry domain.LogEntry) domain.ImportJobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.log = append(j.log, entry)
	j.completed++
	if !entry.Success {
		j.failed++
	}
	return j.statusLocked()
}

func (j *Job) finish() domain.ImportJobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	done := j.now()
	j.completedAt = &done
	j.state = domain.ImportCompleted
	return j.statusLocked()
}

func (j *Job) cancel(cause error) (domain.ImportJobStatus, error) {
	j.mu.Lock()
	done := j.now()
	j.completedAt = &done
	j.state = domain.ImportCancelled
	status := j.statusLocked()
	j.mu.Unlock()

	log.Info().Str("job_id", j.id).Int("completed", status.Completed).Msg("import cancelled")
	return status, cause
}

func (j *Job) fireSuccess(ctx context.Context, status domain.ImportJobStatus) {
	if j.successDelay > 0 {
		t := time.NewTimer(j.successDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
	j.onSuccess(status)
}

// Status returns a copy of the job's current state.
func (j *Job) Status() domain.ImportJobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.statusLocked()
}

func (j *Job) statusLocked() domain.ImportJobStatus {
	return domain.ImportJobStatus{
		ID:          j.id,
		Source:      j.source,
		State:       j.state,
		TotalRows:   len(j.rows),
		Completed:   j.completed,
		Failed:      j.failed,
		Progress:    Progress(j.completed, len(j.rows)),
		Log:         append([]domain.LogEntry(nil), j.log...),
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
	}
}

// Progress is round(completed / total * 100); 0 for an empty job.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
