package importer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/cache"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Request describes one import to start.
type Request struct {
	Source string
	Text   string
	// Mode overrides the registry's parse mode when set.
	Mode       ParseMode
	OnProgress func(domain.ImportJobStatus)
	// OnSuccess fires once after the success delay when no row failed.
	OnSuccess func(domain.ImportJobStatus)
}

// Registry tracks import jobs by id. Status is mirrored to a job store for
// other processes and finished runs are written to the journal.
type Registry struct {
	creator      ProductCreator
	store        cache.ImportJobStore
	journal      repository.ImportJournal
	mode         ParseMode
	successDelay time.Duration
	newID        func() string

	mu       sync.RWMutex
	jobs     map[string]*Job
	finished map[string]domain.ImportJobStatus
	order    []string // finished ids, oldest first
	keep     int
	wg       sync.WaitGroup
}

// defaultKeepFinished bounds the finished statuses held in memory. Older
// ones are served by the job store or journal.
const defaultKeepFinished = 64

type RegistryOption func(*Registry)

func WithJobStore(store cache.ImportJobStore) RegistryOption {
	return func(r *Registry) { r.store = store }
}

func WithJournal(journal repository.ImportJournal) RegistryOption {
	return func(r *Registry) { r.journal = journal }
}

func WithParseMode(mode ParseMode) RegistryOption {
	return func(r *Registry) { r.mode = mode }
}

func WithSuccessDelay(d time.Duration) RegistryOption {
	return func(r *Registry) { r.successDelay = d }
}

func NewRegistry(creator ProductCreator, opts ...RegistryOption) *Registry {
	r := &Registry{
		creator:  creator,
		store:    cache.NewNoopImportJobStore(),
		journal:  repository.NewNoopImportJournal(),
		mode:     ParseModeNaive,
		newID:    uuid.NewString,
		jobs:     make(map[string]*Job),
		finished: make(map[string]domain.ImportJobStatus),
		keep:     defaultKeepFinished,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) prepare(ctx context.Context, req Request) (*Job, error) {
	mode := req.Mode
	if mode == "" {
		mode = r.mode
	}

	opts := []JobOption{OnProgress(func(s domain.ImportJobStatus) {
		r.publish(ctx, s)
		if req.OnProgress != nil {
			req.OnProgress(s)
		}
	})}
	if req.OnSuccess != nil {
		opts = append(opts, OnSuccess(r.successDelay, req.OnSuccess))
	}

	job := NewJob(r.newID(), req.Source, r.creator, opts...)
	if err := job.Parse(req.Text, mode); err != nil {
		return nil, err
	}
	if len(job.Rows()) == 0 {
		return nil, domain.NewValidationError("no data rows to import")
	}

	r.mu.Lock()
	r.jobs[job.ID()] = job
	r.mu.Unlock()

	r.publish(ctx, job.Status())
	return job, nil
}

// Start parses the upload and runs it in the background until ctx ends.
// Parse errors are returned directly and no job is created.
func (r *Registry) Start(ctx context.Context, req Request) (domain.ImportJobStatus, error) {
	job, err := r.prepare(ctx, req)
	if err != nil {
		return domain.ImportJobStatus{}, err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, job)
	}()

	return job.Status(), nil
}

// Run parses and runs the upload on the calling goroutine.
func (r *Registry) Run(ctx context.Context, req Request) (domain.ImportJobStatus, error) {
	job, err := r.prepare(ctx, req)
	if err != nil {
		return domain.ImportJobStatus{}, err
	}
	return r.run(ctx, job)
}

func (r *Registry) run(ctx context.Context, job *Job) (domain.ImportJobStatus, error) {
	status, err := job.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Str("job_id", job.ID()).Msg("import failed")
	}

	detached := context.WithoutCancel(ctx)
	r.publish(detached, status)
	if status.State.Terminal() {
		if jerr := r.journal.SaveRun(detached, status); jerr != nil {
			log.Warn().Err(jerr).Str("job_id", job.ID()).Msg("import journal write failed")
		}
		r.retire(job.ID(), status)
	}
	return status, err
}

// retire drops a finished job and keeps only its final status, evicting
// the oldest statuses past the keep limit.
func (r *Registry) retire(id string, status domain.ImportJobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	if r.keep <= 0 {
		return
	}
	r.finished[id] = status
	r.order = append(r.order, id)
	for len(r.order) > r.keep {
		delete(r.finished, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *Registry) publish(ctx context.Context, status domain.ImportJobStatus) {
	if err := r.store.Put(context.WithoutCancel(ctx), status); err != nil {
		log.Warn().Err(err).Str("job_id", status.ID).Msg("import status publish failed")
	}
}

// Status looks a job up in this process, then the job store, then the
// journal. Finished jobs are dropped from memory once recorded.
func (r *Registry) Status(ctx context.Context, id string) (domain.ImportJobStatus, error) {
	r.mu.RLock()
	job, ok := r.jobs[id]
	done, retired := r.finished[id]
	r.mu.RUnlock()
	if ok {
		return job.Status(), nil
	}
	if retired {
		return done, nil
	}

	if s, ok, err := r.store.Get(ctx, id); err != nil {
		log.Warn().Err(err).Str("job_id", id).Msg("import status lookup failed")
	} else if ok {
		return *s, nil
	}

	s, err := r.journal.GetRun(ctx, id)
	if err != nil {
		return domain.ImportJobStatus{}, err
	}
	return *s, nil
}

// Recent lists finished runs from the journal, newest first.
func (r *Registry) Recent(ctx context.Context, limit int) ([]domain.ImportJobStatus, error) {
	return r.journal.ListRuns(ctx, limit)
}

// Wait blocks until every background job has returned.
func (r *Registry) Wait() {
	r.wg.Wait()
}
