package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	mu      sync.Mutex
	created []domain.NewProduct
	reject  map[string]error
	block   chan struct{}
}

func (f *fakeCreator) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.reject[p.Name]; ok {
		return nil, err
	}
	f.created = append(f.created, p)
	return &domain.Product{ID: fmt.Sprintf("id-%d", len(f.created)), Name: p.Name}, nil
}

func (f *fakeCreator) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.created {
		out = append(out, p.Name)
	}
	return out
}

func parsedJob(t *testing.T, text string, creator ProductCreator, opts ...JobOption) *Job {
	t.Helper()
	j := NewJob("job-1", "test.csv", creator, opts...)
	require.NoError(t, j.Parse(text, ParseModeNaive))
	return j
}

func TestJob_MissingPriceRowIsLoggedAndBatchContinues(t *testing.T) {
	creator := &fakeCreator{}
	var progress []int
	j := parsedJob(t, "name,price,stock\nWidget,10,1\nGadget,,2\nGizmo,3,x\nBolt,1,4\n", creator,
		OnProgress(func(s domain.ImportJobStatus) { progress = append(progress, s.Progress) }))

	status, err := j.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ImportCompleted, status.State)
	assert.Equal(t, 4, status.TotalRows)
	assert.Equal(t, 4, status.Completed)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, []int{25, 50, 75, 100}, progress)

	require.Len(t, status.Log, 4)
	failed := status.Log[1]
	assert.False(t, failed.Success)
	assert.Equal(t, 2, failed.Row)
	assert.Contains(t, failed.Message, "Gadget")
	assert.Contains(t, failed.Message, "price")

	assert.Equal(t, []string{"Widget", "Gizmo", "Bolt"}, creator.names())
	assert.Equal(t, 0, creator.created[1].Stock, "non-numeric stock coerces to 0")
	assert.Equal(t, "Created Widget", status.Log[0].Message)
	assert.Equal(t, "id-1", status.Log[0].ProductID)
	assert.False(t, status.Succeeded())
}

func TestJob_UnnamedInvalidRowFallsBackToRowNumber(t *testing.T) {
	j := parsedJob(t, "name,price\nWidget,10\n,20\nGadget,", &fakeCreator{})

	status, err := j.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, status.Log, 3)
	assert.True(t, status.Log[0].Success)
	assert.Contains(t, status.Log[1].Message, "Row 2")
	assert.Contains(t, status.Log[2].Message, "Gadget")
	assert.Equal(t, 2, status.Failed)
}

func TestJob_RemoteRejectionIsIsolatedToItsRow(t *testing.T) {
	creator := &fakeCreator{reject: map[string]error{
		"Gadget": &domain.RemoteError{Status: 400, Message: "SKU already exists"},
	}}
	j := parsedJob(t, "name,price\nWidget,10\nGadget,2\nGizmo,3\n", creator)

	status, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Gadget: SKU already exists", status.Log[1].Message)
	assert.Equal(t, []string{"Widget", "Gizmo"}, creator.names())
	assert.Equal(t, 100, status.Progress)
}

func TestJob_SuccessActionFiresOnceAfterDelay(t *testing.T) {
	var calls int
	var got domain.ImportJobStatus
	j := parsedJob(t, "name,price\nWidget,10\nGadget,2\nGizmo,3\n", &fakeCreator{},
		OnSuccess(10*time.Millisecond, func(s domain.ImportJobStatus) {
			calls++
			got = s
		}))

	start := time.Now()
	status, err := j.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Equal(t, 100, got.Progress)
	assert.True(t, status.Succeeded())

	_, err = j.Run(context.Background())
	assert.ErrorIs(t, err, ErrJobState)
	assert.Equal(t, 1, calls)
}

func TestJob_SuccessActionSkippedWhenAnyRowFails(t *testing.T) {
	var calls int
	j := parsedJob(t, "name,price\nWidget,10\n,2\n", &fakeCreator{},
		OnSuccess(0, func(domain.ImportJobStatus) { calls++ }))

	status, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ImportCompleted, status.State)
	assert.Equal(t, 0, calls)
}

func TestJob_CancelStopsBeforeNextRow(t *testing.T) {
	creator := &fakeCreator{block: make(chan struct{})}
	j := parsedJob(t, "name,price\nWidget,10\nGadget,2\n", creator)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var status domain.ImportJobStatus
	var err error
	go func() {
		status, err = j.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.ImportCancelled, status.State)
	assert.Equal(t, 0, status.Completed)
	assert.Empty(t, status.Log)
	assert.Empty(t, creator.names())
	assert.True(t, status.State.Terminal())
}

func TestJob_StateMachine(t *testing.T) {
	j := NewJob("job-1", "", &fakeCreator{})
	assert.Equal(t, domain.ImportIdle, j.Status().State)

	_, err := j.Run(context.Background())
	assert.ErrorIs(t, err, ErrJobState)

	assert.Error(t, j.Parse("", ParseModeNaive))
	assert.Equal(t, domain.ImportIdle, j.Status().State)

	require.NoError(t, j.Parse("name,price\n", ParseModeNaive))
	assert.Equal(t, domain.ImportParsing, j.Status().State)

	_, err = j.Run(context.Background())
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 67, Progress(2, 3))
	assert.Equal(t, 100, Progress(3, 3))
	assert.Equal(t, 50, Progress(1, 2))
}
