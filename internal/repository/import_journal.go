package repository

import (
	"context"

	"github.com/andresuchdata/b2b-portal/internal/domain"
)

// ImportJournal keeps a durable record of finished batch imports.
type ImportJournal interface {
	SaveRun(ctx context.Context, status domain.ImportJobStatus) error
	GetRun(ctx context.Context, id string) (*domain.ImportJobStatus, error)
	ListRuns(ctx context.Context, limit int) ([]domain.ImportJobStatus, error)
}

type noopImportJournal struct{}

// NewNoopImportJournal returns a journal that records nothing.
func NewNoopImportJournal() ImportJournal {
	return noopImportJournal{}
}

func (noopImportJournal) SaveRun(ctx context.Context, status domain.ImportJobStatus) error {
	return nil
}

func (noopImportJournal) GetRun(ctx context.Context, id string) (*domain.ImportJobStatus, error) {
	return nil, domain.ErrNotFound
}

func (noopImportJournal) ListRuns(ctx context.Context, limit int) ([]domain.ImportJobStatus, error) {
	return nil, nil
}
