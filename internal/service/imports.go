package service

import (
	"context"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/importer"
	"github.com/rs/zerolog/log"
)

// StartImport parses an uploaded file and runs it in the background under
// the imports view scope. Leaving the view, or a new upload, cancels it.
// When every row succeeds the supplier catalog is refreshed.
func (w *Workspace) StartImport(ctx context.Context, name, mimeType string, data []byte) (domain.ImportJobStatus, error) {
	payload, err := importer.Decode(name, mimeType, data)
	if err != nil {
		return domain.ImportJobStatus{}, domain.NewValidationError(err.Error())
	}

	sc := w.views.Enter(ViewImports)
	status, err := w.deps.Imports.Start(sc.Context(), importer.Request{
		Source: name,
		Text:   payload.Text,
		Mode:   payload.Mode,
		OnSuccess: func(s domain.ImportJobStatus) {
			w.afterImport(sc.Context(), s)
		},
	})
	if err != nil {
		return status, err
	}

	w.deps.Loader.ArchiveUpload(ctx, status.ID, payload)
	return status, nil
}

// ImportFrom loads ref (local path, s3:// or drive://) and runs the import
// on the calling goroutine. mode overrides the configured parse mode unless
// the file format fixes it.
func (w *Workspace) ImportFrom(ctx context.Context, ref string, mode importer.ParseMode, onProgress func(domain.ImportJobStatus)) (domain.ImportJobStatus, error) {
	payload, err := w.deps.Loader.Load(ctx, ref)
	if err != nil {
		return domain.ImportJobStatus{}, err
	}
	if payload.Mode == "" {
		payload.Mode = mode
	}

	status, err := w.deps.Imports.Run(ctx, importer.Request{
		Source:     ref,
		Text:       payload.Text,
		Mode:       payload.Mode,
		OnProgress: onProgress,
	})
	if err != nil {
		return status, err
	}
	w.deps.Loader.ArchiveUpload(ctx, status.ID, payload)
	if status.Succeeded() {
		w.afterImport(ctx, status)
	}
	return status, nil
}

func (w *Workspace) afterImport(ctx context.Context, s domain.ImportJobStatus) {
	log.Info().Str("job_id", s.ID).Int("rows", s.Completed).Msg("import finished, refreshing catalog")
	w.refreshProducts(ctx)
}

// ImportStatus reports a job by id from memory, the job store or the journal.
func (w *Workspace) ImportStatus(ctx context.Context, id string) (domain.ImportJobStatus, error) {
	return w.deps.Imports.Status(ctx, id)
}

func (w *Workspace) RecentImports(ctx context.Context, limit int) ([]domain.ImportJobStatus, error) {
	return w.deps.Imports.Recent(ctx, limit)
}

// CancelImport abandons the running upload, if any.
func (w *Workspace) CancelImport() {
	w.views.Leave(ViewImports)
}
