package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/config"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverName(t *testing.T) {
	for in, want := range map[string]string{"": "postgres", "postgres": "postgres", "pq": "postgres", "pgx": "pgx"} {
		got, err := driverName(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverName("mysql")
	assert.Error(t, err)
}

func TestConnString(t *testing.T) {
	cs := connString(&config.DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "b2b", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=b2b sslmode=disable", cs)
}

func TestRunRowRoundTrip(t *testing.T) {
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	status := domain.ImportJobStatus{
		ID: "j1", Source: "s3://b/k.csv", State: domain.ImportCompleted,
		TotalRows: 2, Completed: 2, Failed: 1, Progress: 100, StartedAt: &started,
	}

	row := toRunRow(status)
	assert.True(t, row.StartedAt.Valid)
	assert.False(t, row.CompletedAt.Valid)

	back := fromRunRow(row, []importLogRow{{RowNumber: 1, Success: true, Message: "Created Widget", LoggedAt: started}})
	assert.Equal(t, status.ID, back.ID)
	assert.Equal(t, status.State, back.State)
	assert.Equal(t, started, *back.StartedAt)
	assert.Nil(t, back.CompletedAt)
	require.Len(t, back.Log, 1)
	assert.Equal(t, "Created Widget", back.Log[0].Message)
}

// TestImportJournal_Postgres runs against a real database when one is
// configured through B2B_TEST_DB_HOST.
func TestImportJournal_Postgres(t *testing.T) {
	host := os.Getenv("B2B_TEST_DB_HOST")
	if host == "" {
		t.Skip("B2B_TEST_DB_HOST not set")
	}
	db, err := NewDB(&config.DatabaseConfig{
		Driver:   os.Getenv("B2B_TEST_DB_DRIVER"),
		Host:     host,
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		DBName:   "b2b_portal_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))

	repo := NewImportJournalRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.NewString()
	status := domain.ImportJobStatus{
		ID: id, State: domain.ImportCompleted, TotalRows: 2, Completed: 2, Failed: 1, Progress: 100,
		Log: []domain.LogEntry{
			{Row: 1, Success: true, Message: "Created Widget", ProductID: "p1", At: now},
			{Row: 2, Message: "Row 2: missing required field: name", At: now},
		},
		StartedAt: &now, CompletedAt: &now,
	}
	require.NoError(t, repo.SaveRun(ctx, status))
	require.NoError(t, repo.SaveRun(ctx, status))

	got, err := repo.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Log, 2)
	assert.Equal(t, "p1", got.Log[0].ProductID)

	_, err = repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	runs, err := repo.ListRuns(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}
