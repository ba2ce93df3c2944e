package domain

import "time"

// ImportRow is one decoded data line of a bulk product upload, keyed by the
// header row's column names.
type ImportRow struct {
	Number int               `json:"row"` // 1-based among non-blank data lines
	Fields map[string]string `json:"fields"`
	Valid  bool              `json:"valid"`
	Error  string            `json:"error,omitempty"`
}

// Field returns the trimmed value of a column, "" when absent.
func (r ImportRow) Field(name string) string {
	return r.Fields[name]
}

// LogEntry is the immutable outcome of one submitted import row.
type LogEntry struct {
	Row       int       `json:"row"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ProductID string    `json:"productId,omitempty"`
	At        time.Time `json:"at"`
}

type ImportState string

const (
	ImportIdle      ImportState = "idle"
	ImportParsing   ImportState = "parsing"
	ImportRunning   ImportState = "running"
	ImportCompleted ImportState = "completed"
	ImportCancelled ImportState = "cancelled"
)

// Terminal reports whether no further rows will be processed.
func (s ImportState) Terminal() bool {
	return s == ImportCompleted || s == ImportCancelled
}

// ImportJobStatus is a point-in-time copy of a batch import job.
type ImportJobStatus struct {
	ID          string      `json:"id"`
	Source      string      `json:"source,omitempty"`
	State       ImportState `json:"state"`
	TotalRows   int         `json:"totalRows"`
	Completed   int         `json:"completedRows"`
	Failed      int         `json:"failedRows"`
	Progress    int         `json:"progress"`
	Log         []LogEntry  `json:"log"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// Succeeded reports a completed job with no failed rows.
func (s ImportJobStatus) Succeeded() bool {
	return s.State == ImportCompleted && s.Failed == 0
}
