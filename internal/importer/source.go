package importer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/drive"
	"github.com/andresuchdata/b2b-portal/internal/storage"
	"github.com/rs/zerolog/log"
)

// DriveFetcher is the part of drive.Service imports use.
type DriveFetcher interface {
	Resolve(ctx context.Context, ref string) (string, error)
	Download(ctx context.Context, fileID string) (*drive.File, []byte, error)
}

// Payload is an upload ready to parse.
type Payload struct {
	Name string
	Text string
	// Mode is set when the content dictates it; XLSX conversions are
	// always quoted.
	Mode ParseMode
	Raw  []byte
}

// Loader reads import files from a local path, s3://bucket/key or
// drive://fileID (or drive://folder/path/file.csv).
type Loader struct {
	Objects storage.ObjectStorage
	Drive   DriveFetcher
	// Archive copies every upload to Objects.
	Archive bool
}

func (l *Loader) Load(ctx context.Context, ref string) (*Payload, error) {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		if l.Objects == nil {
			return nil, fmt.Errorf("object storage is not configured")
		}
		bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid s3 reference %q, want s3://bucket/key", ref)
		}
		data, err := l.Objects.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return Decode(path.Base(key), "", data)

	case strings.HasPrefix(ref, "drive://"):
		if l.Drive == nil {
			return nil, fmt.Errorf("google drive is not configured")
		}
		id, err := l.Drive.Resolve(ctx, strings.TrimPrefix(ref, "drive://"))
		if err != nil {
			return nil, err
		}
		file, data, err := l.Drive.Download(ctx, id)
		if err != nil {
			return nil, err
		}
		return Decode(file.Name, file.MimeType, data)

	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ref, err)
		}
		return Decode(filepath.Base(ref), "", data)
	}
}

// Decode turns raw bytes into parseable text, converting workbooks to CSV.
func Decode(name, mimeType string, data []byte) (*Payload, error) {
	if drive.IsXLSX(name, mimeType) {
		text, err := drive.XLSXToCSV(data)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", name, err)
		}
		return &Payload{Name: name, Text: text, Mode: ParseModeQuoted, Raw: data}, nil
	}
	return &Payload{Name: name, Text: strings.TrimPrefix(string(data), "\ufeff"), Raw: data}, nil
}

// ArchiveUpload copies an upload to object storage under imports/<date>/<job>-<name>.
// It is a no-op unless archiving is enabled.
func (l *Loader) ArchiveUpload(ctx context.Context, jobID string, p *Payload) {
	if !l.Archive || l.Objects == nil || p == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%s-%s", time.Now().UTC().Format("2006-01-02"), jobID, path.Base(p.Name))
	contentType := "text/csv"
	if drive.IsXLSX(p.Name, "") {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err := l.Objects.PutObject(ctx, "", key, p.Raw, contentType); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Str("key", key).Msg("import archive failed")
	}
}
