package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/b2b-portal/internal/drive"
	"github.com/andresuchdata/b2b-portal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memObjects) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *memObjects) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	m.objects[bucket+"/"+key] = data
	return nil
}

type fakeDrive struct{}

func (fakeDrive) Resolve(ctx context.Context, ref string) (string, error) {
	return "file-" + filepath.Base(ref), nil
}

func (fakeDrive) Download(ctx context.Context, id string) (*drive.File, []byte, error) {
	return &drive.File{ID: id, Name: "products.csv", MimeType: "text/csv"}, []byte("name,price\nWidget,1\n"), nil
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffname,price\nWidget,1\n"), 0o600))

	p, err := (&Loader{}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "products.csv", p.Name)
	assert.Equal(t, "name,price\nWidget,1\n", p.Text)
	assert.Equal(t, ParseMode(""), p.Mode)
}

func TestLoader_S3AndDrive(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{
		"uploads/2024/products.csv": []byte("name,price\nGadget,2\n"),
	}}
	l := &Loader{Objects: objects, Drive: fakeDrive{}}

	p, err := l.Load(context.Background(), "s3://uploads/2024/products.csv")
	require.NoError(t, err)
	assert.Contains(t, p.Text, "Gadget")

	_, err = l.Load(context.Background(), "s3://uploads")
	assert.Error(t, err)

	p, err = l.Load(context.Background(), "drive://Imports/products.csv")
	require.NoError(t, err)
	assert.Contains(t, p.Text, "Widget")

	_, err = (&Loader{}).Load(context.Background(), "drive://abc")
	assert.ErrorContains(t, err, "not configured")
}

func TestLoader_ArchiveUpload(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{}}
	p := &Payload{Name: "products.csv", Raw: []byte("name,price\n")}

	(&Loader{Objects: objects}).ArchiveUpload(context.Background(), "job-1", p)
	assert.Empty(t, objects.objects)

	(&Loader{Objects: objects, Archive: true}).ArchiveUpload(context.Background(), "job-1", p)
	require.Len(t, objects.objects, 1)
	for key := range objects.objects {
		assert.Contains(t, key, "job-1-products.csv")
	}
}
