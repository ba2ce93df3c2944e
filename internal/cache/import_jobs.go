package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/redis/go-redis/v9"
)

const importJobKeyPrefix = "import:job:"

// ImportJobStore publishes import job status so other processes can poll it.
type ImportJobStore interface {
	Put(ctx context.Context, status domain.ImportJobStatus) error
	Get(ctx context.Context, id string) (*domain.ImportJobStatus, bool, error)
}

type redisImportJobStore struct {
	client *redis.Client
	ttl    time.Duration
}

type noopImportJobStore struct{}

func NewImportJobStore(client *redis.Client, ttlSeconds int) ImportJobStore {
	if client == nil {
		return &noopImportJobStore{}
	}
	return &redisImportJobStore{client: client, ttl: seconds(ttlSeconds)}
}

func NewNoopImportJobStore() ImportJobStore {
	return &noopImportJobStore{}
}

func (s *redisImportJobStore) Put(ctx context.Context, status domain.ImportJobStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode import job: %w", err)
	}
	if err := s.client.Set(ctx, importJobKeyPrefix+status.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisImportJobStore) Get(ctx context.Context, id string) (*domain.ImportJobStatus, bool, error) {
	payload, err := s.client.Get(ctx, importJobKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var status domain.ImportJobStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, false, fmt.Errorf("decode import job: %w", err)
	}
	return &status, true, nil
}

func (n *noopImportJobStore) Put(ctx context.Context, status domain.ImportJobStatus) error {
	return nil
}

func (n *noopImportJobStore) Get(ctx context.Context, id string) (*domain.ImportJobStatus, bool, error) {
	return nil, false, nil
}
