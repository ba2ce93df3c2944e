package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/redis/go-redis/v9"
)

const catalogSnapshotKeyPrefix = "catalog:snapshot"

// CatalogSnapshot is the persisted form of the last successful catalog fetch.
type CatalogSnapshot struct {
	Products  []domain.Product         `json:"products"`
	Inventory []domain.InventoryRecord `json:"inventory,omitempty"`
	FetchedAt time.Time                `json:"fetchedAt"`
}

// SnapshotStore mirrors the in-memory catalog so a cold start has something
// to show before the first refresh lands. It is never consulted as fresh data.
type SnapshotStore interface {
	Load(ctx context.Context, scope string) (*CatalogSnapshot, bool, error)
	Save(ctx context.Context, scope string, snap *CatalogSnapshot) error
	// Invalidate drops one scope's snapshot, e.g. when its user signs out.
	Invalidate(ctx context.Context, scope string) error
	InvalidateAll(ctx context.Context) error
}

type redisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotStore struct{}

// NewSnapshotStore returns a redis-backed store; a nil client yields a no-op store.
func NewSnapshotStore(client *redis.Client, ttlSeconds int) SnapshotStore {
	if client == nil {
		return &noopSnapshotStore{}
	}
	return &redisSnapshotStore{client: client, ttl: seconds(ttlSeconds)}
}

func NewNoopSnapshotStore() SnapshotStore {
	return &noopSnapshotStore{}
}

func (s *redisSnapshotStore) Load(ctx context.Context, scope string) (*CatalogSnapshot, bool, error) {
	payload, err := s.client.Get(ctx, buildSnapshotKey(scope)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snap CatalogSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return &snap, true, nil
}

func (s *redisSnapshotStore) Save(ctx context.Context, scope string, snap *CatalogSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	if err := s.client.Set(ctx, buildSnapshotKey(scope), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisSnapshotStore) Invalidate(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, buildSnapshotKey(scope)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *redisSnapshotStore) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, s.client, catalogSnapshotKeyPrefix, scanBatchSize)
}

func (n *noopSnapshotStore) Load(ctx context.Context, scope string) (*CatalogSnapshot, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotStore) Save(ctx context.Context, scope string, snap *CatalogSnapshot) error {
	return nil
}

func (n *noopSnapshotStore) Invalidate(ctx context.Context, scope string) error {
	return nil
}

func (n *noopSnapshotStore) InvalidateAll(ctx context.Context) error {
	return nil
}

// buildSnapshotKey scopes snapshots per account so two users sharing a redis
// never see each other's inventory.
func buildSnapshotKey(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return catalogSnapshotKeyPrefix + ":default"
	}
	sum := sha1.Sum([]byte(strings.ToLower(scope)))
	return fmt.Sprintf("%s:%s", catalogSnapshotKeyPrefix, hex.EncodeToString(sum[:]))
}
