package dismissal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/wonny/clientwatch/pkg/redis"
)

// Set names
const (
	SetDismissedAlerts = "dismissed_alerts"
	SetInactiveClients = "inactive_clients"
)

// Backend persists named sets of ids, each member with an optional label
type Backend interface {
	Add(ctx context.Context, set, id, label string) error
	Remove(ctx context.Context, set, id string) error
	Members(ctx context.Context, set string) (map[string]string, error)
	Clear(ctx context.Context, set string) error
}

// RedisBackend keeps each set as a Redis SET plus a HASH of labels
// ⭐ SSOT: dismissal 키 구조는 여기서만
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a Redis-backed set store
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) setKey(set string) string {
	return fmt.Sprintf("%s:%s", b.prefix, set)
}

func (b *RedisBackend) labelKey(set string) string {
	return fmt.Sprintf("%s:%s:labels", b.prefix, set)
}

// Add inserts id into the set and records its label when non-empty
func (b *RedisBackend) Add(ctx context.Context, set, id, label string) error {
	pipe := b.client.Redis().TxPipeline()
	pipe.SAdd(ctx, b.setKey(set), id)
	if label != "" {
		pipe.HSet(ctx, b.labelKey(set), id, label)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", id, set, err)
	}
	return nil
}

// Remove deletes id and its label
func (b *RedisBackend) Remove(ctx context.Context, set, id string) error {
	pipe := b.client.Redis().TxPipeline()
	pipe.SRem(ctx, b.setKey(set), id)
	pipe.HDel(ctx, b.labelKey(set), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove %s from %s: %w", id, set, err)
	}
	return nil
}

// Members returns id -> label for every member
func (b *RedisBackend) Members(ctx context.Context, set string) (map[string]string, error) {
	ids, err := b.client.Redis().SMembers(ctx, b.setKey(set)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", set, err)
	}
	labels, err := b.client.Redis().HGetAll(ctx, b.labelKey(set)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s labels: %w", set, err)
	}

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = labels[id]
	}
	return out, nil
}

// Clear removes the whole set
func (b *RedisBackend) Clear(ctx context.Context, set string) error {
	return b.client.Redis().Del(ctx, b.setKey(set), b.labelKey(set)).Err()
}

// FileBackend keeps all sets in one JSON document. An empty path keeps
// state in memory only.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	sets   map[string]map[string]string
	loaded bool
	now    func() time.Time
}

type fileDoc struct {
	Sets        map[string]map[string]string `json:"sets"`
	LastUpdated time.Time                    `json:"last_updated"`
}

// NewFileBackend creates a JSON-file set store
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, now: time.Now}
}

// NewMemoryBackend creates a non-persistent set store
func NewMemoryBackend() *FileBackend {
	return NewFileBackend("")
}

// load reads the file once; a missing file starts empty
func (b *FileBackend) load() error {
	if b.loaded {
		return nil
	}
	b.sets = map[string]map[string]string{}
	b.loaded = true

	if b.path == "" {
		return nil
	}
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dismissals file: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		b.loaded = false
		return fmt.Errorf("failed to decode dismissals file: %w", err)
	}
	for name, members := range doc.Sets {
		if members != nil {
			b.sets[name] = members
		}
	}
	return nil
}

// save writes the document atomically through a temp file
func (b *FileBackend) save() error {
	if b.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(fileDoc{Sets: b.sets, LastUpdated: b.now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dismissals: %w", err)
	}

	if dir := filepath.Dir(b.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dismissals dir: %w", err)
		}
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write dismissals: %w", err)
	}
	return os.Rename(tmp, b.path)
}

// Add inserts id into the set
func (b *FileBackend) Add(_ context.Context, set, id, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	if b.sets[set] == nil {
		b.sets[set] = map[string]string{}
	}
	b.sets[set][id] = label
	return b.save()
}

// Remove deletes id from the set
func (b *FileBackend) Remove(_ context.Context, set, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	delete(b.sets[set], id)
	return b.save()
}

// Members returns a copy of the set
func (b *FileBackend) Members(_ context.Context, set string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(b.sets[set]))
	for id, label := range b.sets[set] {
		out[id] = label
	}
	return out, nil
}

// Clear empties the set
func (b *FileBackend) Clear(_ context.Context, set string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	delete(b.sets, set)
	return b.save()
}
