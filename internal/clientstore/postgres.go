package clientstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/clientwatch/internal/contracts"
)

// PostgresStore keeps each client as a JSONB document in the clients table
// ⭐ SSOT: clients 테이블 접근은 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// List returns every client ordered by id
func (s *PostgresStore) List(ctx context.Context) ([]contracts.ClientRecord, error) {
	query := `
		SELECT id, record
		FROM clients
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []contracts.ClientRecord{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		c, err := decodeRecord(id, raw)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}

	return clients, nil
}

// Get returns a single client
func (s *PostgresStore) Get(ctx context.Context, id string) (contracts.ClientRecord, error) {
	query := `SELECT record FROM clients WHERE id = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.ClientRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return contracts.ClientRecord{}, fmt.Errorf("failed to get client: %w", err)
	}

	return decodeRecord(id, raw)
}

// Upsert inserts or replaces client documents in one batch
func (s *PostgresStore) Upsert(ctx context.Context, clients []contracts.ClientRecord) (int, error) {
	query := `
		INSERT INTO clients (id, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, c := range clients {
		if c.ID == "" {
			return 0, fmt.Errorf("%w: missing id", contracts.ErrMalformedRecord)
		}
		raw, err := json.Marshal(c)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal client %s: %w", c.ID, err)
		}
		batch.Queue(query, c.ID, raw)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range clients {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("failed to upsert clients: %w", err)
		}
	}

	return len(clients), nil
}

// decodeRecord parses the JSONB document; the row id wins over the document id
func decodeRecord(id string, raw []byte) (contracts.ClientRecord, error) {
	var c contracts.ClientRecord
	if err := json.Unmarshal(raw, &c); err != nil {
		return contracts.ClientRecord{}, fmt.Errorf("failed to unmarshal client %s: %w", id, err)
	}
	c.ID = id
	return c, nil
}
