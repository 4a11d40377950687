package clientstore

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/wonny/clientwatch/internal/contracts"
)

// FileStore reads clients from a JSON file on every call so edits are
// picked up without a restart. The file holds either a bare array of
// records or an object with a "clients" array.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// List loads every client record from the file
func (s *FileStore) List(ctx context.Context) ([]contracts.ClientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients file: %w", err)
	}

	clients, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return clients, nil
}

// Get loads a single client by id
func (s *FileStore) Get(ctx context.Context, id string) (contracts.ClientRecord, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return contracts.ClientRecord{}, err
	}
	return find(clients, id)
}

type envelope struct {
	Clients []contracts.ClientRecord `json:"clients"`
}

// Decode parses either a JSON array of clients or a {"clients": [...]} object
func Decode(data []byte) ([]contracts.ClientRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []contracts.ClientRecord{}, nil
	}

	var clients []contracts.ClientRecord
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &clients); err != nil {
			return nil, fmt.Errorf("failed to decode clients: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to decode clients: %w", err)
		}
		clients = env.Clients
	}

	if clients == nil {
		clients = []contracts.ClientRecord{}
	}
	return clients, nil
}
