package clientstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/clientwatch/internal/contracts"
)

// ErrNotFound is returned by Get when no client has the requested id
var ErrNotFound = errors.New("client not found")

// Store is the client data source an evaluation runs over
// ⭐ SSOT: 고객 데이터 로딩은 이 인터페이스를 통해서만
type Store interface {
	contracts.ClientSource
	Get(ctx context.Context, id string) (contracts.ClientRecord, error)
}

// Writer is implemented by stores that accept imports
type Writer interface {
	Upsert(ctx context.Context, clients []contracts.ClientRecord) (int, error)
}

// find returns the first record with the given id
func find(clients []contracts.ClientRecord, id string) (contracts.ClientRecord, error) {
	for _, c := range clients {
		if c.ID == id {
			return c, nil
		}
	}
	return contracts.ClientRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
