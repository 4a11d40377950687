package clientstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientwatch/internal/calendar"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/pkg/config"
	"github.com/wonny/clientwatch/pkg/database"
)

const sampleArray = `[
  {
    "id": "c1",
    "name": "Margaret Hughes",
    "date_of_birth": "1959-03-14",
    "policies": [{"id": "p1", "type": "pension", "renewal_date": "2026-11-01"}],
    "interactions": [{"date": "2026-09-01", "channel": "phone"}],
    "compliance": {"last_annual_review": "2025-11-20", "suitability_confirmed": true}
  },
  {"id": "c2", "name": "Tom Reid", "date_of_birth": "1990-07-02"}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clients.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecode_Array(t *testing.T) {
	clients, err := Decode([]byte(sampleArray))
	require.NoError(t, err)
	require.Len(t, clients, 2)

	c := clients[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, calendar.New(1959, 3, 14), c.DateOfBirth)
	require.Len(t, c.Policies, 1)
	assert.Equal(t, calendar.New(2026, 11, 1), c.Policies[0].RenewalDate)
	assert.True(t, c.Policies[0].MaturityDate.IsZero())
	assert.True(t, c.Compliance.SuitabilityConfirmed)
	assert.Nil(t, clients[1].Policies)
}

func TestDecode_Envelope(t *testing.T) {
	clients, err := Decode([]byte(`{"clients": ` + sampleArray + `}`))
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestDecode_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n", "[]", `{"clients": null}`} {
		clients, err := Decode([]byte(in))
		require.NoError(t, err, in)
		assert.NotNil(t, clients, in)
		assert.Empty(t, clients, in)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []string{
		`{"clients": [`,
		`[{"id": "c1", "date_of_birth": "14/03/1959"}]`,
	}
	for _, in := range tests {
		_, err := Decode([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestFileStore(t *testing.T) {
	store := NewFileStore(writeFile(t, sampleArray))
	ctx := context.Background()

	clients, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	c, err := store.Get(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Tom Reid", c.Name)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	_, err := store.List(context.Background())
	assert.Error(t, err)
}

func TestFileStore_CancelledContext(t *testing.T) {
	store := NewFileStore(writeFile(t, sampleArray))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_File(t *testing.T) {
	store, err := Open(&config.Config{
		ClientSource: config.SourceFile,
		ClientsFile:  "clients.json",
	}, nil)
	require.NoError(t, err)

	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, "clients.json", fs.Path())
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(&config.Config{ClientSource: "s3"}, nil)
	assert.Error(t, err)
}

func TestOpen_PostgresWithoutPool(t *testing.T) {
	_, err := Open(&config.Config{ClientSource: config.SourcePostgres}, nil)
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	clients, err := Decode([]byte(sampleArray))
	require.NoError(t, err)

	store := NewPostgresStore(db.Pool)
	n, err := store.Upsert(ctx, clients)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Margaret Hughes", got.Name)
	assert.Equal(t, calendar.New(1959, 3, 14), got.DateOfBirth)

	_, err = store.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Upsert(ctx, []contracts.ClientRecord{{Name: "no id"}})
	assert.ErrorIs(t, err, contracts.ErrMalformedRecord)
}
