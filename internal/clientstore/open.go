package clientstore

import (
	"errors"
	"fmt"

	"github.com/wonny/clientwatch/pkg/config"
	"github.com/wonny/clientwatch/pkg/database"
)

// ErrNoDatabase is returned when CLIENT_SOURCE=postgres but no pool was opened
var ErrNoDatabase = errors.New("client source postgres requires DATABASE_URL")

// Open selects the store named by CLIENT_SOURCE. db may be nil for the
// file source; the caller owns its lifetime.
func Open(cfg *config.Config, db *database.DB) (Store, error) {
	switch cfg.ClientSource {
	case config.SourcePostgres:
		if db == nil {
			return nil, ErrNoDatabase
		}
		return NewPostgresStore(db.Pool), nil
	case config.SourceFile, "":
		return NewFileStore(cfg.ClientsFile), nil
	default:
		return nil, fmt.Errorf("unknown client source %q", cfg.ClientSource)
	}
}
