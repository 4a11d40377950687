package contracts

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a client record missing a structurally required field.
// It is isolated to the affected rule or factor; it never aborts a batch.
var ErrMalformedRecord = errors.New("malformed client record")

// Missing wraps ErrMalformedRecord with the name of the absent field
func Missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRecord, field)
}

// Diagnostic records an isolated per-client failure for the caller to log
type Diagnostic struct {
	ClientID string `json:"client_id"`
	Source   string `json:"source"` // rule or factor name
	Reason   string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s/%s: %s", d.ClientID, d.Source, d.Reason)
}
