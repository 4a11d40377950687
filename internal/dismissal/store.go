package dismissal

import (
	"context"
	"errors"
	"sort"

	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/pkg/config"
	"github.com/wonny/clientwatch/pkg/redis"
)

// ErrEmptyID is returned when an id argument is blank
var ErrEmptyID = errors.New("id must not be empty")

// Store records dismissed alerts and inactive clients.
// The engine never reads it; callers apply it to evaluation results.
type Store struct {
	backend Backend
}

var _ contracts.DismissalStore = (*Store)(nil)

// NewStore wraps a backend
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Open picks Redis when enabled, else the dismissals file
func Open(cfg *config.Config, rc *redis.Client) *Store {
	if rc.Enabled() {
		return NewStore(NewRedisBackend(rc, cfg.Redis.Prefix))
	}
	return NewStore(NewFileBackend(cfg.DismissalsFile))
}

// Stats summarizes stored dismissals
type Stats struct {
	DismissedAlerts     int      `json:"dismissed_alerts_count"`
	InactiveClients     int      `json:"inactive_clients_count"`
	InactiveClientNames []string `json:"inactive_client_names"`
}

// DismissAlert hides one alert id from future results
func (s *Store) DismissAlert(ctx context.Context, alertID string) error {
	if alertID == "" {
		return ErrEmptyID
	}
	return s.backend.Add(ctx, SetDismissedAlerts, alertID, "")
}

// RestoreAlert undoes DismissAlert
func (s *Store) RestoreAlert(ctx context.Context, alertID string) error {
	if alertID == "" {
		return ErrEmptyID
	}
	return s.backend.Remove(ctx, SetDismissedAlerts, alertID)
}

// DismissedAlerts returns the dismissed alert ids
func (s *Store) DismissedAlerts(ctx context.Context) (map[string]bool, error) {
	return s.ids(ctx, SetDismissedAlerts)
}

// ClearDismissed restores every dismissed alert
func (s *Store) ClearDismissed(ctx context.Context) error {
	return s.backend.Clear(ctx, SetDismissedAlerts)
}

// Deactivate excludes a client from all alerts; name is kept for display
func (s *Store) Deactivate(ctx context.Context, clientID, name string) error {
	if clientID == "" {
		return ErrEmptyID
	}
	return s.backend.Add(ctx, SetInactiveClients, clientID, name)
}

// Reactivate undoes Deactivate
func (s *Store) Reactivate(ctx context.Context, clientID string) error {
	if clientID == "" {
		return ErrEmptyID
	}
	return s.backend.Remove(ctx, SetInactiveClients, clientID)
}

// InactiveClients returns the inactive client ids
func (s *Store) InactiveClients(ctx context.Context) (map[string]bool, error) {
	return s.ids(ctx, SetInactiveClients)
}

// InactiveClientNames returns id -> name for inactive clients
func (s *Store) InactiveClientNames(ctx context.Context) (map[string]string, error) {
	return s.backend.Members(ctx, SetInactiveClients)
}

// Stats returns counts and the sorted names of inactive clients
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	dismissed, err := s.backend.Members(ctx, SetDismissedAlerts)
	if err != nil {
		return Stats{}, err
	}
	inactive, err := s.backend.Members(ctx, SetInactiveClients)
	if err != nil {
		return Stats{}, err
	}

	names := []string{}
	for id, name := range inactive {
		if name == "" {
			name = id
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return Stats{
		DismissedAlerts:     len(dismissed),
		InactiveClients:     len(inactive),
		InactiveClientNames: names,
	}, nil
}

// PruneDismissed restores dismissed ids that are not in current, so ids of
// past occurrences (last year's birthday) do not accumulate. It returns the
// number of ids removed.
func (s *Store) PruneDismissed(ctx context.Context, current map[string]bool) (int, error) {
	dismissed, err := s.backend.Members(ctx, SetDismissedAlerts)
	if err != nil {
		return 0, err
	}

	removed := 0
	for id := range dismissed {
		if current[id] {
			continue
		}
		if err := s.backend.Remove(ctx, SetDismissedAlerts, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Reset clears both sets
func (s *Store) Reset(ctx context.Context) error {
	if err := s.backend.Clear(ctx, SetDismissedAlerts); err != nil {
		return err
	}
	return s.backend.Clear(ctx, SetInactiveClients)
}

// Apply reads both sets and applies them to alerts
func (s *Store) Apply(ctx context.Context, alerts []contracts.Alert) ([]contracts.Alert, error) {
	dismissed, err := s.DismissedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	inactive, err := s.InactiveClients(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(alerts, dismissed, inactive), nil
}

func (s *Store) ids(ctx context.Context, set string) (map[string]bool, error) {
	members, err := s.backend.Members(ctx, set)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(members))
	for id := range members {
		out[id] = true
	}
	return out, nil
}

// Apply marks dismissed alerts and drops alerts of inactive clients.
// Order is preserved and the input slice is not modified.
func Apply(alerts []contracts.Alert, dismissed, inactive map[string]bool) []contracts.Alert {
	out := make([]contracts.Alert, 0, len(alerts))
	for _, a := range alerts {
		if inactive[a.ClientID] {
			continue
		}
		if dismissed[a.ID] {
			a.Dismissed = true
		}
		out = append(out, a)
	}
	return out
}

// ExcludeInactive drops inactive clients before evaluation
func ExcludeInactive(clients []contracts.ClientRecord, inactive map[string]bool) []contracts.ClientRecord {
	if len(inactive) == 0 {
		return clients
	}
	out := make([]contracts.ClientRecord, 0, len(clients))
	for _, c := range clients {
		if !inactive[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
