package app

import "live-poll-service/internal/domain"

// registry maps live connections to participants in connection order.
// It is owned by Session and only touched under the session lock.
type registry struct {
	order  []string
	byConn map[string]domain.Participant
}

func newRegistry() *registry {
	return &registry{byConn: make(map[string]domain.Participant)}
}

// register adds p, or replaces the entry for an already registered connection in place.
func (r *registry) register(p domain.Participant) {
	if _, ok := r.byConn[p.ConnectionID]; !ok {
		r.order = append(r.order, p.ConnectionID)
	}
	r.byConn[p.ConnectionID] = p
}

func (r *registry) unregister(connID string) bool {
	if _, ok := r.byConn[connID]; !ok {
		return false
	}
	delete(r.byConn, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *registry) lookup(connID string) (domain.Participant, bool) {
	p, ok := r.byConn[connID]
	return p, ok
}

func (r *registry) roster() []domain.RosterEntry {
	entries := make([]domain.RosterEntry, 0, len(r.order))
	for _, connID := range r.order {
		p := r.byConn[connID]
		entries = append(entries, domain.RosterEntry{ID: p.UserID, Name: p.DisplayName, Role: p.Role})
	}
	return entries
}

// studentUserIDs deduplicates by identity: one user in two tabs counts once.
func (r *registry) studentUserIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, p := range r.byConn {
		if p.Role == domain.RoleStudent {
			ids[p.UserID] = struct{}{}
		}
	}
	return ids
}
