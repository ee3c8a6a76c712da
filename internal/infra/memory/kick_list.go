package memory

import "sync"

// KickList is an in-memory implementation of app.KickRepository.
type KickList struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewKickList() *KickList {
	return &KickList{ids: make(map[string]struct{})}
}

// Add reports whether userID was newly added.
func (k *KickList) Add(userID string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.ids[userID]; ok {
		return false
	}
	k.ids[userID] = struct{}{}
	return true
}

func (k *KickList) Contains(userID string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.ids[userID]
	return ok
}
