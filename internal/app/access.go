package app

import (
	"strings"

	"go.uber.org/zap"

	"live-poll-service/internal/domain"
)

// Kick bans targetUserID for the rest of the session and drops every connection
// presenting it, registered or not.
func (s *Session) Kick(connID, targetUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTeacherLocked(connID) {
		return domain.ErrUnauthorized
	}
	target := strings.TrimSpace(targetUserID)
	if target == "" {
		return domain.ErrValidation
	}
	s.kicks.Add(target)

	removed := false
	for conn, claimed := range s.claims {
		if claimed != target {
			continue
		}
		s.out.SendTo(conn, EventKicked, nil)
		delete(s.claims, conn)
		if s.participants.unregister(conn) {
			removed = true
		}
		s.out.Disconnect(conn)
	}
	if removed {
		s.broadcastRosterLocked()
	}
	s.log.Info("user kicked", zap.String("user", target), zap.String("by", connID))
	return nil
}

// rejectKickedLocked terminates connID when it presents a kicked identity.
func (s *Session) rejectKickedLocked(connID, claimedUserID string) bool {
	if claimedUserID == "" || !s.kicks.Contains(claimedUserID) {
		return false
	}
	s.out.SendTo(connID, EventKicked, nil)
	s.out.Disconnect(connID)
	s.log.Info("rejected kicked user", zap.String("conn", connID), zap.String("user", claimedUserID))
	return true
}
