package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/models"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
	maxActivityEntries   = 1000
)

// ReadChecker answers whether a user can currently read a list.
type ReadChecker interface {
	HasReadAccess(userID, listID string) bool
}

// ActivityServiceProvider defines the interface for the activity feed.
type ActivityServiceProvider interface {
	Record(activityType, actorID, message string, listID *string)
	Recent(userID string, limit int) []models.Activity
	Prune(olderThan time.Time) int
}

// ActivityService keeps a bounded, in-memory log of list mutations.
type ActivityService struct {
	mu      sync.RWMutex
	entries []models.Activity // oldest first
	access  ReadChecker
	now     func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(access ReadChecker) *ActivityService {
	return &ActivityService{access: access, now: time.Now}
}

// Record appends an entry, evicting the oldest one once the log is full.
func (s *ActivityService) Record(activityType, actorID, message string, listID *string) {
	entry := models.Activity{
		ID:        uuid.New().String(),
		Type:      activityType,
		ActorID:   actorID,
		Message:   message,
		ListID:    listID,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - maxActivityEntries; over > 0 {
		s.entries = append([]models.Activity(nil), s.entries[over:]...)
	}
}

// Recent returns up to limit entries visible to userID, newest first. An
// entry is visible when the user wrote it or can currently read its list.
func (s *ActivityService) Recent(userID string, limit int) []models.Activity {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Activity{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if e.ActorID == userID || (e.ListID != nil && s.access.HasReadAccess(userID, *e.ListID)) {
			out = append(out, e)
		}
	}
	return out
}

// Prune drops entries created before olderThan and returns how many went.
func (s *ActivityService) Prune(olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for dropped < len(s.entries) && s.entries[dropped].CreatedAt.Before(olderThan) {
		dropped++
	}
	if dropped > 0 {
		s.entries = append([]models.Activity(nil), s.entries[dropped:]...)
	}
	return dropped
}
