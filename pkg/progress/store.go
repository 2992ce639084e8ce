package progress

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store is the process-wide registry of import jobs. It supports
// concurrent polling reads and one writer per entry (the owning
// orchestrator); entries are deep-copied on both write and read so a
// poller never observes torn state.
//
// Construct once at process start with NewStore and inject it into
// the orchestrator.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]ImportProgress

	retention time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore creates a Store. Terminal jobs are kept available for
// polling for the retention window before the sweep evicts them.
func NewStore(retention time.Duration) *Store {
	return &Store{
		jobs:      make(map[string]ImportProgress),
		retention: retention,
		stop:      make(chan struct{}),
	}
}

// Set stores the current state of a job, replacing any previous one.
func (s *Store) Set(jobID string, p ImportProgress) {
	cp := p.Clone()
	s.mu.Lock()
	s.jobs[jobID] = cp
	s.mu.Unlock()
}

// Get returns a copy of a job's progress. The second value is false
// for unknown or already evicted jobs.
func (s *Store) Get(jobID string) (ImportProgress, bool) {
	s.mu.RLock()
	p, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return ImportProgress{}, false
	}
	return p.Clone(), true
}

// ForUser returns all tracked jobs of one user, newest first.
func (s *Store) ForUser(userID string) []ImportProgress {
	s.mu.RLock()
	var res []ImportProgress
	for _, p := range s.jobs {
		if p.UserID == userID {
			res = append(res, p.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		return res[i].StartedAt.After(res[j].StartedAt)
	})
	return res
}

// Delete removes a job unconditionally.
func (s *Store) Delete(jobID string) {
	s.mu.Lock()
	delete(s.jobs, jobID)
	s.mu.Unlock()
}

// Cleanup evicts jobs that are terminal and finished before now minus
// maxAge. In-flight jobs are never evicted regardless of age. Returns
// the number of evicted jobs.
func (s *Store) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted int
	for id, p := range s.jobs {
		if !p.Status.Terminal() {
			continue
		}
		if p.FinishedAt != nil && p.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Start launches the background sweep that runs Cleanup on a fixed
// interval until Stop is called.
func (s *Store) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Cleanup(s.retention); n > 0 {
					slog.Debug("Evicted finished import jobs", "count", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweep. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Len returns the number of tracked jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
