package orchestrator

import (
	"context"
	"sync"
	"time"

	"go-applypilot-automation/internal/models"
)

// terminalRetention keeps finished job snapshots queryable for a while;
// eviction is lazy on the next Submit, mirroring the vault's read-time TTL.
const terminalRetention = time.Hour

// jobState is everything the orchestrator tracks for one submission.
// The updates channel has exactly one consumer (the starting caller) and is
// closed when the job reaches a terminal phase or is cancelled.
type jobState struct {
	job        models.SubmissionJob
	updates    chan models.ProgressUpdate
	cancel     context.CancelFunc
	done       bool
	terminalAt time.Time
}

// jobStore owns the jobs-by-id map and the single-flight index keyed by
// (userID, jobURL). Every registration has a matching unregister on the
// terminal path.
type jobStore struct {
	mu       sync.Mutex
	jobs     map[string]*jobState
	inflight map[string]string //flight key -> job id
}

func newJobStore() *jobStore {
	return &jobStore{
		jobs:     make(map[string]*jobState),
		inflight: make(map[string]string),
	}
}

func flightKey(userID, jobURL string) string {
	return userID + "|" + jobURL
}

// register adds a new job, or returns the id of the in-flight one for the
// same key so callers join it instead of double-submitting.
func (s *jobStore) register(job models.SubmissionJob, cancel context.CancelFunc) (state *jobState, existingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictTerminalLocked(time.Now())

	key := flightKey(job.UserID, job.JobURL)
	if id, ok := s.inflight[key]; ok {
		return nil, id
	}

	state = &jobState{
		job:     job,
		updates: make(chan models.ProgressUpdate, 16),
		cancel:  cancel,
	}
	s.jobs[job.ID] = state
	s.inflight[key] = job.ID
	return state, ""
}

// get returns a copy of the job snapshot.
func (s *jobStore) get(id string) (models.SubmissionJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.jobs[id]
	if !ok {
		return models.SubmissionJob{}, false
	}
	return state.job, true
}

// update applies fn to the job snapshot and, while the job is live, emits a
// progress event. Progress never decreases on an active job.
func (s *jobStore) update(id string, fn func(*models.SubmissionJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.jobs[id]
	if !ok || state.done {
		return
	}

	prev := state.job.Progress
	fn(&state.job)
	if state.job.Progress < prev {
		state.job.Progress = prev
	}
	state.job.UpdatedAt = time.Now()

	//non-blocking: a slow or departed consumer must not stall the pipeline
	select {
	case state.updates <- models.ProgressUpdate{
		Step:     state.job.Phase,
		Progress: state.job.Progress,
		Message:  state.job.Message,
	}:
	default:
	}
}

// finish marks the job terminal, closes its channel, and drops the
// single-flight registration.
func (s *jobStore) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.jobs[id]
	if !ok || state.done {
		return
	}
	state.done = true
	state.terminalAt = time.Now()
	close(state.updates)
	delete(s.inflight, flightKey(state.job.UserID, state.job.JobURL))
}

// cancelFunc returns the job's current cancel function, nil if unknown.
// A suspended job keeps its single-flight key so duplicate starts keep
// joining it instead of spawning a second session.
func (s *jobStore) cancelFunc(id string) context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.jobs[id]; ok {
		return state.cancel
	}
	return nil
}

// setCancel swaps the cancel function when a suspended job resumes with a
// fresh context. The previous context belongs to the goroutine that parked
// the job and has already exited, so it is released here.
func (s *jobStore) setCancel(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.jobs[id]; ok {
		if state.cancel != nil {
			state.cancel()
		}
		state.cancel = cancel
	}
}

func (s *jobStore) evictTerminalLocked(now time.Time) {
	for id, state := range s.jobs {
		if state.done && now.Sub(state.terminalAt) > terminalRetention {
			delete(s.jobs, id)
		}
	}
}
