package pipeline

import (
	"sync"
	"time"
)

// RunStatus represents the overall status of a pipeline run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState represents the complete state of one pipeline run
type RunState struct {
	mu sync.RWMutex

	// Basic run information
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Stage states keyed by stage ID
	Stages map[string]*StageState `json:"stages"`

	// stage order as registered, for reporting
	order []string

	// Error if the run failed
	Error error `json:"error,omitempty"`
}

// NewRunState creates a new run state
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Stages:    make(map[string]*StageState),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCancelled
}

// GetStage returns the state of a specific stage
func (r *RunState) GetStage(stageID string) *StageState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Stages[stageID]
}

// SetStage registers the state of a specific stage
func (r *RunState) SetStage(stageID string, state *StageState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.Stages[stageID]; !exists {
		r.order = append(r.order, stageID)
	}
	r.Stages[stageID] = state
}

// StageStates returns the stage states in registration order
func (r *RunState) StageStates() []*StageState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]*StageState, 0, len(r.order))
	for _, id := range r.order {
		states = append(states, r.Stages[id])
	}
	return states
}

// Duration returns how long the run has been going, or took
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// CurrentStatus returns the status under the read lock
func (r *RunState) CurrentStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}
