package reconcile

import (
	"strings"
	"sync"

	"github.com/qa-overflow/core-go/internal/models"
)

// View is the client-visible merge of polled snapshots and streamed partial
// content for one question. Polling and streaming may run concurrently; a
// newer snapshot always wins and invalidates any accumulated partial text.
type View struct {
	mu       sync.Mutex
	state    RequestState
	snapshot *models.QuestionModel
	partial  strings.Builder
}

func NewView() *View {
	return &View{state: StateIdle}
}

// Begin claims the single in-flight slot. Fails when another AI action is
// already running for this view.
func (v *View) Begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateGenerating {
		return ErrAnotherInFlight
	}
	v.state = StateGenerating
	v.partial.Reset()
	return nil
}

func (v *View) finish(state RequestState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
}

// AppendDelta accumulates one streamed partial chunk.
func (v *View) AppendDelta(delta string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.partial.WriteString(delta)
}

// ApplySnapshot installs a full question snapshot as the authoritative
// state and drops any stale partial buffer.
func (v *View) ApplySnapshot(q *models.QuestionModel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = q
	v.partial.Reset()
}

// Snapshot returns the latest authoritative question state, or nil before
// the first one arrives.
func (v *View) Snapshot() *models.QuestionModel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// PartialText returns the streamed-but-not-yet-persisted text.
func (v *View) PartialText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.partial.String()
}

// State reports the current request state.
func (v *View) State() RequestState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}
